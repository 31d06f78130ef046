package transport

import "math"

// levelToVolume converts a 0-1 level to beep's Volume value. beep uses a
// logarithmic scale with base 2 where 0 means unchanged, -1 half volume,
// -2 quarter volume.
func levelToVolume(level float64) float64 {
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
