// Package transport wraps a single audio output source behind a small
// load/play/pause/seek/volume surface.
package transport

import (
	"time"
)

// EventKind tags transport notifications.
type EventKind int

const (
	// EventReady is emitted once a loaded source's metadata and duration
	// are known.
	EventReady EventKind = iota
	// EventTimeUpdate is emitted periodically while audio is playing.
	EventTimeUpdate
	// EventEnded is emitted when playback reaches the end of the source.
	EventEnded
)

// Event is a notification from the transport.
type Event struct {
	Kind     EventKind
	Position time.Duration // EventTimeUpdate
	Meta     *Metadata     // EventReady
}

// Metadata describes the currently loaded source.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// Interface defines the transport contract for dependency injection and
// testing. Exactly one source is wrapped at a time.
type Interface interface {
	// Load replaces the current source with the given audio bytes and
	// resets the position to zero. The new source starts paused.
	Load(audio []byte) error
	// Play starts or resumes playback. Idempotent.
	Play() error
	// Pause pauses playback. Idempotent.
	Pause()
	// Seek moves to the given position, clamped to [0, Duration].
	Seek(pos time.Duration)
	// SetVolume sets the output gain, clamped to [0, 1].
	SetVolume(level float64)

	Playing() bool
	Position() time.Duration
	Duration() time.Duration

	// Events returns the notification channel. Events are dropped rather
	// than blocking when the receiver falls behind.
	Events() <-chan Event

	Close() error
}
