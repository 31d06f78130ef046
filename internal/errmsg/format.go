// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaySong       Op = "play song"
	OpFetchAudio     Op = "fetch song audio"
	OpStartTransport Op = "start audio output"
	OpLoadSource     Op = "load audio source"
	OpSeek           Op = "seek"

	// Queue operations
	OpReplenishQueue Op = "replenish auto queue"
	OpBuildShuffle   Op = "build shuffle pool"

	// State operations
	OpStateLoad Op = "load player state"
	OpStateSave Op = "save player state"

	// Catalog operations
	OpCatalogLookup Op = "look up song"
	OpListenCount   Op = "update listen count"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
