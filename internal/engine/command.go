package engine

import "github.com/mlanoe/chorus/internal/catalog"

// Command is the closed set of playback commands. Every UI interaction
// and the transport's end-of-source notification reduce to one of these.
type Command interface {
	isCommand()
}

// PlaySong makes songID the current song and starts playback. The song
// playing before it is pushed onto the history.
type PlaySong struct {
	SongID catalog.SongID
}

// Skip advances to the next queued song, draining the user queue before
// the auto queue. With both queues empty it is a defined no-op.
type Skip struct{}

// Previous restarts the current song when more than three seconds have
// elapsed, otherwise rewinds to the most recent history entry and
// recycles the current song to the front of the auto queue.
type Previous struct{}

// TogglePause flips between playing and paused.
type TogglePause struct{}

// SetPaused pauses or resumes explicitly.
type SetPaused struct {
	Paused bool
}

// ToggleLoop flips loop mode.
type ToggleLoop struct{}

// SetLoop sets loop mode explicitly.
type SetLoop struct {
	Loop bool
}

// ToggleShuffle flips shuffle mode. Turning shuffle on builds a shuffle
// pool from the current playlist and starts playing a random song from
// it; turning it off clears the pool but keeps the auto queue.
type ToggleShuffle struct{}

// SetShuffle sets shuffle mode explicitly.
type SetShuffle struct {
	Shuffle bool
}

// ToggleMute flips the mute flag without touching the slider volume.
type ToggleMute struct{}

// SetPlaylist changes the playlist context used for auto queue
// replenishment. The current song keeps playing.
type SetPlaylist struct {
	Name string
}

// SetMasterVolume sets the master gain, clamped to [0, 1].
type SetMasterVolume struct {
	Volume float64
}

// SetSliderVolume sets the slider gain, clamped to [0, 100]. Zero mutes,
// any positive value unmutes.
type SetSliderVolume struct {
	Volume float64
}

// EnqueueUser appends explicit play-next requests to the user queue.
type EnqueueUser struct {
	SongIDs []catalog.SongID
}

// EnqueueAuto appends songs to the auto queue.
type EnqueueAuto struct {
	SongIDs []catalog.SongID
}

// ClearHistory empties the history.
type ClearHistory struct{}

// ClearAutoQueue empties the auto queue.
type ClearAutoQueue struct{}

// ClearUserQueue empties the user queue.
type ClearUserQueue struct{}

func (PlaySong) isCommand()        {}
func (Skip) isCommand()            {}
func (Previous) isCommand()        {}
func (TogglePause) isCommand()     {}
func (SetPaused) isCommand()       {}
func (ToggleLoop) isCommand()      {}
func (SetLoop) isCommand()         {}
func (ToggleShuffle) isCommand()   {}
func (SetShuffle) isCommand()      {}
func (ToggleMute) isCommand()      {}
func (SetPlaylist) isCommand()     {}
func (SetMasterVolume) isCommand() {}
func (SetSliderVolume) isCommand() {}
func (EnqueueUser) isCommand()     {}
func (EnqueueAuto) isCommand()     {}
func (ClearHistory) isCommand()    {}
func (ClearAutoQueue) isCommand()  {}
func (ClearUserQueue) isCommand()  {}
