package engine

import (
	"github.com/mlanoe/chorus/internal/catalog"
	"github.com/mlanoe/chorus/internal/queue"
	"github.com/mlanoe/chorus/internal/state"
)

// State is the authoritative playback state. Dispatch replaces it
// transition by transition; subscribers only ever see snapshots.
type State struct {
	// CurrentSongID is the song the transport is loaded with, zero when
	// nothing is loaded.
	CurrentSongID catalog.SongID
	// PlaylistName is the playlist context for auto queue replenishment.
	PlaylistName string

	Queues queue.Queues

	Loop    bool
	Shuffle bool
	Paused  bool
	Muted   bool

	MasterVolume float64 // 0-1
	SliderVolume float64 // 0-100
}

// EffectiveVolume combines the two gains multiplicatively into the level
// handed to the transport. Muted output is fully silent.
func (s State) EffectiveVolume() float64 {
	if s.Muted {
		return 0
	}
	return s.SliderVolume * s.MasterVolume / 100
}

func (s State) clone() State {
	s.Queues = s.Queues.Clone()
	return s
}

// fromPersisted rehydrates engine state from a checkpoint. Playback
// always resumes paused; mute is derived from the slider position.
func fromPersisted(p state.PlayerState) State {
	return State{
		CurrentSongID: p.CurrentSongID,
		PlaylistName:  p.PlaylistName,
		Queues: queue.Queues{
			History:     p.History,
			User:        p.UserQueue,
			Auto:        p.AutoQueue,
			ShufflePool: p.ShuffleQueue,
		},
		Loop:         p.Loop,
		Shuffle:      p.Shuffle,
		Paused:       true,
		Muted:        p.SliderVolume == 0,
		MasterVolume: clamp(p.MasterVolume, 0, 1),
		SliderVolume: clamp(p.SliderVolume, 0, 100),
	}
}

// persistable converts a snapshot into the durable checkpoint layout.
func (s State) persistable() state.PlayerState {
	return state.PlayerState{
		CurrentSongID: s.CurrentSongID,
		PlaylistName:  s.PlaylistName,
		History:       s.Queues.History,
		UserQueue:     s.Queues.User,
		AutoQueue:     s.Queues.Auto,
		ShuffleQueue:  s.Queues.ShufflePool,
		Loop:          s.Loop,
		Shuffle:       s.Shuffle,
		MasterVolume:  s.MasterVolume,
		SliderVolume:  s.SliderVolume,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
