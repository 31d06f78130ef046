// Package catalog exposes read access to the song and playlist store.
package catalog

import (
	"context"
	"errors"
	"time"
)

// AllSongs is the synthetic catalog-wide playlist containing every song
// in insertion order.
const AllSongs = "All songs"

// SongID identifies a song in the catalog. Zero is never a valid id.
type SongID int64

// Song holds the metadata for a single catalog entry.
type Song struct {
	ID          SongID
	Title       string
	Artist      string
	Album       string
	Duration    time.Duration
	Path        string
	ListenCount int64
}

// ErrSongNotFound is returned when a song id does not exist in the catalog.
var ErrSongNotFound = errors.New("song not found")

// ErrPlaylistNotFound is returned when a playlist name does not exist.
var ErrPlaylistNotFound = errors.New("playlist not found")

// Gateway is the read interface the playback core consumes.
type Gateway interface {
	// OrderedSongIDs returns the member song ids of the named playlist in
	// playlist order. The AllSongs name (or empty string) yields every
	// song in the catalog.
	OrderedSongIDs(ctx context.Context, playlist string) ([]SongID, error)

	// SongAudio returns the raw audio bytes for a song.
	SongAudio(ctx context.Context, id SongID) ([]byte, error)

	// SongMetadata returns the metadata for a song.
	SongMetadata(ctx context.Context, id SongID) (*Song, error)

	// IncrementListenCount bumps the play counter for a song.
	IncrementListenCount(id SongID) error
}
