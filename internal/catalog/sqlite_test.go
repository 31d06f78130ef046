package catalog

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			duration_ms INTEGER,
			listen_count INTEGER NOT NULL DEFAULT 0,
			added_at INTEGER NOT NULL
		);
		CREATE TABLE playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE playlist_songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			song_id INTEGER NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			UNIQUE(playlist_id, position)
		);
	`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return New(db)
}

func mustAddSong(t *testing.T, c *Catalog, s Song) SongID {
	t.Helper()
	id, err := c.AddSong(s)
	if err != nil {
		t.Fatalf("AddSong(%q): %v", s.Title, err)
	}
	return id
}

func TestAddAndReadSong(t *testing.T) {
	c := openTestCatalog(t)

	id := mustAddSong(t, c, Song{
		Path:     "/music/a.flac",
		Title:    "A",
		Artist:   "Someone",
		Album:    "Debut",
		Duration: 3 * time.Minute,
	})

	got, err := c.SongMetadata(context.Background(), id)
	if err != nil {
		t.Fatalf("SongMetadata(): %v", err)
	}
	if got.Title != "A" || got.Artist != "Someone" || got.Album != "Debut" {
		t.Errorf("metadata = %+v", got)
	}
	if got.Duration != 3*time.Minute {
		t.Errorf("Duration = %v, want 3m", got.Duration)
	}
	if got.ListenCount != 0 {
		t.Errorf("ListenCount = %d, want 0", got.ListenCount)
	}
}

func TestSongMetadataNullableFields(t *testing.T) {
	c := openTestCatalog(t)

	id := mustAddSong(t, c, Song{Path: "/music/b.mp3", Title: "B"})

	got, err := c.SongMetadata(context.Background(), id)
	if err != nil {
		t.Fatalf("SongMetadata(): %v", err)
	}
	if got.Artist != "" || got.Album != "" || got.Duration != 0 {
		t.Errorf("missing tags must read back zero: %+v", got)
	}
}

func TestSongMetadataNotFound(t *testing.T) {
	c := openTestCatalog(t)

	_, err := c.SongMetadata(context.Background(), 999)
	if !errors.Is(err, ErrSongNotFound) {
		t.Errorf("err = %v, want ErrSongNotFound", err)
	}
}

func TestOrderedSongIDsAllSongs(t *testing.T) {
	c := openTestCatalog(t)

	a := mustAddSong(t, c, Song{Path: "/m/1", Title: "1"})
	b := mustAddSong(t, c, Song{Path: "/m/2", Title: "2"})
	d := mustAddSong(t, c, Song{Path: "/m/3", Title: "3"})

	for _, name := range []string{AllSongs, ""} {
		ids, err := c.OrderedSongIDs(context.Background(), name)
		if err != nil {
			t.Fatalf("OrderedSongIDs(%q): %v", name, err)
		}
		if !slices.Equal(ids, []SongID{a, b, d}) {
			t.Errorf("OrderedSongIDs(%q) = %v, want %v", name, ids, []SongID{a, b, d})
		}
	}
}

func TestPlaylistOrdering(t *testing.T) {
	c := openTestCatalog(t)

	a := mustAddSong(t, c, Song{Path: "/m/1", Title: "1"})
	b := mustAddSong(t, c, Song{Path: "/m/2", Title: "2"})
	d := mustAddSong(t, c, Song{Path: "/m/3", Title: "3"})

	if err := c.CreatePlaylist("mix"); err != nil {
		t.Fatalf("CreatePlaylist(): %v", err)
	}
	if err := c.AppendToPlaylist("mix", d, a); err != nil {
		t.Fatalf("AppendToPlaylist(): %v", err)
	}
	if err := c.AppendToPlaylist("mix", b); err != nil {
		t.Fatalf("AppendToPlaylist(): %v", err)
	}

	ids, err := c.OrderedSongIDs(context.Background(), "mix")
	if err != nil {
		t.Fatalf("OrderedSongIDs(): %v", err)
	}
	if !slices.Equal(ids, []SongID{d, a, b}) {
		t.Errorf("playlist order = %v, want %v", ids, []SongID{d, a, b})
	}
}

func TestOrderedSongIDsUnknownPlaylist(t *testing.T) {
	c := openTestCatalog(t)

	_, err := c.OrderedSongIDs(context.Background(), "nope")
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("err = %v, want ErrPlaylistNotFound", err)
	}
}

func TestIncrementListenCount(t *testing.T) {
	c := openTestCatalog(t)

	id := mustAddSong(t, c, Song{Path: "/m/1", Title: "1"})
	for range 3 {
		if err := c.IncrementListenCount(id); err != nil {
			t.Fatalf("IncrementListenCount(): %v", err)
		}
	}

	got, err := c.SongMetadata(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got.ListenCount != 3 {
		t.Errorf("ListenCount = %d, want 3", got.ListenCount)
	}
}

func TestSongAudioReadsFile(t *testing.T) {
	c := openTestCatalog(t)

	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	id := mustAddSong(t, c, Song{Path: path, Title: "1"})

	audio, err := c.SongAudio(context.Background(), id)
	if err != nil {
		t.Fatalf("SongAudio(): %v", err)
	}
	if string(audio) != "audio-bytes" {
		t.Errorf("SongAudio() = %q", audio)
	}
}

func TestSongCount(t *testing.T) {
	c := openTestCatalog(t)

	mustAddSong(t, c, Song{Path: "/m/1", Title: "1"})
	mustAddSong(t, c, Song{Path: "/m/2", Title: "2"})

	n, err := c.SongCount()
	if err != nil {
		t.Fatalf("SongCount(): %v", err)
	}
	if n != 2 {
		t.Errorf("SongCount() = %d, want 2", n)
	}
}
