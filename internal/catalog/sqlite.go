package catalog

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	dbutil "github.com/mlanoe/chorus/internal/db"
)

// Catalog is the sqlite-backed song and playlist store.
type Catalog struct {
	db *sql.DB
}

// Verify Catalog implements Gateway at compile time.
var _ Gateway = (*Catalog)(nil)

// New creates a catalog over an already-opened database.
func New(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// OrderedSongIDs returns the member song ids of the named playlist in
// playlist order. AllSongs (or "") returns every song ordered by the time
// it was added to the catalog.
func (c *Catalog) OrderedSongIDs(ctx context.Context, playlist string) ([]SongID, error) {
	if playlist == "" || playlist == AllSongs {
		return c.allSongIDs(ctx)
	}

	var playlistID int64
	row := c.db.QueryRowContext(ctx, `SELECT id FROM playlists WHERE name = ?`, playlist)
	if err := row.Scan(&playlistID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT song_id FROM playlist_songs
		WHERE playlist_id = ?
		ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSongIDs(rows)
}

func (c *Catalog) allSongIDs(ctx context.Context) ([]SongID, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id FROM songs ORDER BY added_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSongIDs(rows)
}

func scanSongIDs(rows *sql.Rows) ([]SongID, error) {
	var ids []SongID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, SongID(id))
	}
	return ids, rows.Err()
}

// SongAudio reads the raw audio bytes for a song from its file path.
func (c *Catalog) SongAudio(ctx context.Context, id SongID) ([]byte, error) {
	song, err := c.SongMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(song.Path)
}

// SongMetadata returns the metadata for a song.
func (c *Catalog) SongMetadata(ctx context.Context, id SongID) (*Song, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, path, title, artist, album, duration_ms, listen_count
		FROM songs
		WHERE id = ?
	`, int64(id))

	var s Song
	var artist, album sql.NullString
	var durationMs sql.NullInt64
	err := row.Scan(&s.ID, &s.Path, &s.Title, &artist, &album, &durationMs, &s.ListenCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, err
	}

	s.Artist = dbutil.NullStringValue(artist)
	s.Album = dbutil.NullStringValue(album)
	s.Duration = time.Duration(dbutil.NullInt64Value(durationMs)) * time.Millisecond
	return &s, nil
}

// IncrementListenCount bumps the play counter for a song.
func (c *Catalog) IncrementListenCount(id SongID) error {
	_, err := c.db.Exec(`
		UPDATE songs SET listen_count = listen_count + 1 WHERE id = ?
	`, int64(id))
	return err
}

// AddSong inserts a song into the catalog and returns its id.
func (c *Catalog) AddSong(s Song) (SongID, error) {
	res, err := c.db.Exec(`
		INSERT INTO songs (path, title, artist, album, duration_ms, listen_count, added_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, s.Path, s.Title, nullable(s.Artist), nullable(s.Album),
		s.Duration.Milliseconds(), time.Now().Unix())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return SongID(id), err
}

// CreatePlaylist creates an empty playlist.
func (c *Catalog) CreatePlaylist(name string) error {
	_, err := c.db.Exec(`
		INSERT INTO playlists (name, created_at) VALUES (?, ?)
	`, name, time.Now().Unix())
	return err
}

// AppendToPlaylist appends songs to the end of a playlist.
func (c *Catalog) AppendToPlaylist(name string, ids ...SongID) error {
	return dbutil.WithTx(c.db, func(tx *sql.Tx) error {
		var playlistID int64
		row := tx.QueryRow(`SELECT id FROM playlists WHERE name = ?`, name)
		if err := row.Scan(&playlistID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPlaylistNotFound
			}
			return err
		}

		var next int
		row = tx.QueryRow(`
			SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_songs WHERE playlist_id = ?
		`, playlistID)
		if err := row.Scan(&next); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO playlist_songs (playlist_id, position, song_id) VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, id := range ids {
			if _, err := stmt.Exec(playlistID, next+i, int64(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Paths returns every known song path mapped to its id. The library
// scanner uses this to skip files already imported.
func (c *Catalog) Paths() (map[string]SongID, error) {
	rows, err := c.db.Query(`SELECT id, path FROM songs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]SongID)
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		paths[path] = SongID(id)
	}
	return paths, rows.Err()
}

// SongCount returns the number of songs in the catalog.
func (c *Catalog) SongCount() (int, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
