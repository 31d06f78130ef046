// Package library keeps the catalog in sync with the audio files in the
// configured library folder.
package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/mlanoe/chorus/internal/catalog"
)

// ScanStats holds statistics for a completed scan.
type ScanStats struct {
	Added   int
	Skipped int // already in the catalog
}

// Scanner imports music files into the catalog.
type Scanner struct {
	cat *catalog.Catalog
}

// NewScanner creates a scanner over the given catalog.
func NewScanner(cat *catalog.Catalog) *Scanner {
	return &Scanner{cat: cat}
}

// Scan walks root and adds every music file not yet in the catalog.
// Unreadable files and directories are skipped so one bad entry never
// aborts the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (ScanStats, error) {
	var stats ScanStats

	existing, err := s.cat.Paths()
	if err != nil {
		return stats, err
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || !isMusicFile(path) {
			return nil
		}
		if _, ok := existing[path]; ok {
			stats.Skipped++
			return nil
		}

		if _, err := s.cat.AddSong(songFromFile(path)); err != nil {
			return err
		}
		stats.Added++
		return nil
	})
	return stats, err
}

// songFromFile builds catalog metadata for a file, falling back to the
// file name when it carries no readable tags.
func songFromFile(path string) catalog.Song {
	song := catalog.Song{
		Path:  path,
		Title: titleFromPath(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return song
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return song
	}
	if t := meta.Title(); t != "" {
		song.Title = t
	}
	song.Artist = meta.Artist()
	song.Album = meta.Album()
	return song
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac":
		return true
	}
	return false
}
