package transport

import (
	"bytes"

	"github.com/dhowden/tag"
)

// readMetadata extracts title/artist/album tags from raw audio bytes.
// Sources without readable tags yield empty metadata; duration is filled
// in by the caller from the decoded stream.
func readMetadata(audio []byte) Metadata {
	m, err := tag.ReadFrom(bytes.NewReader(audio))
	if err != nil {
		return Metadata{}
	}
	return Metadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}
}
