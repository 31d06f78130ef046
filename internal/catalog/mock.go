// internal/catalog/mock.go
package catalog

import (
	"context"
	"sync"
)

// Mock is an in-memory test double for Gateway.
type Mock struct {
	mu sync.Mutex

	Songs     map[SongID]*Song
	Playlists map[string][]SongID
	Audio     map[SongID][]byte

	idsErr   error
	audioErr error
	metaErr  error

	audioCalls  []SongID
	idsCalls    []string
	listenCalls []SongID

	// AudioGate, when set, is received from before SongAudio returns.
	// Tests use it to hold a fetch in flight.
	AudioGate chan struct{}
}

// Verify Mock implements Gateway at compile time.
var _ Gateway = (*Mock)(nil)

// NewMock creates an empty mock catalog.
func NewMock() *Mock {
	return &Mock{
		Songs:     make(map[SongID]*Song),
		Playlists: make(map[string][]SongID),
		Audio:     make(map[SongID][]byte),
	}
}

func (m *Mock) OrderedSongIDs(_ context.Context, playlist string) ([]SongID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idsCalls = append(m.idsCalls, playlist)
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	if playlist == "" {
		playlist = AllSongs
	}
	ids, ok := m.Playlists[playlist]
	if !ok {
		return nil, ErrPlaylistNotFound
	}
	out := make([]SongID, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *Mock) SongAudio(_ context.Context, id SongID) ([]byte, error) {
	m.mu.Lock()
	gate := m.AudioGate
	m.audioCalls = append(m.audioCalls, id)
	err := m.audioErr
	audio, ok := m.Audio[id]
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSongNotFound
	}
	return audio, nil
}

func (m *Mock) SongMetadata(_ context.Context, id SongID) (*Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metaErr != nil {
		return nil, m.metaErr
	}
	song, ok := m.Songs[id]
	if !ok {
		return nil, ErrSongNotFound
	}
	cp := *song
	return &cp, nil
}

func (m *Mock) IncrementListenCount(id SongID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listenCalls = append(m.listenCalls, id)
	return nil
}

// Test helpers

// AddSongs registers songs with audio under the given playlist, creating
// the playlist and adding them to AllSongs as well.
func (m *Mock) AddSongs(playlist string, ids ...SongID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.Songs[id]; !ok {
			m.Songs[id] = &Song{ID: id}
			m.Audio[id] = []byte{byte(id)}
			m.Playlists[AllSongs] = append(m.Playlists[AllSongs], id)
		}
		if playlist != AllSongs {
			m.Playlists[playlist] = append(m.Playlists[playlist], id)
		}
	}
	if _, ok := m.Playlists[AllSongs]; !ok {
		m.Playlists[AllSongs] = nil
	}
}

func (m *Mock) SetIDsError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idsErr = err
}

func (m *Mock) SetAudioError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audioErr = err
}

func (m *Mock) SetMetadataError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metaErr = err
}

func (m *Mock) AudioCalls() []SongID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SongID, len(m.audioCalls))
	copy(out, m.audioCalls)
	return out
}

func (m *Mock) IDsCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.idsCalls))
	copy(out, m.idsCalls)
	return out
}

func (m *Mock) ListenCalls() []SongID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SongID, len(m.listenCalls))
	copy(out, m.listenCalls)
	return out
}
