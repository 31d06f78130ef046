// internal/state/mock.go
package state

import (
	"database/sql"
	"sync"
)

// Mock is an in-memory test double for the state manager.
type Mock struct {
	mu sync.Mutex

	player    PlayerState
	hasPlayer bool
	saveCalls int
	loadErr   error
	saveErr   error

	// SaveGate, when set, is received from before SavePlayer applies the
	// checkpoint. Tests use it to hold a save in flight.
	SaveGate chan struct{}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// NewMock creates a mock state manager.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) LoadPlayer() (PlayerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return DefaultPlayerState(), m.loadErr
	}
	if !m.hasPlayer {
		return DefaultPlayerState(), nil
	}
	return m.player, nil
}

func (m *Mock) SavePlayer(s PlayerState) error {
	m.mu.Lock()
	m.saveCalls++
	gate := m.SaveGate
	err := m.saveErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.player = s
	m.hasPlayer = true
	m.mu.Unlock()
	return nil
}

func (m *Mock) Close() error { return nil }

// Test helpers

// Seed sets the state returned by the next LoadPlayer.
func (m *Mock) Seed(s PlayerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.player = s
	m.hasPlayer = true
}

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saved returns the last checkpointed state.
func (m *Mock) Saved() PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.player
}

// SaveCalls returns how many times SavePlayer was invoked.
func (m *Mock) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}
