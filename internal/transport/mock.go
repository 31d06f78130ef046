// internal/transport/mock.go
package transport

import (
	"sync"
	"time"
)

// Mock is a test double for the transport.
type Mock struct {
	mu sync.Mutex

	loaded   bool
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64

	loadErr error
	playErr error

	loadCalls   [][]byte
	playCalls   int
	pauseCalls  int
	seekCalls   []time.Duration
	volumeCalls []float64

	events chan Event
	closed bool
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// NewMock creates a mock transport for testing.
func NewMock() *Mock {
	return &Mock{events: make(chan Event, eventBufferSize)}
}

func (m *Mock) Load(audio []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, audio)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = true
	m.playing = false
	m.position = 0
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	if !m.loaded {
		return ErrNoSource
	}
	m.playing = true
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	m.playing = false
}

func (m *Mock) Seek(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if m.duration > 0 && pos > m.duration {
		pos = m.duration
	}
	m.position = pos
	m.seekCalls = append(m.seekCalls, pos)
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	m.volume = level
	m.volumeCalls = append(m.volumeCalls, level)
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Events() <-chan Event {
	return m.events
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) LoadCalls() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.loadCalls))
	copy(out, m.loadCalls)
	return out
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.seekCalls))
	copy(out, m.seekCalls)
	return out
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SimulateEnded emits an EventEnded as if the source finished.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	m.events <- Event{Kind: EventEnded}
}

// SimulateTimeUpdate emits a position notification.
func (m *Mock) SimulateTimeUpdate(pos time.Duration) {
	m.events <- Event{Kind: EventTimeUpdate, Position: pos}
}
