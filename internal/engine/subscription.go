package engine

import (
	"time"

	"github.com/mlanoe/chorus/internal/transport"
)

const eventBufferSize = 16

// Subscription provides event channels for one subscriber.
type Subscription struct {
	// StateChanged delivers a snapshot after every committed transition.
	StateChanged <-chan State
	// PositionChanged delivers periodic transport positions.
	PositionChanged <-chan time.Duration
	// SourceReady delivers metadata once a loaded source is playable.
	SourceReady <-chan transport.Metadata
	// Error delivers non-fatal side effect failures.
	Error <-chan ErrorEvent
	Done  <-chan struct{}

	// Internal write channels
	stateCh    chan State
	positionCh chan time.Duration
	readyCh    chan transport.Metadata
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan State, eventBufferSize),
		positionCh: make(chan time.Duration, eventBufferSize),
		readyCh:    make(chan transport.Metadata, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.PositionChanged = s.positionCh
	s.SourceReady = s.readyCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state snapshot (non-blocking).
func (s *Subscription) sendState(snap State) {
	select {
	case s.stateCh <- snap:
	default:
		// Drop if buffer full
	}
}

// sendPosition sends a position update (non-blocking).
func (s *Subscription) sendPosition(pos time.Duration) {
	select {
	case s.positionCh <- pos:
	default:
	}
}

// sendReady sends source metadata (non-blocking).
func (s *Subscription) sendReady(meta transport.Metadata) {
	select {
	case s.readyCh <- meta:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
