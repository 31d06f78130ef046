// Package engine owns the playback state machine. All commands funnel
// through Dispatch, which serializes transitions, drives the transport
// and queues, checkpoints every change to the durable store, and fans the
// resulting snapshots out to subscribers.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mlanoe/chorus/internal/catalog"
	"github.com/mlanoe/chorus/internal/errmsg"
	"github.com/mlanoe/chorus/internal/queue"
	"github.com/mlanoe/chorus/internal/state"
	"github.com/mlanoe/chorus/internal/transport"
)

// previousRestartThreshold is how far into a song Previous restarts it
// instead of rewinding to history.
const previousRestartThreshold = 3 * time.Second

// Options configures the engine.
type Options struct {
	// MaxAutoQueue is the auto queue target length (default 20).
	MaxAutoQueue int
	// DefaultPlaylist is the catalog-wide playlist name used when no
	// playlist context is set (default catalog.AllSongs).
	DefaultPlaylist string
}

// Engine is the playback state machine. It exclusively owns the
// transport; no other component may drive it.
type Engine struct {
	mu    sync.Mutex
	state State

	transport   transport.Interface
	catalog     catalog.Gateway
	store       state.Interface
	replenisher *queue.Replenisher

	subs   []*Subscription
	subsMu sync.RWMutex

	replenishing     bool
	replenishPending bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New rehydrates the engine from the durable store and starts listening
// for transport events. The rehydrated current song, if any, is preloaded
// paused so that resuming picks up where the last session left off.
func New(t transport.Interface, g catalog.Gateway, st state.Interface, opts Options) (*Engine, error) {
	defaultPlaylist := opts.DefaultPlaylist
	if defaultPlaylist == "" {
		defaultPlaylist = catalog.AllSongs
	}

	persisted, err := st.LoadPlayer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.OpStateLoad, err)
	}

	e := &Engine{
		transport:   t,
		catalog:     g,
		store:       st,
		replenisher: queue.NewReplenisher(g, opts.MaxAutoQueue, defaultPlaylist),
	}
	e.state = fromPersisted(persisted)
	if e.state.PlaylistName == "" {
		e.state.PlaylistName = defaultPlaylist
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	t.SetVolume(e.state.EffectiveVolume())

	e.wg.Add(1)
	go e.eventLoop()

	if id := e.state.CurrentSongID; id != 0 {
		e.spawn(func() { e.fetchAndLoad(id) })
	}
	e.spawn(e.replenishAuto)

	return e, nil
}

// State returns a read-only snapshot of the playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Unsubscribe removes a subscription and closes its Done channel.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// Close stops the engine and the transport it owns. It waits for every
// in-flight side effect before tearing the transport down, so no worker
// touches a closed collaborator. The durable store is left to its owner.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.cancel()
		e.wg.Wait()
		_ = e.transport.Close()

		e.subsMu.Lock()
		for _, sub := range e.subs {
			sub.close()
		}
		e.subs = nil
		e.subsMu.Unlock()
	})
	return nil
}

// sideEffects describes what a committed transition requires beyond the
// state change itself. Transport calls run before Dispatch returns;
// catalog fetches are scheduled and never awaited inline.
type sideEffects struct {
	changed    bool
	loadSong   catalog.SongID // fetch audio, then load and play
	listenFor  catalog.SongID // fire-and-forget listen count increment
	seekToZero bool
	syncPause  bool // reconcile transport with state.Paused
	syncVolume bool
	buildPool  bool // construct a shuffle pool, then play its first song
	replenish  bool
}

// Dispatch applies a command as one deterministic transition and returns
// the resulting snapshot. Transitions never interleave; any I/O they
// trigger is scheduled against the snapshot's outcome. The checkpoint and
// the subscriber publish happen under the state mutex, so commits always
// reach the store and the subscribers in transition order: a restart
// after Dispatch returns can never rehydrate a snapshot older than the
// one Dispatch returned.
func (e *Engine) Dispatch(cmd Command) State {
	e.mu.Lock()
	fx := e.apply(cmd)
	snap := e.state.clone()
	if fx.changed {
		e.checkpoint(snap)
		e.publishState(snap)
	}
	e.mu.Unlock()

	e.run(fx, snap)
	return snap
}

// apply computes the next state. Called with e.mu held; must not block.
func (e *Engine) apply(cmd Command) sideEffects {
	var fx sideEffects
	s := &e.state

	switch c := cmd.(type) {
	case PlaySong:
		e.playSongLocked(c.SongID, &fx)

	case Skip:
		next, ok := s.Queues.PopNext()
		if !ok {
			// Both queues empty: defined no-op, the current song keeps
			// playing.
			return fx
		}
		if s.CurrentSongID != 0 {
			s.Queues.PushHistory(s.CurrentSongID)
		}
		s.CurrentSongID = next
		fx.changed = true
		fx.loadSong = next
		fx.replenish = true
		e.takeFromPoolLocked()

	case Previous:
		// Restarting beats rewinding once the song is underway, even
		// with history available.
		if e.transport.Position() > previousRestartThreshold {
			fx.seekToZero = true
			return fx
		}
		prev, ok := s.Queues.PopHistory()
		if !ok {
			fx.seekToZero = true
			return fx
		}
		if s.CurrentSongID != 0 {
			s.Queues.PushFrontAuto(s.CurrentSongID)
		}
		s.CurrentSongID = prev
		fx.changed = true
		fx.loadSong = prev

	case TogglePause:
		s.Paused = !s.Paused
		fx.changed = true
		fx.syncPause = true

	case SetPaused:
		if s.Paused == c.Paused {
			return fx
		}
		s.Paused = c.Paused
		fx.changed = true
		fx.syncPause = true

	case ToggleLoop:
		s.Loop = !s.Loop
		fx.changed = true

	case SetLoop:
		if s.Loop == c.Loop {
			return fx
		}
		s.Loop = c.Loop
		fx.changed = true

	case ToggleShuffle:
		e.setShuffleLocked(!s.Shuffle, &fx)

	case SetShuffle:
		if s.Shuffle == c.Shuffle {
			return fx
		}
		e.setShuffleLocked(c.Shuffle, &fx)

	case ToggleMute:
		s.Muted = !s.Muted
		fx.changed = true
		fx.syncVolume = true

	case SetPlaylist:
		s.PlaylistName = c.Name
		fx.changed = true

	case SetMasterVolume:
		s.MasterVolume = clamp(c.Volume, 0, 1)
		fx.changed = true
		fx.syncVolume = true

	case SetSliderVolume:
		s.SliderVolume = clamp(c.Volume, 0, 100)
		s.Muted = s.SliderVolume == 0
		fx.changed = true
		fx.syncVolume = true

	case EnqueueUser:
		s.Queues.EnqueueUser(c.SongIDs...)
		fx.changed = true

	case EnqueueAuto:
		s.Queues.EnqueueAuto(c.SongIDs...)
		fx.changed = true

	case ClearHistory:
		s.Queues.ClearHistory()
		fx.changed = true

	case ClearAutoQueue:
		s.Queues.ClearAuto()
		fx.changed = true
		fx.replenish = true
		e.takeFromPoolLocked()

	case ClearUserQueue:
		s.Queues.ClearUser()
		fx.changed = true
	}

	return fx
}

// playSongLocked performs the PlaySong transition.
func (e *Engine) playSongLocked(id catalog.SongID, fx *sideEffects) {
	s := &e.state
	if s.CurrentSongID != 0 {
		s.Queues.PushHistory(s.CurrentSongID)
	}
	s.CurrentSongID = id
	s.Paused = false
	fx.changed = true
	fx.loadSong = id
	fx.listenFor = id
	fx.replenish = true
	e.takeFromPoolLocked()
}

// setShuffleLocked flips shuffle mode. Turning it on defers to an async
// pool build which then plays the pool's first song; turning it off
// clears the pool but keeps already-materialized auto queue entries.
func (e *Engine) setShuffleLocked(enabled bool, fx *sideEffects) {
	s := &e.state
	s.Shuffle = enabled
	fx.changed = true
	if enabled {
		fx.buildPool = true
	} else {
		s.Queues.ClearShufflePool()
	}
}

// takeFromPoolLocked runs the synchronous part of replenishment: moving
// shuffle pool entries into the auto queue needs no I/O, so it happens
// inside the transition.
func (e *Engine) takeFromPoolLocked() {
	e.replenisher.TakeFromPool(&e.state.Queues, e.state.Shuffle)
}

// run executes a transition's side effects. Transport sync happens before
// Dispatch returns; catalog work is handed to tracked goroutines.
func (e *Engine) run(fx sideEffects, snap State) {
	if fx.seekToZero {
		e.transport.Seek(0)
	}
	if fx.syncVolume {
		e.transport.SetVolume(snap.EffectiveVolume())
	}
	if fx.syncPause {
		if snap.Paused {
			e.transport.Pause()
		} else if err := e.transport.Play(); err != nil {
			// The transport refused to produce audio: reconcile paused
			// with the actual silence instead of the requested state.
			e.reconcilePaused(err)
			return
		}
	}

	if fx.loadSong != 0 {
		e.spawn(func() { e.fetchAndLoad(fx.loadSong) })
	}
	if fx.listenFor != 0 {
		e.spawn(func() {
			if err := e.catalog.IncrementListenCount(fx.listenFor); err != nil {
				e.publishError(errmsg.OpListenCount, err)
			}
		})
	}
	if fx.buildPool {
		e.spawn(func() { e.buildShufflePool(snap.PlaylistName) })
	}
	if fx.replenish {
		e.spawn(e.replenishAuto)
	}
}

// spawn runs fn on a goroutine tracked by the engine's WaitGroup so that
// Close waits for it before tearing down the transport.
func (e *Engine) spawn(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

// fetchAndLoad requests a song's audio and, when it arrives, loads it
// into the transport. The fetch is tagged with the song id it was issued
// for: a result arriving after the current song has moved on is stale and
// silently discarded, so the transport always ends up loaded with the
// most recently requested song.
func (e *Engine) fetchAndLoad(id catalog.SongID) {
	audio, err := e.catalog.SongAudio(e.ctx, id)

	e.mu.Lock()
	if e.state.CurrentSongID != id {
		e.mu.Unlock()
		return
	}
	if err != nil {
		// The state transition already committed; the transport stays on
		// its previous source and the failure is recoverable.
		e.mu.Unlock()
		e.publishError(errmsg.OpFetchAudio, err)
		return
	}
	if err := e.transport.Load(audio); err != nil {
		e.mu.Unlock()
		e.publishError(errmsg.OpLoadSource, err)
		return
	}
	paused := e.state.Paused
	e.mu.Unlock()

	if !paused {
		if err := e.transport.Play(); err != nil {
			e.reconcilePaused(err)
		}
	}
}

// buildShufflePool constructs the pool for the playlist that was active
// when shuffle was enabled, then plays the pool's first song. A pool
// arriving after shuffle was toggled back off is discarded.
func (e *Engine) buildShufflePool(playlist string) {
	first, pool, err := e.replenisher.BuildShufflePool(e.ctx, playlist)
	if err != nil {
		e.publishError(errmsg.OpBuildShuffle, err)
		return
	}

	e.mu.Lock()
	if !e.state.Shuffle {
		e.mu.Unlock()
		return
	}
	e.state.Queues.ShufflePool = pool
	snap := e.state.clone()
	e.checkpoint(snap)
	e.publishState(snap)
	e.mu.Unlock()

	if first != 0 {
		e.Dispatch(PlaySong{SongID: first})
	}
}

// replenishAuto runs the asynchronous part of replenishment. Only one
// pass runs at a time; a trigger arriving mid-pass marks the pass stale
// so it re-runs against the state it missed instead of being dropped.
func (e *Engine) replenishAuto() {
	e.mu.Lock()
	if e.replenishing {
		e.replenishPending = true
		e.mu.Unlock()
		return
	}
	e.replenishing = true
	e.mu.Unlock()

	for {
		e.replenishOnce()

		e.mu.Lock()
		if !e.replenishPending {
			e.replenishing = false
			e.mu.Unlock()
			return
		}
		e.replenishPending = false
		e.mu.Unlock()
	}
}

// replenishOnce fetches upcoming ids from the catalog and appends them to
// the auto queue. The append is capped at the deficit measured on arrival
// so the queue never exceeds its target even when commands raced with the
// fetch.
func (e *Engine) replenishOnce() {
	e.mu.Lock()
	current := e.state.CurrentSongID
	playlist := e.state.PlaylistName
	loop := e.state.Loop
	shuffle := e.state.Shuffle
	poolEmpty := len(e.state.Queues.ShufflePool) == 0
	deficit := e.replenisher.Deficit(&e.state.Queues)
	e.mu.Unlock()

	if deficit == 0 {
		return
	}

	if shuffle && poolEmpty {
		e.rebuildPool(playlist)
		return
	}

	ids, err := e.replenisher.Upcoming(e.ctx, current, playlist, loop, deficit)
	if err != nil {
		e.publishError(errmsg.OpReplenishQueue, err)
		return
	}
	if len(ids) == 0 {
		return
	}

	e.mu.Lock()
	if d := e.replenisher.Deficit(&e.state.Queues); len(ids) > d {
		ids = ids[:d]
	}
	if len(ids) == 0 {
		e.mu.Unlock()
		return
	}
	e.state.Queues.EnqueueAuto(ids...)
	snap := e.state.clone()
	e.checkpoint(snap)
	e.publishState(snap)
	e.mu.Unlock()
}

// rebuildPool re-scans the active playlist into a fresh full permutation
// once the previous pool has been fully consumed, then moves entries into
// the auto queue.
func (e *Engine) rebuildPool(playlist string) {
	pool, err := e.replenisher.RebuildPool(e.ctx, playlist)
	if err != nil {
		e.publishError(errmsg.OpBuildShuffle, err)
		return
	}
	if len(pool) == 0 {
		return
	}

	e.mu.Lock()
	if !e.state.Shuffle || len(e.state.Queues.ShufflePool) > 0 {
		e.mu.Unlock()
		return
	}
	e.state.Queues.ShufflePool = pool
	e.takeFromPoolLocked()
	snap := e.state.clone()
	e.checkpoint(snap)
	e.publishState(snap)
	e.mu.Unlock()
}

// reconcilePaused records that the transport is actually silent after a
// rejected play and tells subscribers.
func (e *Engine) reconcilePaused(err error) {
	e.mu.Lock()
	e.state.Paused = true
	snap := e.state.clone()
	e.checkpoint(snap)
	e.publishState(snap)
	e.mu.Unlock()

	e.publishError(errmsg.OpStartTransport, err)
}

// checkpoint writes the snapshot to the durable store. Called with e.mu
// held so checkpoints reach the store in transition order. Failures are
// surfaced as recoverable errors; the in-memory state stands.
func (e *Engine) checkpoint(snap State) {
	if err := e.store.SavePlayer(snap.persistable()); err != nil {
		e.publishError(errmsg.OpStateSave, err)
	}
}

// eventLoop re-enters transport notifications into the engine. The end
// of a source is a synthetic Skip.
func (e *Engine) eventLoop() {
	defer e.wg.Done()
	events := e.transport.Events()
	for {
		select {
		case <-e.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case transport.EventEnded:
				e.Dispatch(Skip{})
			case transport.EventTimeUpdate:
				e.publishPosition(ev.Position)
			case transport.EventReady:
				if ev.Meta != nil {
					e.publishReady(*ev.Meta)
				}
			}
		}
	}
}

func (e *Engine) publishState(snap State) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendState(snap.clone())
	}
}

func (e *Engine) publishPosition(pos time.Duration) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendPosition(pos)
	}
}

func (e *Engine) publishReady(meta transport.Metadata) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendReady(meta)
	}
}

func (e *Engine) publishError(op errmsg.Op, err error) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendError(ErrorEvent{Op: op, Err: err})
	}
}
