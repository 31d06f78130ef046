// Package queue owns the playback queues and their replenishment policy.
package queue

import (
	"github.com/mlanoe/chorus/internal/catalog"
)

// Queues holds the ordered song sequences the engine draws from.
//
// History is most-recent-last. User drains strictly before Auto on skip.
// ShufflePool is a pre-permuted reservoir that feeds Auto while shuffle
// mode is active; it is empty whenever shuffle is off.
type Queues struct {
	History     []catalog.SongID
	User        []catalog.SongID
	Auto        []catalog.SongID
	ShufflePool []catalog.SongID
}

// PushHistory appends a song to the history tail.
func (q *Queues) PushHistory(id catalog.SongID) {
	q.History = append(q.History, id)
}

// PopHistory removes and returns the history tail.
func (q *Queues) PopHistory() (catalog.SongID, bool) {
	if len(q.History) == 0 {
		return 0, false
	}
	id := q.History[len(q.History)-1]
	q.History = q.History[:len(q.History)-1]
	return id, true
}

// PopNext removes and returns the next song to play, draining the user
// queue before the auto queue. Returns false when both are empty.
func (q *Queues) PopNext() (catalog.SongID, bool) {
	if len(q.User) > 0 {
		id := q.User[0]
		q.User = q.User[1:]
		return id, true
	}
	if len(q.Auto) > 0 {
		id := q.Auto[0]
		q.Auto = q.Auto[1:]
		return id, true
	}
	return 0, false
}

// EnqueueUser appends songs to the user queue.
func (q *Queues) EnqueueUser(ids ...catalog.SongID) {
	q.User = append(q.User, ids...)
}

// EnqueueAuto appends songs to the auto queue.
func (q *Queues) EnqueueAuto(ids ...catalog.SongID) {
	q.Auto = append(q.Auto, ids...)
}

// PushFrontAuto prepends a song to the auto queue. Previous uses this to
// recycle the song it rewinds away from, so alternating Previous and Skip
// never loses songs.
func (q *Queues) PushFrontAuto(id catalog.SongID) {
	q.Auto = append([]catalog.SongID{id}, q.Auto...)
}

// ClearHistory empties the history.
func (q *Queues) ClearHistory() { q.History = nil }

// ClearUser empties the user queue.
func (q *Queues) ClearUser() { q.User = nil }

// ClearAuto empties the auto queue.
func (q *Queues) ClearAuto() { q.Auto = nil }

// ClearShufflePool empties the shuffle pool.
func (q *Queues) ClearShufflePool() { q.ShufflePool = nil }

// Clone returns a deep copy.
func (q Queues) Clone() Queues {
	return Queues{
		History:     cloneIDs(q.History),
		User:        cloneIDs(q.User),
		Auto:        cloneIDs(q.Auto),
		ShufflePool: cloneIDs(q.ShufflePool),
	}
}

func cloneIDs(ids []catalog.SongID) []catalog.SongID {
	if ids == nil {
		return nil
	}
	out := make([]catalog.SongID, len(ids))
	copy(out, ids)
	return out
}
