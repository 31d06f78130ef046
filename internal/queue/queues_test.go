package queue

import (
	"testing"

	"github.com/mlanoe/chorus/internal/catalog"
)

func ids(ns ...int64) []catalog.SongID {
	out := make([]catalog.SongID, len(ns))
	for i, n := range ns {
		out[i] = catalog.SongID(n)
	}
	return out
}

func TestPopNextDrainsUserBeforeAuto(t *testing.T) {
	q := &Queues{}
	q.EnqueueAuto(ids(10, 11)...)
	q.EnqueueUser(ids(1, 2)...)

	want := ids(1, 2, 10, 11)
	for i, w := range want {
		got, ok := q.PopNext()
		if !ok {
			t.Fatalf("PopNext() #%d: empty, want %d", i, w)
		}
		if got != w {
			t.Errorf("PopNext() #%d = %d, want %d", i, got, w)
		}
	}
	if _, ok := q.PopNext(); ok {
		t.Error("PopNext() on drained queues returned ok")
	}
}

func TestHistoryIsLIFO(t *testing.T) {
	q := &Queues{}
	q.PushHistory(1)
	q.PushHistory(2)
	q.PushHistory(3)

	for _, want := range ids(3, 2, 1) {
		got, ok := q.PopHistory()
		if !ok {
			t.Fatalf("PopHistory() empty, want %d", want)
		}
		if got != want {
			t.Errorf("PopHistory() = %d, want %d", got, want)
		}
	}
	if _, ok := q.PopHistory(); ok {
		t.Error("PopHistory() on empty history returned ok")
	}
}

func TestPushFrontAuto(t *testing.T) {
	q := &Queues{}
	q.EnqueueAuto(ids(2, 3)...)
	q.PushFrontAuto(1)

	got, ok := q.PopNext()
	if !ok || got != 1 {
		t.Errorf("PopNext() after PushFrontAuto = %d, %v; want 1, true", got, ok)
	}
}

func TestClears(t *testing.T) {
	q := &Queues{
		History:     ids(1),
		User:        ids(2),
		Auto:        ids(3),
		ShufflePool: ids(4),
	}
	q.ClearHistory()
	q.ClearUser()
	q.ClearAuto()
	q.ClearShufflePool()

	if len(q.History)+len(q.User)+len(q.Auto)+len(q.ShufflePool) != 0 {
		t.Errorf("clears left entries behind: %+v", q)
	}
}

func TestCloneIsDeep(t *testing.T) {
	q := Queues{
		History: ids(1, 2),
		User:    ids(3),
		Auto:    ids(4, 5),
	}
	cp := q.Clone()
	cp.History[0] = 99
	cp.Auto = append(cp.Auto, 6)

	if q.History[0] != 1 {
		t.Errorf("Clone shares history backing array")
	}
	if len(q.Auto) != 2 {
		t.Errorf("Clone shares auto backing array")
	}
}
