package queue

import (
	"context"
	"math/rand/v2"

	"github.com/mlanoe/chorus/internal/catalog"
)

// DefaultMaxAuto is the auto queue target length used when none is
// configured.
const DefaultMaxAuto = 20

// Source resolves a playlist name to its ordered member song ids.
type Source interface {
	OrderedSongIDs(ctx context.Context, playlist string) ([]catalog.SongID, error)
}

// Replenisher tops up the auto queue from the shuffle pool and the active
// playlist, and builds shuffle pools.
type Replenisher struct {
	source          Source
	maxAuto         int
	defaultPlaylist string
	rng             *rand.Rand
}

// NewReplenisher creates a replenisher targeting maxAuto entries in the
// auto queue. defaultPlaylist is the catalog-wide playlist used when no
// playlist context is set and as the non-loop fallback.
func NewReplenisher(source Source, maxAuto int, defaultPlaylist string) *Replenisher {
	if maxAuto <= 0 {
		maxAuto = DefaultMaxAuto
	}
	if defaultPlaylist == "" {
		defaultPlaylist = catalog.AllSongs
	}
	return &Replenisher{
		source:          source,
		maxAuto:         maxAuto,
		defaultPlaylist: defaultPlaylist,
		rng:             rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetRand replaces the random source. Tests use this for deterministic
// shuffle pools.
func (r *Replenisher) SetRand(rng *rand.Rand) { r.rng = rng }

// MaxAuto returns the auto queue target length.
func (r *Replenisher) MaxAuto() int { return r.maxAuto }

// Deficit returns how many entries the auto queue is short of the target.
func (r *Replenisher) Deficit(q *Queues) int {
	d := r.maxAuto - len(q.Auto)
	if d < 0 {
		return 0
	}
	return d
}

// TakeFromPool moves up to the current deficit from the front of the
// shuffle pool into the tail of the auto queue. It touches no I/O, so the
// engine runs it inside the transition. Returns the remaining deficit.
func (r *Replenisher) TakeFromPool(q *Queues, shuffle bool) int {
	deficit := r.Deficit(q)
	if deficit == 0 {
		return 0
	}
	if !shuffle || len(q.ShufflePool) == 0 {
		return deficit
	}

	n := deficit
	if n > len(q.ShufflePool) {
		n = len(q.ShufflePool)
	}
	q.Auto = append(q.Auto, q.ShufflePool[:n]...)
	q.ShufflePool = q.ShufflePool[n:]
	return deficit - n
}

// Upcoming resolves up to deficit song ids that should follow current in
// the active playlist. It does not mutate any queue.
//
// The playlist is scanned from the position after current. Under loop the
// playlist is treated as an infinite cycle and the slice wraps around.
// Without loop the scan does not wrap; if it comes up short, the
// catalog-wide playlist is scanned from current's position there instead,
// again without wrapping, and a shorter-than-target result is accepted.
func (r *Replenisher) Upcoming(
	ctx context.Context,
	current catalog.SongID,
	playlist string,
	loop bool,
	deficit int,
) ([]catalog.SongID, error) {
	if deficit <= 0 {
		return nil, nil
	}
	if playlist == "" {
		playlist = r.defaultPlaylist
	}

	ids, err := r.source.OrderedSongIDs(ctx, playlist)
	if err != nil {
		return nil, err
	}

	next := sliceAfter(ids, current, deficit)

	if loop {
		// The active playlist is an infinite cycle under loop: re-slice
		// from its start until the deficit is satisfied.
		for len(next) < deficit && len(ids) > 0 {
			n := deficit - len(next)
			if n > len(ids) {
				n = len(ids)
			}
			next = append(next, ids[:n]...)
		}
		return next, nil
	}

	if len(next) < deficit && playlist != r.defaultPlaylist {
		all, err := r.source.OrderedSongIDs(ctx, r.defaultPlaylist)
		if err != nil {
			return nil, err
		}
		next = append(next, sliceAfter(all, current, deficit-len(next))...)
	}
	return next, nil
}

// BuildShufflePool fetches the playlist, applies an unbiased Fisher-Yates
// permutation, and splits off the first song to play. The returned pool
// excludes that song.
func (r *Replenisher) BuildShufflePool(
	ctx context.Context,
	playlist string,
) (catalog.SongID, []catalog.SongID, error) {
	if playlist == "" {
		playlist = r.defaultPlaylist
	}
	ids, err := r.source.OrderedSongIDs(ctx, playlist)
	if err != nil {
		return 0, nil, err
	}
	if len(ids) == 0 {
		return 0, nil, nil
	}

	pool := cloneIDs(ids)
	r.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[0], pool[1:], nil
}

// RebuildPool re-scans a playlist into a fresh full permutation. Used
// once an existing pool has been fully consumed while shuffle stays on.
func (r *Replenisher) RebuildPool(
	ctx context.Context,
	playlist string,
) ([]catalog.SongID, error) {
	if playlist == "" {
		playlist = r.defaultPlaylist
	}
	ids, err := r.source.OrderedSongIDs(ctx, playlist)
	if err != nil {
		return nil, err
	}
	pool := cloneIDs(ids)
	r.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool, nil
}

// sliceAfter returns up to n ids immediately following current. A current
// id that is absent from the list scans from the start.
func sliceAfter(ids []catalog.SongID, current catalog.SongID, n int) []catalog.SongID {
	start := 0
	for i, id := range ids {
		if id == current {
			start = i + 1
			break
		}
	}
	end := start + n
	if end > len(ids) {
		end = len(ids)
	}
	return cloneIDs(ids[start:end])
}
