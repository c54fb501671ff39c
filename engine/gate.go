package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// gate is the admission control bounding the number of simultaneous
// runs. Capacity is fixed at startup; callers block in acquire until a
// slot frees. The counter behind it is never exposed directly.
type gate struct {
	slots  *semaphore.Weighted
	active atomic.Int64
}

func newGate(capacity int) *gate {
	return &gate{slots: semaphore.NewWeighted(int64(capacity))}
}

// acquire blocks the calling goroutine until a slot is available or
// ctx is done, without blocking unrelated runs.
func (g *gate) acquire(ctx context.Context) error {
	if err := g.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	g.active.Add(1)
	return nil
}

// release returns a slot. Callers pair it with acquire via defer so it
// runs on every exit path, including panics.
func (g *gate) release() {
	g.active.Add(-1)
	g.slots.Release(1)
}

// inFlight reports the number of runs currently holding a slot.
func (g *gate) inFlight() int64 {
	return g.active.Load()
}
