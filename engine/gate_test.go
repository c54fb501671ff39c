package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateBoundsConcurrency(t *testing.T) {
	const capacity = 3
	const workers = 20

	g := newGate(capacity)

	var maxObserved atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, g.acquire(context.Background()))
			defer g.release()

			active := g.inFlight()
			for {
				observed := maxObserved.Load()
				if active <= observed || maxObserved.CompareAndSwap(observed, active) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxObserved.Load(), int64(capacity))
	assert.Equal(t, int64(0), g.inFlight())
}

func TestGateAcquireHonorsContext(t *testing.T) {
	g := newGate(1)
	require.NoError(t, g.acquire(context.Background()))
	defer g.release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(1), g.inFlight())
}

func TestGateReleaseFreesSlot(t *testing.T) {
	g := newGate(1)
	require.NoError(t, g.acquire(context.Background()))
	g.release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.acquire(ctx))
	g.release()
}
