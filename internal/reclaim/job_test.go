package reclaim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lokifeed/matchcore/internal/book"
	"github.com/lokifeed/matchcore/internal/memory"
)

func TestJobDrainsRetireRingOnTick(t *testing.T) {
	ring := memory.NewRetireRing(4)
	ring.Enqueue(book.Empty())
	ring.Enqueue(book.Empty())

	var reclaimed atomic.Int64
	pool := countingPool{n: &reclaimed}
	j := New(5*time.Millisecond, pool, []*memory.RetireRing{ring})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go j.Run(ctx)

	require.Eventually(t, func() bool {
		return reclaimed.Load() == 2
	}, 200*time.Millisecond, 5*time.Millisecond)

	require.Nil(t, ring.Dequeue())
}

type countingPool struct {
	n *atomic.Int64
}

func (p countingPool) PutAny(any) { p.n.Add(1) }
