package pipeline

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/lokifeed/matchcore/internal/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWiringDispatchesToBothBuffers(t *testing.T) {
	life := NewLifecycle()
	w := NewWiring(16, 16, life)

	u := book.Update{Side: book.Bid, Price: 100, Size: 1}
	require.True(t, w.Dispatch(u))

	got, ok := w.RBBook.Pop()
	require.True(t, ok)
	assert.Equal(t, u, got)

	got, ok = w.RBMatch.Pop()
	require.True(t, ok)
	assert.Equal(t, u, got)
}

func TestWorkerPoolDrainsUntilStopped(t *testing.T) {
	life := NewLifecycle()
	w := NewWiring(64, 64, life)

	var processed atomic.Int64
	pool := NewWorkerPool(w.RBBook, 4, func(book.Update) {
		processed.Add(1)
	}, life)
	pool.Start()

	const n = 1000
	for i := 0; i < n; i++ {
		for !w.RBBook.Push(book.Update{Side: book.Bid, Price: float64(i), Size: 1}) {
		}
	}

	require.Eventually(t, func() bool {
		return processed.Load() == n
	}, time.Second, time.Millisecond)

	life.Stop()
	pool.Wait()
	assert.Equal(t, int64(n), processed.Load())
}
