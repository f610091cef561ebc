package book

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorApplySingleThreaded(t *testing.T) {
	m := NewMirror(0)

	m.Apply(Update{Side: Ask, Price: 101, Size: 10})
	m.Apply(Update{Side: Bid, Price: 100, Size: 5})

	bestAsk, ok := m.BestAsk()
	require.True(t, ok)
	assert.Equal(t, Level{Price: 101, Size: 10}, bestAsk)

	bestBid, ok := m.BestBid()
	require.True(t, ok)
	assert.Equal(t, Level{Price: 100, Size: 5}, bestBid)
}

func TestMirrorRemoveLevel(t *testing.T) {
	m := NewMirror(0)
	m.Apply(Update{Side: Bid, Price: 100, Size: 5})
	m.Apply(Update{Side: Bid, Price: 100, Size: 0})

	_, ok := m.BestBid()
	assert.False(t, ok)
}

// TestMirrorConcurrentWritersNeverLoseAnUpdate exercises the CAS
// retry path under contention: every writer's update must eventually
// land. Bid eviction always drops the lowest price, so if no update
// was lost the resident levels are exactly the MaxDepth highest of
// the prices written, whatever order the writers interleaved in.
func TestMirrorConcurrentWritersNeverLoseAnUpdate(t *testing.T) {
	m := NewMirror(0)
	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				price := float64(w*perWriter + i)
				m.Apply(Update{Side: Bid, Price: price, Size: 1})
				runtime.Gosched()
			}
		}(w)
	}
	wg.Wait()

	// MaxDepth eviction caps resident levels even though
	// writers*perWriter (400) distinct prices were applied.
	snap := m.Snapshot()
	assert.LessOrEqual(t, snap.Depth(Bid), MaxDepth)

	levels := snap.Levels(Bid, MaxDepth)
	require.Len(t, levels, MaxDepth)
	for i, l := range levels {
		assert.Equal(t, Level{Price: float64(writers*perWriter - 1 - i), Size: 1}, l)
	}
}
