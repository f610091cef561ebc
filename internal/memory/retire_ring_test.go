package memory

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRetireRingBasic(t *testing.T) {
	r := NewRetireRing(4)

	if !r.Enqueue("a") || !r.Enqueue("b") {
		t.Fatal("enqueue failed unexpectedly")
	}
	if r.Dequeue() != "a" {
		t.Error("expected first dequeue to be a")
	}
	if r.Dequeue() != "b" {
		t.Error("expected second dequeue to be b")
	}
	if r.Dequeue() != nil {
		t.Error("expected empty ring to return nil")
	}
}

func TestRetireRingRejectsWhenFull(t *testing.T) {
	r := NewRetireRing(2)

	if !r.Enqueue(1) || !r.Enqueue(2) {
		t.Fatal("enqueue failed unexpectedly")
	}
	if r.Enqueue(3) {
		t.Fatal("expected enqueue on a full ring to fail")
	}
}

func TestAdvanceEpochAndReclaimWithNoActiveReaders(t *testing.T) {
	r := NewRetireRing(4)
	r.Enqueue(&struct{ n int }{n: 1})
	r.Enqueue(&struct{ n int }{n: 2})

	var reclaimed int
	pool := reclaimablePoolFunc(func(any) { reclaimed++ })

	AdvanceEpochAndReclaim(r, pool)

	if reclaimed != 2 {
		t.Fatalf("expected 2 reclaimed, got %d", reclaimed)
	}
	if r.Dequeue() != nil {
		t.Fatal("expected ring drained")
	}
}

type reclaimablePoolFunc func(any)

func (f reclaimablePoolFunc) PutAny(v any) { f(v) }

// TestRetireRingConcurrentProducers drives Enqueue from many goroutines
// at once, the way a book-mirror worker pool does, and checks that
// every accepted item is dequeued exactly once with no loss or
// duplication.
func TestRetireRingConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 2000
	r := NewRetireRing(1 << 16)

	var wg sync.WaitGroup
	var accepted atomic.Int64
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if r.Enqueue(base + i) {
					accepted.Add(1)
				}
			}
		}(p * perProducer)
	}
	wg.Wait()

	want := int(accepted.Load())
	if want != producers*perProducer {
		t.Fatalf("expected every enqueue to succeed on a ring this large, got %d accepted", want)
	}

	seen := make(map[int]bool, want)
	for i := 0; i < want; i++ {
		v := r.Dequeue()
		if v == nil {
			t.Fatalf("dequeue %d: ring drained early, expected %d items", i, want)
		}
		n := v.(int)
		if seen[n] {
			t.Fatalf("value %d dequeued more than once", n)
		}
		seen[n] = true
	}
	if r.Dequeue() != nil {
		t.Fatal("expected ring empty after draining every accepted item")
	}
	if len(seen) != want {
		t.Fatalf("expected %d distinct values, got %d", want, len(seen))
	}
}
