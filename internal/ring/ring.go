// Package ring implements a fixed-capacity, multi-producer /
// multi-consumer bounded FIFO, after Vyukov. It is the inter-thread
// hand-off primitive the rest of the pipeline stands on.
package ring

import "sync/atomic"

// cacheLinePad keeps head and tail on separate cache lines so
// producers and consumers don't false-share.
type cacheLinePad [64 - 8]byte

// slot holds one payload plus its own sequence tag. The sequence is
// the synchronization point: an acquire load on it observes the data
// write that preceded the matching release store.
type slot[T any] struct {
	sequence atomic.Uint64
	data     T
}

// Buffer is a bounded MPMC queue. Capacity is rounded up to the next
// power of two so that position-to-slot mapping is a mask, not a mod.
type Buffer[T any] struct {
	head  atomic.Uint64
	_     cacheLinePad
	tail  atomic.Uint64
	_     cacheLinePad
	slots []slot[T]
	mask  uint64
}

// New allocates a ring of at least capacity slots, rounded up to a
// power of two. Slot storage is allocated once and reused for the
// buffer's lifetime.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	size := nextPow2(uint64(capacity))
	b := &Buffer[T]{
		slots: make([]slot[T], size),
		mask:  size - 1,
	}
	for i := range b.slots {
		b.slots[i].sequence.Store(uint64(i))
	}
	return b
}

func nextPow2(n uint64) uint64 {
	if n&(n-1) == 0 {
		return n
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Cap reports the buffer's slot count (the rounded-up capacity).
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

// Push attempts to enqueue v. It returns false immediately if the
// buffer is full; it never blocks. Callers on a busy-loop should yield
// the CPU between failed attempts (spec §5's suspension point ii).
func (b *Buffer[T]) Push(v T) bool {
	pos := b.tail.Load()
	for {
		s := &b.slots[pos&b.mask]
		seq := s.sequence.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if b.tail.CompareAndSwap(pos, pos+1) {
				s.data = v
				s.sequence.Store(pos + 1)
				return true
			}
			// lost the race for this position; reload and retry.
			pos = b.tail.Load()
		case diff < 0:
			return false // full
		default:
			pos = b.tail.Load()
		}
	}
}

// Pop attempts to dequeue one item. It returns (zero, false)
// immediately if the buffer is empty; it never blocks.
func (b *Buffer[T]) Pop() (T, bool) {
	pos := b.head.Load()
	for {
		s := &b.slots[pos&b.mask]
		seq := s.sequence.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if b.head.CompareAndSwap(pos, pos+1) {
				v := s.data
				var zero T
				s.data = zero
				s.sequence.Store(pos + uint64(len(b.slots)))
				return v, true
			}
			pos = b.head.Load()
		case diff < 0:
			var zero T
			return zero, false // empty
		default:
			pos = b.head.Load()
		}
	}
}

// Empty is advisory only: it reflects a moment already in the past.
func (b *Buffer[T]) Empty() bool {
	return b.head.Load() == b.tail.Load()
}

// Full is advisory only: see Empty.
func (b *Buffer[T]) Full() bool {
	return b.tail.Load()-b.head.Load() == uint64(len(b.slots))
}

// Len is an advisory best-effort count of resident items.
func (b *Buffer[T]) Len() int {
	t := b.tail.Load()
	h := b.head.Load()
	if t < h {
		return 0
	}
	return int(t - h)
}
