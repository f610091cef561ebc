package memory

import (
	"sync"
	"sync/atomic"
)

// RetireRing is a multi-producer, single-consumer ring buffer of
// retired values, generalized from the teacher's order-retirement
// ring to retiring arbitrary values (book.State snapshots, in this
// module). Enqueue is called concurrently from every worker in a
// book-mirror worker pool, so claiming a slot and publishing head is
// serialized with a mutex; Dequeue is driven by the single reclaim
// job goroutine and stays lock-free, synchronizing only on the
// atomic head/tail counters.
type RetireRing struct {
	mu    sync.Mutex
	head  uint64
	_pad1 [56]byte
	tail  uint64
	_pad2 [56]byte
	buf   []any
	mask  uint64
}

// NewRetireRing allocates a fixed-size circular buffer. size must be
// a power of two.
func NewRetireRing(size uint64) *RetireRing {
	if size&(size-1) != 0 {
		panic("memory: RetireRing size must be a power of two")
	}
	return &RetireRing{
		buf:  make([]any, size),
		mask: size - 1,
	}
}

// Enqueue is safe for concurrent use by multiple producers.
func (r *RetireRing) Enqueue(v any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.head
	t := atomic.LoadUint64(&r.tail)
	if h-t == uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	atomic.StoreUint64(&r.head, h+1)
	return true
}

// Dequeue must only be called from a single consumer goroutine.
func (r *RetireRing) Dequeue() any {
	t := r.tail
	h := atomic.LoadUint64(&r.head)
	if t == h {
		return nil
	}
	v := r.buf[t&r.mask]
	r.buf[t&r.mask] = nil
	atomic.StoreUint64(&r.tail, t+1)
	return v
}
