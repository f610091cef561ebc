// Package memory adapts the teacher's RCU/epoch reclamation primitives
// (originally built for retiring matched orders) to a new job:
// collecting discarded book.State snapshots and handing them back to a
// Pool via the reclaim job. Nothing in this module takes a State back
// out of that pool (book.State's copy path always allocates), so this
// does not reduce allocations. Go's GC already guarantees a discarded
// State is freed once no reader holds it; this package does not
// replace that guarantee.
package memory

import "sync/atomic"

// GlobalEpoch monotonically increases once per reclaim pass.
var GlobalEpoch atomic.Uint64

const inactive = ^uint64(0)

// ReaderEpoch marks when a reader entered a read section. A reader
// calls Enter/Exit around a snapshot read and is passed to
// AdvanceEpochAndReclaim (or reclaim.New), which recycles nothing
// while it is inside that section. The diagnostics gRPC handlers do
// not register a ReaderEpoch.
type ReaderEpoch struct {
	epoch atomic.Uint64
}

func (r *ReaderEpoch) Enter() {
	r.epoch.Store(GlobalEpoch.Load())
}

func (r *ReaderEpoch) Exit() {
	r.epoch.Store(inactive)
}

func (r *ReaderEpoch) Value() uint64 {
	return r.epoch.Load()
}

// ReclaimablePool is the only requirement placed on a pool for
// reclamation; it is intentionally type-erased so RetireRing can hold
// a mix of retired values without a generic parameter of its own.
type ReclaimablePool interface {
	PutAny(any)
}

// AdvanceEpochAndReclaim advances the global epoch and, if none of
// readers is inside a read section, drains every retired value in ring
// into pool. If any reader is active, the first value dequeued is
// re-enqueued at the back of the ring and nothing is reclaimed in this
// pass; retired values carry no epoch of their own.
func AdvanceEpochAndReclaim(ring *RetireRing, pool ReclaimablePool, readers ...*ReaderEpoch) {
	GlobalEpoch.Add(1)
	min := minReaderEpoch(readers...)

	for {
		obj := ring.Dequeue()
		if obj == nil {
			return
		}

		if min == inactive {
			pool.PutAny(obj)
			continue
		}

		// Not safe yet: the ring is FIFO, so anything retired after
		// this one isn't safe either. Push it back and stop.
		_ = ring.Enqueue(obj)
		return
	}
}

func minReaderEpoch(rs ...*ReaderEpoch) uint64 {
	min := inactive
	for _, r := range rs {
		if r == nil {
			continue
		}
		if v := r.Value(); v < min {
			min = v
		}
	}
	return min
}
