package book

import (
	"runtime"
	"sync/atomic"

	"github.com/lokifeed/matchcore/internal/memory"
)

// Mirror holds the current published State behind a CAS pointer and
// applies raw external updates as absolute level replacements. It
// mirrors an external venue and makes no uncrossed-book guarantee —
// a momentarily crossed snapshot is expected and allowed.
type Mirror struct {
	current atomic.Pointer[State]

	// retire hands replaced States to the reclaim job (see package
	// memory's doc comment); it is not a correctness requirement: Go's
	// GC already frees a discarded State once no reader holds it.
	retire *memory.RetireRing
	casRetries atomic.Uint64
}

// NewMirror constructs a mirror published with the empty book state.
// retireRingSize, if non-zero, must be a power of two and sizes the
// background reclaim ring; pass 0 to disable retirement (GC handles
// everything).
func NewMirror(retireRingSize uint64) *Mirror {
	m := &Mirror{}
	m.current.Store(Empty())
	if retireRingSize != 0 {
		m.retire = memory.NewRetireRing(retireRingSize)
	}
	return m
}

// Snapshot acquire-loads the currently published state.
func (m *Mirror) Snapshot() *State {
	return m.current.Load()
}

// BestBid, BestAsk, Levels delegate to the current snapshot.
func (m *Mirror) BestBid() (Level, bool) { return m.Snapshot().BestBid() }
func (m *Mirror) BestAsk() (Level, bool) { return m.Snapshot().BestAsk() }
func (m *Mirror) Levels(side Side, depth int) []Level {
	return m.Snapshot().Levels(side, depth)
}

// Apply installs one raw update via copy-then-CAS, retrying against a
// freshly observed snapshot on every CAS loss. It never blocks: a lost
// CAS yields the goroutine and retries (spec §4.C: lock-free, not
// starvation-free).
func (m *Mirror) Apply(u Update) {
	for {
		old := m.current.Load()
		next := old.Update(u.Side, Absolute, u.Price, u.Size)

		if m.current.CompareAndSwap(old, next) {
			m.retireOld(old)
			return
		}
		m.casRetries.Add(1)
		runtime.Gosched()
	}
}

func (m *Mirror) retireOld(old *State) {
	if m.retire == nil {
		return
	}
	_ = m.retire.Enqueue(old)
}

// CASRetries is an advisory counter of lost CAS races, wired to the
// diagnostics metrics endpoint.
func (m *Mirror) CASRetries() uint64 {
	return m.casRetries.Load()
}

// RetireRing exposes the retirement ring so a background reclaim job
// (component H) can drain it; nil if retirement is disabled.
func (m *Mirror) RetireRing() *memory.RetireRing {
	return m.retire
}
