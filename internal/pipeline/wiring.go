package pipeline

import (
	"runtime"

	"github.com/lokifeed/matchcore/internal/book"
	"github.com/lokifeed/matchcore/internal/ring"
)

// Wiring fans each deserialized update into two independent ring
// buffers: one drained by order-book-mirror workers, one by
// matching-engine workers (spec's data flow: "receiver -> parse ->
// for each update: enqueue(RB_book), enqueue(RB_match)").
type Wiring struct {
	RBBook  *ring.Buffer[book.Update]
	RBMatch *ring.Buffer[book.Update]
	life    *Lifecycle
}

// NewWiring constructs the two ring buffers at the given capacities
// and returns a Wiring ready to accept updates.
func NewWiring(bookCapacity, matchCapacity int, life *Lifecycle) *Wiring {
	return &Wiring{
		RBBook:  ring.New[book.Update](bookCapacity),
		RBMatch: ring.New[book.Update](matchCapacity),
		life:    life,
	}
}

// Dispatch busy-enqueues u onto both ring buffers, yielding on a full
// buffer, until the lifecycle stops (spec §5 suspension point ii).
// It returns false if the lifecycle stopped before both enqueues
// completed — the caller (the receiver loop) should simply move on,
// since pending items are discarded at shutdown anyway.
func (w *Wiring) Dispatch(u book.Update) bool {
	if !w.enqueue(w.RBBook, u) {
		return false
	}
	return w.enqueue(w.RBMatch, u)
}

func (w *Wiring) enqueue(buf *ring.Buffer[book.Update], u book.Update) bool {
	for w.life.Running() {
		if buf.Push(u) {
			return true
		}
		runtime.Gosched()
	}
	return false
}
