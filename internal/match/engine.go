// Package match implements the matching engine: it crosses an
// incoming order against the current book state, produces trades, and
// installs the resulting state via the same snapshot-CAS discipline
// the order-book mirror uses (spec §4.D).
package match

import (
	"runtime"
	"sync/atomic"

	"github.com/lokifeed/matchcore/internal/book"
)

// Trade is one execution the engine produced. TakerSide labels the
// side of the incoming order that crossed the resting book.
type Trade struct {
	TakerSide book.Side
	Price     float64
	Size      float64
}

// Callback is invoked once per emitted trade, in generation order,
// always on the goroutine that committed the state producing it.
// Implementations must not re-enter the engine synchronously (spec
// §6); route such intents back through the pipeline's ring buffer
// instead.
type Callback func(Trade)

// Engine shares its snapshot-CAS discipline with book.Mirror but
// additionally produces a trade stream, and install only happens once
// per match call after the whole walk has been composed (spec's
// {observe, compose, commit, emit} state machine).
type Engine struct {
	current atomic.Pointer[book.State]
	onTrade Callback

	casRetries atomic.Uint64
}

// New constructs an engine starting from the empty book, or from seed
// if non-nil (e.g. to share an initial view with a mirror at
// startup). onTrade may be nil.
func New(seed *book.State, onTrade Callback) *Engine {
	e := &Engine{onTrade: onTrade}
	if seed == nil {
		seed = book.Empty()
	}
	e.current.Store(seed)
	return e
}

// Snapshot acquire-loads the currently committed state.
func (e *Engine) Snapshot() *book.State {
	return e.current.Load()
}

func (e *Engine) BestBid() (book.Level, bool) { return e.Snapshot().BestBid() }
func (e *Engine) BestAsk() (book.Level, bool) { return e.Snapshot().BestAsk() }

// CASRetries is an advisory counter of lost CAS races.
func (e *Engine) CASRetries() uint64 { return e.casRetries.Load() }

// Match crosses u against the current snapshot. observe/compose run
// against a private copy so nothing is visible to readers until
// commit succeeds; on a lost CAS the candidate state and its pending
// trades are discarded and the whole walk restarts from the new
// current snapshot (spec: "no phantom trades on lost CAS races").
func (e *Engine) Match(u book.Update) {
	for {
		old := e.current.Load() // observe

		next, trades := apply(old, u) // compose

		if e.current.CompareAndSwap(old, next) { // commit
			for _, t := range trades { // emit
				if e.onTrade != nil {
					e.onTrade(t)
				}
			}
			return
		}

		e.casRetries.Add(1)
		runtime.Gosched()
		// commit -> observe on failure: loop restarts.
	}
}

// apply runs the compose step: it walks the opposite side, emitting
// trades and signed-delta updates, and rests any remainder — unless
// resting it would cross the book, in which case the remainder is
// dropped (spec §9 open question, resolved in favor of the hard
// uncrossed invariant in §3; see DESIGN.md).
func apply(old *book.State, u book.Update) (*book.State, []Trade) {
	next := old
	remaining := u.Size
	var trades []Trade

	if u.Side == book.Bid {
		for remaining > 0 {
			best, ok := next.BestAsk()
			if !ok || best.Price > u.Price {
				break
			}
			t := min64(remaining, best.Size)
			trades = append(trades, Trade{TakerSide: book.Bid, Price: best.Price, Size: t})

			if t == best.Size {
				next = next.Update(book.Ask, book.Delta, best.Price, 0)
			} else {
				next = next.Update(book.Ask, book.Delta, best.Price, -t)
			}
			remaining -= t
		}
		if remaining > 0 && !wouldCross(next, book.Bid, u.Price) {
			next = next.Update(book.Bid, book.Delta, u.Price, remaining)
		}
		return next, trades
	}

	// ASK
	for remaining > 0 {
		best, ok := next.BestBid()
		if !ok || best.Price < u.Price {
			break
		}
		t := min64(remaining, best.Size)
		trades = append(trades, Trade{TakerSide: book.Ask, Price: best.Price, Size: t})

		if t == best.Size {
			next = next.Update(book.Bid, book.Delta, best.Price, 0)
		} else {
			next = next.Update(book.Bid, book.Delta, best.Price, -t)
		}
		remaining -= t
	}
	if remaining > 0 && !wouldCross(next, book.Ask, u.Price) {
		next = next.Update(book.Ask, book.Delta, u.Price, remaining)
	}
	return next, trades
}

// wouldCross reports whether resting a remainder for side at price
// would make best-bid >= best-ask.
func wouldCross(s *book.State, side book.Side, price float64) bool {
	if side == book.Bid {
		ask, ok := s.BestAsk()
		return ok && price >= ask.Price
	}
	bid, ok := s.BestBid()
	return ok && price <= bid.Price
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
