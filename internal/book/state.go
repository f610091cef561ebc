// Package book implements the snapshot-published order-book state:
// an immutable value object over two price-level maps, plus the
// CAS-based mirror that publishes new snapshots without ever
// blocking a reader.
package book

import (
	"github.com/tidwall/btree"
)

// MaxDepth is the compile-time cap on price levels retained per side.
const MaxDepth = 100

// Side tags which book side a level or update belongs to.
type Side int

const (
	Ask Side = iota
	Bid
)

// UpdateMode disambiguates the two call-site semantics the source
// conflated (spec §9 open question): the mirror always replaces a
// level's resting size (Absolute); the matching engine always applies
// a signed delta (Delta).
type UpdateMode int

const (
	// Absolute sets map[price] := size outright.
	Absolute UpdateMode = iota
	// Delta adds a signed size to the existing level, removing it if
	// the result reaches zero.
	Delta
)

// Level is one aggregated (price, total size) pair.
type Level struct {
	Price float64
	Size  float64
}

// State is an immutable snapshot of both sides of a price-level book.
// It has no identity: equality is value equality over its levels.
// Mutation always goes through Update, which returns a fresh State
// built by structural copy — State itself is never mutated in place
// once published.
type State struct {
	bids *btree.Map[float64, float64] // descending price order (best = max)
	asks *btree.Map[float64, float64] // ascending price order (best = min)
}

// Empty returns the initial, empty book state.
func Empty() *State {
	return &State{
		bids: btree.NewMap[float64, float64](32),
		asks: btree.NewMap[float64, float64](32),
	}
}

// clone produces a fresh State sharing btree structure with its
// predecessor until a write path diverges it (tidwall/btree.Map.Copy
// is the O(1) copy-on-write clone the spec's "deep structural copy"
// snapshot lifecycle calls for).
func (s *State) clone() *State {
	return &State{
		bids: s.bids.Copy(),
		asks: s.asks.Copy(),
	}
}

func (s *State) treeFor(side Side) *btree.Map[float64, float64] {
	if side == Bid {
		return s.bids
	}
	return s.asks
}

// Update returns a new State reflecting one update applied to side at
// price. mode selects whether size replaces or is added to the
// existing resting size; size == 0 always removes the level (spec
// §3: "size == 0 means remove this price level").
//
// When an insertion would push the side over MaxDepth, the worst-end
// entry is evicted: lowest price for bids, highest price for asks.
func (s *State) Update(side Side, mode UpdateMode, price, size float64) *State {
	next := s.clone()
	tree := next.treeFor(side)

	var newSize float64
	switch mode {
	case Absolute:
		newSize = size
	case Delta:
		existing, _ := tree.Get(price)
		newSize = existing + size
	}

	if size == 0 || newSize <= 0 {
		tree.Delete(price)
		return next
	}

	tree.Set(price, newSize)
	evictWorst(tree, side)
	return next
}

func evictWorst(tree *btree.Map[float64, float64], side Side) {
	if tree.Len() <= MaxDepth {
		return
	}
	if side == Bid {
		tree.PopMin() // worst bid = lowest price
	} else {
		tree.PopMax() // worst ask = highest price
	}
}

// Depth reports the number of resident levels on side.
func (s *State) Depth(side Side) int {
	return s.treeFor(side).Len()
}

// EmptySide reports whether side currently has no levels.
func (s *State) EmptySide(side Side) bool {
	return s.treeFor(side).Len() == 0
}

// BestBid returns the highest bid level, if any.
func (s *State) BestBid() (Level, bool) {
	p, q, ok := s.bids.Max()
	if !ok {
		return Level{}, false
	}
	return Level{Price: p, Size: q}, true
}

// BestAsk returns the lowest ask level, if any.
func (s *State) BestAsk() (Level, bool) {
	p, q, ok := s.asks.Min()
	if !ok {
		return Level{}, false
	}
	return Level{Price: p, Size: q}, true
}

// Levels returns up to min(depth, MaxDepth) levels for side, best
// first, for diagnostic / API use.
func (s *State) Levels(side Side, depth int) []Level {
	if depth > MaxDepth {
		depth = MaxDepth
	}
	out := make([]Level, 0, depth)
	tree := s.treeFor(side)
	walk := tree.Scan
	if side == Bid {
		walk = tree.Reverse
	}
	walk(func(price, size float64) bool {
		if len(out) >= depth {
			return false
		}
		out = append(out, Level{Price: price, Size: size})
		return true
	})
	return out
}

// Uncrossed reports whether best bid is strictly less than best ask
// (spec §3 invariant for the matching engine; the mirror makes no
// such guarantee and never calls this).
func (s *State) Uncrossed() bool {
	bid, hasBid := s.BestBid()
	ask, hasAsk := s.BestAsk()
	if !hasBid || !hasAsk {
		return true
	}
	return bid.Price < ask.Price
}
