// Package pipeline wires a stream of deserialized updates into the
// order-book mirror and the matching engine: each update is fanned
// into two independent ring buffers, drained by two worker pools
// (spec §4.E).
package pipeline

import "sync/atomic"

// Lifecycle is the single run-flag every worker polls at the top of
// its loop (spec §5). Setting it false lets every loop drain its
// current iteration and exit; nothing left in a ring buffer at
// shutdown is replayed.
type Lifecycle struct {
	running atomic.Bool
}

// NewLifecycle returns a Lifecycle already in the running state.
func NewLifecycle() *Lifecycle {
	l := &Lifecycle{}
	l.running.Store(true)
	return l
}

// Running reports whether workers should keep looping.
func (l *Lifecycle) Running() bool {
	return l.running.Load()
}

// Stop flips the run flag false.
func (l *Lifecycle) Stop() {
	l.running.Store(false)
}
