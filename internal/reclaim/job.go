// Package reclaim runs the periodic epoch-advance/retire-ring-drain
// job backing internal/memory's reclamation scheme, generalized from
// the teacher's cmd/server/main.go ticker loop that called
// svc.AdvanceEpoch() every two seconds.
package reclaim

import (
	"context"
	"time"

	"github.com/lokifeed/matchcore/internal/memory"
)

// Job periodically advances the global epoch and drains one or more
// retire rings back into their pools.
type Job struct {
	interval time.Duration
	pool     memory.ReclaimablePool
	rings    []*memory.RetireRing
	readers  []*memory.ReaderEpoch
}

// New constructs a reclaim job draining rings into pool every
// interval, respecting any active readers. pool is typically a
// *memory.Pool[book.State] constructed via memory.NewPool.
func New(interval time.Duration, pool memory.ReclaimablePool, rings []*memory.RetireRing, readers ...*memory.ReaderEpoch) *Job {
	return &Job{interval: interval, pool: pool, rings: rings, readers: readers}
}

// Run blocks, advancing the epoch and reclaiming on every tick, until
// ctx is canceled.
func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ring := range j.rings {
				if ring == nil {
					continue
				}
				memory.AdvanceEpochAndReclaim(ring, j.pool, j.readers...)
			}
		}
	}
}
