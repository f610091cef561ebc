package pipeline

import (
	"runtime"
	"sync"

	"github.com/lokifeed/matchcore/internal/book"
	"github.com/lokifeed/matchcore/internal/ring"
)

// Handler processes one dequeued update. The book mirror's Apply and
// the matching engine's Match both satisfy this signature.
type Handler func(book.Update)

// WorkerPool drains a ring buffer with a fixed number of goroutines,
// busy-dequeuing and yielding on empty (spec §4.E/§5's suspension
// point i), generalizing the teacher's ad hoc per-job goroutine
// (cmd/server/main.go's ticker loops) into a reusable pool.
type WorkerPool struct {
	buf     *ring.Buffer[book.Update]
	handle  Handler
	workers int
	life    *Lifecycle

	wg sync.WaitGroup
}

// NewWorkerPool constructs a pool of workers goroutines draining buf
// via handle, gated by life.
func NewWorkerPool(buf *ring.Buffer[book.Update], workers int, handle Handler, life *Lifecycle) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{buf: buf, handle: handle, workers: workers, life: life}
}

// Start launches the pool's goroutines. It returns immediately.
func (p *WorkerPool) Start() {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.run()
	}
}

// Wait blocks until every worker goroutine has exited (i.e. until
// after Stop has been observed by all of them).
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) run() {
	defer p.wg.Done()
	for p.life.Running() {
		u, ok := p.buf.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		p.handle(u)
	}
}
