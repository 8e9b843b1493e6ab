package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/boids/systems"
)

// span is a half-open range of snapshot indices handed to one worker.
type span struct{ lo, hi int }

// workerPool runs agent updates on a fixed set of goroutines. Each worker owns
// one Perception scratch buffer and writes only the result slots of its span,
// so a tick needs no locking beyond the completion wait.
type workerPool struct {
	size      int
	scratches []systems.Perception

	spans   chan span
	dt      float64 // set before dispatch; the channel send publishes it
	pending sync.WaitGroup
	exited  sync.WaitGroup
	started bool
}

// newWorkerPool sizes the pool; workers <= 0 means GOMAXPROCS.
// Goroutines start lazily on the first parallel tick.
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{
		size:      workers,
		scratches: make([]systems.Perception, workers),
	}
}

func (p *workerPool) start(w *World) {
	p.spans = make(chan span, p.size)
	p.started = true
	for i := range p.size {
		p.exited.Add(1)
		go func(scratch *systems.Perception) {
			defer p.exited.Done()
			for s := range p.spans {
				w.computeChunk(s.lo, s.hi, scratch, p.dt)
				p.pending.Done()
			}
		}(&p.scratches[i])
	}
}

// stop closes the span channel and waits for every worker to return.
func (p *workerPool) stop() {
	if !p.started {
		return
	}
	close(p.spans)
	p.exited.Wait()
	p.started = false
}

// computeParallel splits n agents into at most one span per worker and
// blocks until all of them are done.
func (w *World) computeParallel(n int, dt float64) {
	p := w.pool
	if !p.started {
		p.start(w)
	}
	p.dt = dt

	per := (n + p.size - 1) / p.size
	for lo := 0; lo < n; lo += per {
		p.pending.Add(1)
		p.spans <- span{lo: lo, hi: min(lo+per, n)}
	}
	p.pending.Wait()
}
