package offload

import (
	"context"
	"sync"
	"sync/atomic"
)

// Pool fans inputs out across a fixed set of workers in strict round-robin
// order and fans their output streams back into one merged stream. All
// workers run the same function; the set is fixed at construction and never
// grows, shrinks, or reassigns.
//
// The merged stream interleaves results in real-time completion order
// across workers: per-worker FIFO order survives, cross-worker order does
// not. The merged stream closes once every worker's stream has closed.
//
// Type parameters:
//   - I: The input type delivered through Send
//   - O: The result type emitted on Out
type Pool[I any, O any] struct {
	workers []*Worker[I, O]
	counter atomic.Int64
	out     chan Result[O]
	started atomic.Bool
}

// NewPool creates a pool of workers around a synchronous function. The pool
// size comes from WithWorkerCount and defaults to DefaultWorkerCount. No
// execution units are created until Start. Panics if fn is nil.
func NewPool[I any, O any](fn Func[I, O], opts ...Option) *Pool[I, O] {
	if fn == nil {
		panic("offload: NewPool called with nil function")
	}
	return newPool[I, O](fn, nil, opts...)
}

// NewAsyncPool creates a pool of workers around a deferred-result function.
// Panics if fn is nil.
func NewAsyncPool[I any, O any](fn AsyncFunc[I, O], opts ...Option) *Pool[I, O] {
	if fn == nil {
		panic("offload: NewAsyncPool called with nil function")
	}
	return newPool[I, O](nil, fn, opts...)
}

func newPool[I any, O any](fn Func[I, O], afn AsyncFunc[I, O], opts ...Option) *Pool[I, O] {
	cfg := newConfig(opts...)
	workers := make([]*Worker[I, O], cfg.workerCount)
	for i := range workers {
		workers[i] = newWorker[I, O](fn, afn, cfg, i)
	}
	return &Pool[I, O]{
		workers: workers,
		out:     make(chan Result[O]),
	}
}

// Start starts every worker, one at a time, awaiting each handshake before
// launching the next, then subscribes to every worker's output stream. If a
// worker fails to start, the already-started ones are force-shut and the
// error is returned.
func (p *Pool[I, O]) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	for i, w := range p.workers {
		if err := w.Start(ctx); err != nil {
			for _, started := range p.workers[:i] {
				started.ForceShutdown()
			}
			close(p.out)
			return err
		}
	}

	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *Worker[I, O]) {
			defer wg.Done()
			for r := range w.Out() {
				p.out <- r
			}
		}(w)
	}
	go func() {
		wg.Wait()
		close(p.out)
	}()

	debugLog("pool of %d workers running", len(p.workers))
	return nil
}

// Send routes one input to the next worker in round-robin order: input k
// (0-indexed, counted across Send and SendAll) goes to workers[k mod n].
// Like Worker.Send it never blocks and never reports failure. Safe for
// concurrent callers.
func (p *Pool[I, O]) Send(in I) {
	p.workers[p.next()].Send(in)
}

// SendAll sends each input in order, so routing follows strict round-robin
// over the combined call sequence.
func (p *Pool[I, O]) SendAll(ins []I) {
	for _, in := range ins {
		p.Send(in)
	}
}

// Shutdown asks every worker to drain and terminate. Each worker drains
// independently; the merged stream closes once the last worker's stream
// does, which is the pool-wide completion signal.
func (p *Pool[I, O]) Shutdown() {
	for _, w := range p.workers {
		w.Shutdown()
	}
}

// ForceShutdown terminates every worker immediately, dropping queued and
// in-flight work. Idempotent.
func (p *Pool[I, O]) ForceShutdown() {
	for _, w := range p.workers {
		w.ForceShutdown()
	}
}

// Out returns the merged output stream.
func (p *Pool[I, O]) Out() <-chan Result[O] {
	return p.out
}

// WorkerCount returns the fixed pool size.
func (p *Pool[I, O]) WorkerCount() int {
	return len(p.workers)
}

// next advances the round-robin cursor. The first call returns 0, so input
// k lands on workers[k mod n].
func (p *Pool[I, O]) next() int64 {
	return (p.counter.Add(1) - 1) % int64(len(p.workers))
}
