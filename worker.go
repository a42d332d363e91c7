package offload

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/offloadkit/offload/internal/cpu"
	"github.com/offloadkit/offload/internal/mailbox"
)

// Worker owns one isolated execution unit running a user-supplied function.
// Inputs flow in through an unbounded FIFO mailbox and results flow out on a
// single-subscription output stream. The worker shares no mutable state with
// its owner; every interaction is a message over a channel.
//
// Lifecycle: NewWorker → Start → Send/SendAll → Shutdown (drain) or
// ForceShutdown (drop). The output stream closes exactly once, on either
// shutdown path, and is never reopened.
//
// Type parameters:
//   - I: The input type delivered through Send
//   - O: The result type emitted on Out
type Worker[I any, O any] struct {
	fn   Func[I, O]
	afn  AsyncFunc[I, O]
	conf *config
	id   int

	// mbox is set by the startup handshake; nil until Start returns.
	mbox *mailbox.Mailbox[message[I]]

	res        chan Result[O] // execution unit → forwarder
	out        chan Result[O] // forwarder → consumer
	ctrl       chan struct{}  // mirrors the termination sentinel, nothing else
	stop       chan struct{}  // closed by ForceShutdown
	listenDone chan struct{}

	unitCtx context.Context
	cancel  context.CancelFunc

	force     sync.Once
	outOnce   sync.Once
	listening atomic.Bool
	state     atomic.Int32
}

// NewWorker creates a worker around a synchronous function. No execution
// unit is created until Start. Panics if fn is nil.
func NewWorker[I any, O any](fn Func[I, O], opts ...Option) *Worker[I, O] {
	if fn == nil {
		panic("offload: NewWorker called with nil function")
	}
	return newWorker[I, O](fn, nil, newConfig(opts...), 0)
}

// NewAsyncWorker creates a worker around a deferred-result function. The
// worker does not wait for one Future before dispatching the next input, so
// output order follows completion order, not dispatch order. Panics if fn
// is nil.
func NewAsyncWorker[I any, O any](fn AsyncFunc[I, O], opts ...Option) *Worker[I, O] {
	if fn == nil {
		panic("offload: NewAsyncWorker called with nil function")
	}
	return newWorker[I, O](nil, fn, newConfig(opts...), 0)
}

func newWorker[I any, O any](fn Func[I, O], afn AsyncFunc[I, O], cfg *config, id int) *Worker[I, O] {
	unitCtx, cancel := context.WithCancel(context.Background())
	return &Worker[I, O]{
		fn:         fn,
		afn:        afn,
		conf:       cfg,
		id:         id,
		res:        make(chan Result[O]),
		out:        make(chan Result[O]),
		ctrl:       make(chan struct{}),
		stop:       make(chan struct{}),
		listenDone: make(chan struct{}),
		unitCtx:    unitCtx,
		cancel:     cancel,
	}
}

// Start launches the execution unit and blocks until it has completed the
// startup handshake: the unit creates its own mailbox and hands the send
// side back over a single-use setup channel. Start must return before the
// first Send; sending earlier is a contract violation with undefined
// delivery.
//
// ctx bounds only the wait for the handshake. Cancelling it after Start has
// returned has no effect on the worker.
func (w *Worker[I, O]) Start(ctx context.Context) error {
	if !w.state.CompareAndSwap(int32(StateCreated), int32(StateStarted)) {
		return ErrAlreadyStarted
	}

	// Buffered so the unit can complete its half of the handshake even if
	// we abandon the wait below.
	setup := make(chan *mailbox.Mailbox[message[I]], 1)
	go w.run(w.unitCtx, setup)

	select {
	case mb := <-setup:
		w.mbox = mb
	case <-ctx.Done():
		w.cancel()
		w.state.Store(int32(StateTerminated))
		w.outOnce.Do(func() { close(w.out) })
		return ctx.Err()
	}

	w.listening.Store(true)
	go w.listen()
	w.state.Store(int32(StateRunning))
	debugLog("worker %d running", w.id)
	return nil
}

// Send enqueues one input onto the FIFO mailbox. It never blocks and never
// reports failure; the mailbox is unbounded. Inputs sent after Shutdown are
// silently ignored; the dispatch loop has already stopped reading.
func (w *Worker[I, O]) Send(in I) {
	w.mbox.Push(message[I]{input: in})
}

// SendAll enqueues each input in order, preserving their relative order in
// this worker's queue.
func (w *Worker[I, O]) SendAll(ins []I) {
	for _, in := range ins {
		w.Send(in)
	}
}

// Shutdown enqueues the termination sentinel behind everything already
// queued. Every input sent before this call is dispatched to the function
// before the unit stops; the output stream then closes. Shutdown is
// idempotent and never blocks.
func (w *Worker[I, O]) Shutdown() {
	if !w.state.CompareAndSwap(int32(StateRunning), int32(StateShuttingDown)) {
		return
	}
	debugLog("worker %d draining", w.id)
	w.mbox.Push(message[I]{stop: true})
}

// ForceShutdown terminates the worker immediately: the execution unit is
// cancelled, queued and in-flight work is dropped with no partial results,
// and the output stream is closed by the time ForceShutdown returns. Safe
// to call at any lifecycle point and any number of times, including after
// a graceful shutdown.
func (w *Worker[I, O]) ForceShutdown() {
	w.force.Do(func() {
		close(w.stop)
		w.cancel()
	})

	if w.listening.Load() {
		// The forwarder owns the output channel; wait for it to close it.
		<-w.listenDone
		return
	}

	// Start never completed, so no goroutine writes to out.
	w.state.Store(int32(StateTerminated))
	w.outOnce.Do(func() { close(w.out) })
}

// Out returns the worker's output stream. It is single-subscription: exactly
// one Result per input arrives until a shutdown closes the channel. For a
// synchronous function, results arrive in input order.
func (w *Worker[I, O]) Out() <-chan Result[O] {
	return w.out
}

// State reports the worker's current lifecycle state.
func (w *Worker[I, O]) State() LifecycleState {
	return LifecycleState(w.state.Load())
}

// run is the dispatch loop, the only code that executes inside the
// execution unit. It creates the mailbox, completes the handshake, then
// consumes envelopes strictly FIFO until the sentinel or cancellation.
func (w *Worker[I, O]) run(ctx context.Context, setup chan<- *mailbox.Mailbox[message[I]]) {
	if w.conf.pinned {
		defer cpu.SetupWorkerAffinity(w.id)()
	}

	mb := mailbox.New[message[I]]()
	setup <- mb

	var pending sync.WaitGroup
	for {
		msg, ok := mb.Recv(ctx)
		if !ok {
			return // forced termination
		}

		if msg.stop {
			// Deferred results still in flight count as queued work:
			// let them land on the stream before mirroring the sentinel.
			pending.Wait()
			select {
			case w.ctrl <- struct{}{}:
			case <-ctx.Done():
			}
			return
		}

		if w.conf.rateLimiter != nil {
			if err := w.conf.rateLimiter.Wait(ctx); err != nil {
				return
			}
		}
		w.dispatch(ctx, msg.input, &pending)
	}
}

// dispatch invokes the function on one input. Synchronous results are
// forwarded immediately; deferred results are forwarded by a completion
// goroutine when their Future resolves, without holding up the loop.
func (w *Worker[I, O]) dispatch(ctx context.Context, in I, pending *sync.WaitGroup) {
	if w.fn != nil {
		w.emit(ctx, invokeGuarded(w.fn, in))
		return
	}

	fut, err := invokeAsyncGuarded(w.afn, in)
	if err != nil {
		w.emit(ctx, Result[O]{Err: err})
		return
	}

	pending.Add(1)
	go func() {
		defer pending.Done()
		select {
		case <-fut.Done():
			v, err := fut.Get()
			w.emit(ctx, Result[O]{Value: v, Err: err})
		case <-ctx.Done():
		}
	}()
}

// emit hands one result to the forwarder. Abandoned on cancellation so a
// forced shutdown never strands the unit mid-send.
func (w *Worker[I, O]) emit(ctx context.Context, r Result[O]) {
	select {
	case w.res <- r:
	case <-ctx.Done():
	}
}

// listen is the owner-side listener. It forwards results from the unit to
// the consumer-facing stream and reacts to exactly two stop signals: the
// mirrored sentinel on the control channel (graceful) or the stop channel
// (forced). It is the sole writer and closer of the output channel, which
// is what makes closing it race-free.
//
// The control channel carries nothing but the sentinel. The unit only
// mirrors it after every result send has been received here, so returning
// on ctrl can never lose a drained result.
func (w *Worker[I, O]) listen() {
	defer close(w.listenDone)
	defer w.outOnce.Do(func() { close(w.out) })
	defer w.cancel()
	defer w.state.Store(int32(StateTerminated))
	defer debugLog("worker %d terminated", w.id)

	for {
		select {
		case r := <-w.res:
			select {
			case w.out <- r:
			case <-w.stop:
				return
			}
		case <-w.ctrl:
			return
		case <-w.stop:
			return
		}
	}
}
