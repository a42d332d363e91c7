package offload

import "sync"

// Future is a single-assignment container for a result that resolves later.
// An AsyncFunc returns one Future per input; the worker forwards the value
// to its output stream when the Future completes.
//
// A Future completes at most once: the first call to Complete or Fail wins
// and later calls are no-ops.
type Future[O any] struct {
	once  sync.Once
	done  chan struct{}
	value O
	err   error
}

// NewFuture creates an unresolved Future.
func NewFuture[O any]() *Future[O] {
	return &Future[O]{done: make(chan struct{})}
}

// Go runs fn in its own goroutine and returns a Future that resolves with
// its result. It is the usual way to build an AsyncFunc:
//
//	worker := NewAsyncWorker(func(url string) *Future[[]byte] {
//	    return Go(func() ([]byte, error) { return fetch(url) })
//	})
func Go[O any](fn func() (O, error)) *Future[O] {
	f := NewFuture[O]()
	go func() {
		v, err := fn()
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(v)
	}()
	return f
}

// Complete resolves the Future with a value.
func (f *Future[O]) Complete(v O) {
	f.once.Do(func() {
		f.value = v
		close(f.done)
	})
}

// Fail resolves the Future with an error.
func (f *Future[O]) Fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed once the Future has resolved.
func (f *Future[O]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the Future resolves and returns its value or error.
func (f *Future[O]) Get() (O, error) {
	<-f.done
	return f.value, f.err
}
