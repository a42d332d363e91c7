package offload

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	ErrAlreadyStarted = errors.New("worker already started")
	ErrNilFuture      = errors.New("async function returned a nil future")
)

// invokeGuarded runs a synchronous function with panic recovery. A panic is
// converted to a Result with Err set so one bad input cannot take down the
// execution unit or stall a consumer counting results.
func invokeGuarded[I any, O any](fn Func[I, O], in I) (r Result[O]) {
	defer func() {
		if rec := recover(); rec != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			r.Err = fmt.Errorf("worker panic: %v\nstack trace:\n%s", rec, buf[:n])
		}
	}()

	r.Value = fn(in)
	return r
}

// invokeAsyncGuarded calls a deferred-result function with panic recovery.
// Only the synchronous prefix of the call is guarded here; a failure inside
// the deferred computation is reported through the Future itself.
func invokeAsyncGuarded[I any, O any](fn AsyncFunc[I, O], in I) (fut *Future[O], err error) {
	defer func() {
		if rec := recover(); rec != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("worker panic: %v\nstack trace:\n%s", rec, buf[:n])
		}
	}()

	fut = fn(in)
	if fut == nil {
		return nil, ErrNilFuture
	}
	return fut, nil
}
