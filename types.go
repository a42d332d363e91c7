package offload

// Func is a synchronous computation offloaded to a worker. It receives one
// input and produces one result. It must not share mutable state with the
// caller; all it sees of the outside world is the input value it is handed.
//
// Type parameters:
//   - I: The type of input delivered through Send
//   - O: The type of result emitted on the output stream
type Func[I any, O any] func(in I) O

// AsyncFunc is a computation whose result resolves later. The dispatch loop
// does not wait for the returned Future before picking up the next input, so
// results of overlapping invocations may arrive on the output stream out of
// dispatch order. That is a documented property of deferred completion, not
// a defect.
type AsyncFunc[I any, O any] func(in I) *Future[O]

// Result is one element of a worker's output stream.
//
// Fields:
//   - Value: The value produced by the function (only valid if Err is nil)
//   - Err: Non-nil when the function panicked or its Future failed; the
//     worker survives and keeps processing, so consumers counting results
//     still see exactly one Result per input
type Result[O any] struct {
	Value O
	Err   error
}

// message is the envelope type carried on a worker's mailbox. The stop
// variant is the termination sentinel: a distinct tag rather than a magic
// input value, so no caller-supplied input can ever be mistaken for it.
type message[I any] struct {
	input I
	stop  bool
}

// LifecycleState tracks a worker's position in its one-way lifecycle.
// Transitions are monotonic; a terminated worker is never restarted.
type LifecycleState int32

const (
	StateCreated LifecycleState = iota
	StateStarted
	StateRunning
	StateShuttingDown
	StateTerminated
)

// String returns a human-readable name for the state.
func (s LifecycleState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
