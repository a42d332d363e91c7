// Package offload runs a single computation function on isolated workers,
// feeding them inputs through message channels and collecting results on an
// output stream, with an orderly drain-before-terminate shutdown.
//
// The primary types are Worker[I, O], a single execution unit with its own
// unbounded FIFO mailbox, and Pool[I, O], a fixed set of workers fed in
// strict round-robin order whose output streams are merged into one. Neither
// shares mutable state with its owner; all coordination is message passing.
//
// # Basic Usage
//
//	w := offload.NewWorker(func(n int) int { return n * n })
//	if err := w.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	w.SendAll([]int{1, 2, 3})
//	w.Shutdown()
//	for r := range w.Out() {
//	    fmt.Println(r.Value) // 1, 4, 9 in input order, since the function is synchronous
//	}
//
// # Pools
//
// A Pool routes input k to workers[k mod n] and merges every worker's
// stream. Cross-worker result order follows real-time completion, not send
// order; each worker's own sub-sequence stays FIFO:
//
//	p := offload.NewPool(hash, offload.WithWorkerCount(4))
//	_ = p.Start(ctx)
//	p.SendAll(blocks)
//	p.Shutdown()
//	for r := range p.Out() { ... } // stream closes once all workers drain
//
// # Shutdown Semantics
//
// Shutdown enqueues a termination sentinel on the same FIFO mailbox as the
// data, so everything sent before it is processed first; sends after it are
// ignored. ForceShutdown terminates immediately, dropping queued and
// in-flight work, and is safe at any lifecycle point, any number of times.
// Either way the output stream closes exactly once.
//
// # Deferred Results
//
// NewAsyncWorker and NewAsyncPool accept a function returning a Future. The
// dispatch loop moves on to the next input without waiting, so results of
// overlapping invocations arrive in completion order. A graceful shutdown
// still waits for every outstanding Future, preserving one result per input.
//
// # Batch Processing
//
// Collect wraps the whole cycle for slice-shaped work and restores input
// order:
//
//	sums, err := offload.Collect(ctx, checksum, files, offload.WithWorkerCount(4))
//
// # Faults
//
// A panic in the function is recovered and emitted as a Result with Err set;
// the worker keeps running. Send, Shutdown and ForceShutdown never report
// errors, and nothing in the package blocks a sender or imposes a timeout.
package offload
