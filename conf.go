package offload

import (
	"golang.org/x/time/rate"
)

// DefaultWorkerCount is the pool size used when WithWorkerCount is not given.
const DefaultWorkerCount = 8

// Option is a functional option for configuring workers and pools.
type Option func(*config)

type config struct {
	workerCount int
	pinned      bool
	rateLimiter *rate.Limiter
}

// WithWorkerCount sets the number of workers in a pool. The count is fixed
// for the pool's lifetime. Values below one are ignored. Has no effect on a
// standalone Worker.
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithPinnedWorkers locks each worker goroutine to an OS thread and, where
// the platform supports it, pins that thread to a CPU core. This is the
// strongest isolation the runtime offers between workers and their owner.
func WithPinnedWorkers() Option {
	return func(cfg *config) {
		cfg.pinned = true
	}
}

// WithRateLimit throttles dispatch to at most invocationsPerSecond, with
// the given burst. All workers in a pool draw from one shared limiter, so
// the cap applies to the pool as a whole, not per worker. The mailbox stays
// unbounded and Send stays non-blocking; only the rate at which queued
// inputs reach the function is limited. If not specified, dispatch is
// unthrottled.
//
// Example:
//
//	WithRateLimit(10, 5) // at most 10 invocations/sec total, burst of 5
func WithRateLimit(invocationsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if invocationsPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(invocationsPerSecond), burst)
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		workerCount: DefaultWorkerCount,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
