package offload

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// indexed carries an input's position through the pool so Collect can
// reassemble results in input order despite cross-worker interleaving.
type indexed[T any] struct {
	idx int
	val T
}

// Collect offloads a whole slice through a temporary pool and returns the
// results in input order. It builds the pool, feeds every input, performs a
// graceful shutdown, and drains the merged stream.
//
// If any invocation fails (a recovered panic), the first error is returned
// along with the partial results; slots whose invocation failed hold the
// zero value of O.
//
// Parameters:
//   - ctx: Bounds startup and feeding; cancelling it force-shuts the pool
//   - fn: The computation applied to each input
//   - inputs: The inputs, fed in strict round-robin order
//   - opts: Pool options such as WithWorkerCount
func Collect[I any, O any](ctx context.Context, fn Func[I, O], inputs []I, opts ...Option) ([]O, error) {
	if len(inputs) == 0 {
		return []O{}, nil
	}

	wrapped := func(in indexed[I]) indexed[O] {
		return indexed[O]{idx: in.idx, val: fn(in.val)}
	}

	p := NewPool[indexed[I], indexed[O]](wrapped, opts...)
	if err := p.Start(ctx); err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for i, in := range inputs {
			select {
			case <-ctx.Done():
				// Unblock the collector: force-shut so the merged
				// stream closes without a drain.
				p.ForceShutdown()
				return ctx.Err()
			default:
			}
			p.Send(indexed[I]{idx: i, val: in})
		}
		p.Shutdown()
		return nil
	})

	results := make([]O, len(inputs))
	g.Go(func() error {
		var firstErr error
		for r := range p.Out() {
			if r.Err != nil {
				if firstErr == nil {
					firstErr = r.Err
				}
				continue
			}
			results[r.Value.idx] = r.Value.val
		}
		return firstErr
	})

	if err := g.Wait(); err != nil {
		p.ForceShutdown()
		return results, err
	}
	return results, nil
}
