// Package fanout runs a function over a slice with bounded concurrency while
// keeping results in input order.
package fanout

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every item using at most limit concurrent calls and
// returns the results indexed like items, whatever order the calls finish in.
//
// Workers claim the next unclaimed index from a shared atomic counter until
// the input is exhausted. A limit below 1 is treated as 1, and a limit above
// len(items) spawns only len(items) workers. If any call returns an error the
// context passed to the others is cancelled, no new items are claimed, and
// the first error is returned.
func Map[In, Out any](ctx context.Context, items []In, limit int, fn func(ctx context.Context, i int, item In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(items))
	if len(items) == 0 {
		return out, nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	g, gctx := errgroup.WithContext(ctx)
	var next atomic.Int64
	for range limit {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				i := int(next.Add(1) - 1)
				if i >= len(items) {
					return nil
				}
				v, err := fn(gctx, i, items[i])
				if err != nil {
					return err
				}
				out[i] = v
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
