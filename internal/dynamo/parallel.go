package dynamo

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor runs fn for every index in [0, n) using up to workers
// goroutines. workers <= 0 selects GOMAXPROCS; workers == 1 runs inline.
// The context is checked before each index and the first error stops the
// remaining work.
func ParallelFor(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	if workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return Canceled(err)
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		idx := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return Canceled(err)
			}
			return fn(gctx, idx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return Canceled(err)
	}
	return nil
}

// Canceled wraps a context error so it matches ErrContextCanceled.
func Canceled(err error) error {
	return fmt.Errorf("%w: %w", ErrContextCanceled, err)
}
