package catalog

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Lister lists the catalog entries of one location.
type Lister interface {
	List(ctx context.Context, location string) ([]Entry, error)
}

// DefaultConcurrency is how many locations are scanned at once.
const DefaultConcurrency = 6

// NewLimiter returns the default limiter for catalog requests: ten per
// second, with bursts of ten.
//
// Azure Resource Manager throttles reads per subscription and principal,
// so a scan shares one limiter across all of its workers.
func NewLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(100*time.Millisecond), 10)
}

// ScanOptions configure [Scan].
type ScanOptions struct {
	// Concurrency bounds the locations scanned at once.
	// Zero means [DefaultConcurrency].
	Concurrency int

	// Limiter throttles requests. Nil means [NewLimiter].
	Limiter *rate.Limiter

	// Logger receives a debug record per location, and a warning for each
	// location that fails.
	Logger *zap.SugaredLogger

	// Progress, if set, is called after each location completes. It may
	// be called concurrently.
	Progress func(location string, entries int, err error)
}

// Scan lists every location and returns the combined entries, in the order
// of locations.
//
// A location that fails is skipped; some locations do not support the
// catalog API at all. Only cancellation of ctx fails the scan.
func Scan(ctx context.Context, l Lister, locations []string, opts ScanOptions) ([]Entry, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Limiter == nil {
		opts.Limiter = NewLimiter()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	results := make([][]Entry, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, location := range locations {
		g.Go(func() error {
			if err := opts.Limiter.Wait(gctx); err != nil {
				return err
			}

			entries, err := l.List(gctx, location)
			if opts.Progress != nil {
				opts.Progress(location, len(entries), err)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				opts.Logger.Warnw("skipping location", "location", location, "error", err)
				return nil
			}

			opts.Logger.Debugw("scanned location", "location", location, "entries", len(entries))
			results[i] = entries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.Concat(results...), nil
}
