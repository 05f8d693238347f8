// Package workpool fans independent units of work out over a bounded pool of
// goroutines and collects their results in input order.
//
// Units never share mutable state: each one returns a value that is stored at
// its own index, and callers fold the collected slice on a single goroutine.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options tunes a Map call.
type Options struct {
	// Limit caps concurrent units. Zero or negative means runtime.NumCPU().
	Limit int
	// OnDone runs after each unit finishes. It may be called concurrently.
	OnDone func()
}

// Results is the fan-in of a Map call. Done[i] is false for units that were
// never started because the context was cancelled first.
type Results[R any] struct {
	Values []R
	Done   []bool
}

// Pending returns how many units were never started.
func (r Results[R]) Pending() int {
	n := 0
	for _, done := range r.Done {
		if !done {
			n++
		}
	}
	return n
}

// Map runs fn over items. Units already running when ctx is cancelled run to
// completion; later units are not started and Map returns ctx.Err() along
// with everything collected so far. A cancellation that arrives after every
// unit finished is not an error.
func Map[T, R any](ctx context.Context, items []T, opts Options, fn func(T) R) (Results[R], error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := Results[R]{
		Values: make([]R, len(items)),
		Done:   make([]bool, len(items)),
	}

	var group errgroup.Group
	group.SetLimit(limit)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results.Values[i] = fn(item)
			results.Done[i] = true
			if opts.OnDone != nil {
				opts.OnDone()
			}
			return nil
		})
	}
	_ = group.Wait()

	if results.Pending() > 0 {
		return results, ctx.Err()
	}
	return results, nil
}
