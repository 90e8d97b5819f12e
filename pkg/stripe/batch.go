package stripe

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// BatchOptions configures ExecuteAll.
type BatchOptions struct {
	// Concurrency bounds in-flight calls. Defaults to constants.DefaultConcurrencyLimit.
	Concurrency int
	// FailFast cancels the remaining calls after the first failure.
	FailFast bool
	// Callback is invoked after each call completes, from the worker goroutine.
	Callback func(result *BatchResult[any])
}

// BatchResult is the outcome of one call of a batch.
type BatchResult[T any] struct {
	Index    int
	Value    T
	Error    error
	Duration time.Duration
}

// Success reports whether the call succeeded.
func (r *BatchResult[T]) Success() bool {
	return r.Error == nil
}

// ExecuteAll runs independent requests concurrently. Each call runs its own
// strategy with its own idempotency key; results are returned in input order.
// The returned error is the first failure when FailFast is set, and nil
// otherwise; per-call errors are always reported in the results.
func ExecuteAll[T any](ctx context.Context, backend Backend, requests []StripeRequest[T], opts BatchOptions) ([]BatchResult[T], error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	results := make([]BatchResult[T], len(requests))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for index, request := range requests {
		group.Go(func() error {
			result := &results[index]
			result.Index = index

			callCtx := ctx
			if opts.FailFast {
				callCtx = groupCtx
			}

			err := callCtx.Err()
			if err != nil {
				result.Error = NewTransportError(err)

				return nil
			}

			start := time.Now()
			result.Value, result.Error = Execute(callCtx, backend, request)
			result.Duration = time.Since(start)

			if opts.Callback != nil {
				opts.Callback(&BatchResult[any]{
					Index:    index,
					Value:    result.Value,
					Error:    result.Error,
					Duration: result.Duration,
				})
			}

			if opts.FailFast {
				return result.Error
			}

			return nil
		})
	}

	err := group.Wait()

	return results, err
}
