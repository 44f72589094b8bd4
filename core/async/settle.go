package async

import (
	"context"
	"fmt"
	"sync"
)

// Outcome is the per-item result of a settled batch: either a value or an
// error, never both.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Settle runs fn once per item concurrently and waits for every branch to
// finish. Results come back in input order; a failing branch is recorded in
// its Outcome and never short-circuits the batch. A panicking branch is
// converted into an error Outcome.
func Settle[I any, T any](ctx context.Context, items []I, fn func(ctx context.Context, item I) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i].Err = fmt.Errorf("settle: panic: %v", r)
				}
			}()
			outcomes[i].Value, outcomes[i].Err = fn(ctx, items[i])
		}(i)
	}
	wg.Wait()

	return outcomes
}

// Partition splits settled outcomes into values and error strings, keeping
// input order within each side.
func Partition[T any](outcomes []Outcome[T]) (values []T, errs []string) {
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err.Error())
			continue
		}
		values = append(values, o.Value)
	}
	return values, errs
}
