package app

import (
	"context"
	"sync"
	"sync/atomic"
)

// MapConcurrent applies worker to every item using a bounded pool, preserving
// input order in the result slice. Workers pull the next index from a shared
// cursor, so uneven item costs do not idle the pool. A canceled context stops
// the pool early; unprocessed slots keep their zero value.
func MapConcurrent[T, R any](ctx context.Context, items []T, concurrency int, worker func(context.Context, T) R) []R {
	if len(items) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	results := make([]R, len(items))
	var cursor atomic.Int64

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				idx := int(cursor.Add(1)) - 1
				if idx >= len(items) {
					return
				}
				results[idx] = worker(ctx, items[idx])
			}
		}()
	}
	wg.Wait()

	return results
}
