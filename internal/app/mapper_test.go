package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapConcurrentPreservesOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	for _, concurrency := range []int{1, 4, 100} {
		results := MapConcurrent(context.Background(), items, concurrency, func(ctx context.Context, n int) int {
			return n * 2
		})

		assert.Len(t, results, len(items))
		for i, r := range results {
			assert.Equal(t, i*2, r)
		}
	}
}

func TestMapConcurrentEmptyInput(t *testing.T) {
	results := MapConcurrent(context.Background(), nil, 4, func(ctx context.Context, n int) int {
		return n
	})
	assert.Nil(t, results)
}

func TestMapConcurrentBoundsParallelism(t *testing.T) {
	var active, peak atomic.Int64

	items := make([]int, 32)
	MapConcurrent(context.Background(), items, 4, func(ctx context.Context, n int) int {
		current := active.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return n
	})

	assert.LessOrEqual(t, peak.Load(), int64(4))
}

func TestMapConcurrentEachItemOnce(t *testing.T) {
	var calls atomic.Int64

	items := make([]int, 50)
	MapConcurrent(context.Background(), items, 8, func(ctx context.Context, n int) int {
		calls.Add(1)
		return n
	})

	assert.Equal(t, int64(50), calls.Load())
}

func TestMapConcurrentCanceledContextStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	results := MapConcurrent(ctx, make([]int, 100), 4, func(ctx context.Context, n int) int {
		calls.Add(1)
		return 1
	})

	assert.Len(t, results, 100)
	assert.Zero(t, calls.Load())
}
