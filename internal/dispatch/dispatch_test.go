package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intRange(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

// fast options so tests don't sit in inter-batch delays
func fastOpts(batchSize int) Options {
	return Options{BatchSize: batchSize, InterBatchDelay: time.Millisecond, PerItemTimeout: time.Second}
}

func TestConservation(t *testing.T) {
	var calls int64
	res := SendInBatches(context.Background(), intRange(250), fastOpts(100), func(_ context.Context, i int) error {
		atomic.AddInt64(&calls, 1)
		if i%3 == 0 {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, 250, res.Sent+res.Failed)
	assert.Equal(t, int64(250), calls)
	assert.Equal(t, 84, res.Failed) // 0,3,...,249
	assert.Equal(t, 166, res.Sent)
}

func TestAllFailuresStillResolves(t *testing.T) {
	res := SendInBatches(context.Background(), intRange(10), fastOpts(4), func(context.Context, int) error {
		return errors.New("provider down")
	})
	assert.Equal(t, Result{Sent: 0, Failed: 10}, res)
}

func TestEmptyInput(t *testing.T) {
	called := false
	res := SendInBatches(context.Background(), nil, Options{}, func(context.Context, int) error {
		called = true
		return nil
	})
	assert.Equal(t, Result{}, res)
	assert.False(t, called, "sendOne must not run for empty input")
}

func TestBatchConcurrencyBound(t *testing.T) {
	var active, maxActive int64
	res := SendInBatches(context.Background(), intRange(25), fastOpts(10), func(context.Context, int) error {
		cur := atomic.AddInt64(&active, 1)
		for {
			prev := atomic.LoadInt64(&maxActive)
			if cur <= prev || atomic.CompareAndSwapInt64(&maxActive, prev, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return nil
	})

	assert.Equal(t, 25, res.Sent)
	assert.LessOrEqual(t, atomic.LoadInt64(&maxActive), int64(10),
		"no more than one batch in flight at a time")
}

func TestInterBatchDelayCount(t *testing.T) {
	// 5 items, batch size 2 → 3 batches → 2 delays of 40ms.
	opts := Options{BatchSize: 2, InterBatchDelay: 40 * time.Millisecond, PerItemTimeout: time.Second}

	start := time.Now()
	SendInBatches(context.Background(), intRange(5), opts, func(context.Context, int) error { return nil })
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "expected ceil(5/2)-1 = 2 delays")

	// Single batch → no delay at all.
	start = time.Now()
	SendInBatches(context.Background(), intRange(2), opts, func(context.Context, int) error { return nil })
	assert.Less(t, time.Since(start), 40*time.Millisecond, "no delay after the last batch")
}

func TestOrderWithinAndAcrossBatches(t *testing.T) {
	var mu sync.Mutex
	var batches [][]int
	var current []int

	opts := Options{BatchSize: 3, InterBatchDelay: time.Millisecond, PerItemTimeout: time.Second}
	SendInBatches(context.Background(), intRange(7), opts, func(_ context.Context, i int) error {
		mu.Lock()
		current = append(current, i)
		if len(current) == 3 || i == 6 {
			batches = append(batches, current)
			current = nil
		}
		mu.Unlock()
		return nil
	})

	// Batches are contiguous slices of the input: {0,1,2},{3,4,5},{6} in some
	// intra-batch order.
	seen := map[int]int{}
	for bi, b := range batches {
		for _, v := range b {
			seen[v] = bi
		}
	}
	for i := 0; i < 7; i++ {
		assert.Equal(t, i/3, seen[i], "item %d dispatched in wrong batch", i)
	}
}

func TestHungSendBecomesFailure(t *testing.T) {
	opts := Options{BatchSize: 2, InterBatchDelay: time.Millisecond, PerItemTimeout: 20 * time.Millisecond}

	res := SendInBatches(context.Background(), intRange(2), opts, func(ctx context.Context, i int) error {
		if i == 0 {
			<-ctx.Done() // simulate a send that never resolves on its own
			return ctx.Err()
		}
		return nil
	})

	assert.Equal(t, Result{Sent: 1, Failed: 1}, res)
}

func TestCancelledContextCountsRemainderFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := Options{BatchSize: 2, InterBatchDelay: 5 * time.Millisecond, PerItemTimeout: time.Second}

	var calls int64
	res := SendInBatches(ctx, intRange(10), opts, func(_ context.Context, i int) error {
		if atomic.AddInt64(&calls, 1) == 2 {
			cancel()
		}
		return nil
	})

	assert.Equal(t, 10, res.Sent+res.Failed, "conservation holds under cancellation")
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 8, res.Failed)
}
