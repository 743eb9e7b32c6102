// Package dispatch fans a recipient list out to a per-recipient send
// function in fixed-size concurrent batches, pausing between batches to
// stay inside the email provider's throughput limit.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/storemailer/internal/pkg/logger"
)

// Result aggregates one dispatch run. It is ephemeral: callers fold it into
// an activity entry and drop it.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Options tunes a dispatch run. Zero values fall back to the defaults the
// provider contract was sized for: 100 recipients per batch, 1s between
// batches, 30s per send.
type Options struct {
	BatchSize       int
	InterBatchDelay time.Duration
	PerItemTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.InterBatchDelay <= 0 {
		o.InterBatchDelay = time.Second
	}
	if o.PerItemTimeout <= 0 {
		o.PerItemTimeout = 30 * time.Second
	}
	return o
}

// SendInBatches partitions items into contiguous batches of at most
// BatchSize, preserving input order, and invokes sendOne for every item of
// a batch concurrently. It waits for the whole batch to settle before
// pausing InterBatchDelay and starting the next one; no delay follows the
// last batch.
//
// A failing or timed-out send is counted and logged but never cancels or
// blocks its siblings. The function always returns with
// Sent+Failed == len(items); if ctx is cancelled between batches, the items
// never attempted are counted as failed so the invariant holds.
func SendInBatches[T any](ctx context.Context, items []T, opts Options, sendOne func(context.Context, T) error) Result {
	if len(items) == 0 {
		return Result{}
	}
	opts = opts.withDefaults()

	var sent, failed int64

	for start := 0; start < len(items); start += opts.BatchSize {
		if ctx.Err() != nil {
			failed += int64(len(items) - start)
			logger.Warn("dispatch cancelled before completion",
				"remaining", len(items)-start, "error", ctx.Err())
			break
		}

		end := start + opts.BatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		var wg sync.WaitGroup
		for _, item := range batch {
			wg.Add(1)
			go func(item T) {
				defer wg.Done()
				itemCtx, cancel := context.WithTimeout(ctx, opts.PerItemTimeout)
				defer cancel()
				if err := sendOne(itemCtx, item); err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Warn("send failed", "error", err)
					return
				}
				atomic.AddInt64(&sent, 1)
			}(item)
		}
		wg.Wait()

		if end < len(items) {
			select {
			case <-time.After(opts.InterBatchDelay):
			case <-ctx.Done():
			}
		}
	}

	return Result{Sent: int(sent), Failed: int(failed)}
}
