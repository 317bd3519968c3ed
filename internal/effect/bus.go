package effect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

const defaultBusWorkers = 4

// BusConfig configures a Bus.
type BusConfig struct {
	// Workers bounds how many targets are processed in parallel during Flush.
	Workers int
	// DeferRetry delivers the effect of a reinitialized attribute in the next
	// Flush instead of the current one.
	DeferRetry bool
}

// Bus queues posted effects and delivers them once per tick.
//
// Ordering:
//   - effects for one target are applied in posting order, one at a time
//   - different targets are processed in parallel, with no ordering between them
//   - effects posted during a Flush are delivered by the next Flush
//
// With DeferRetry, a reinitialized effect and every later effect for the same
// target move to the front of the next Flush, keeping per-target order.
type Bus struct {
	cfg BusConfig

	mu      sync.Mutex
	pending []queued

	flushMu sync.Mutex
}

type queued struct {
	target  uint32
	binding string
	retry   bool
	run     func(retry, deferRetry bool) (Outcome, error)
}

// FlushResult summarizes one Flush.
type FlushResult struct {
	Delivered   int
	Applied     int
	Reapplied   int
	Discarded   int
	Resubmitted int
}

// NewBus creates an empty Bus.
func NewBus(cfg BusConfig) *Bus {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultBusWorkers
	}
	return &Bus{cfg: cfg}
}

// Pending returns the number of queued effects.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Bus) post(target uint32, binding string, run func(retry, deferRetry bool) (Outcome, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, queued{target: target, binding: binding, run: run})
}

// Flush delivers every effect queued before the call.
// Returns the first ErrInvariantViolation encountered. The failing effect is
// dropped, the effects after it stay queued, and other targets stop at their
// next effect and keep the rest queued as well.
// Context cancellation behaves the same way without an error.
func (b *Bus) Flush(ctx context.Context) (FlushResult, error) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return FlushResult{}, nil
	}

	// Group by target, keeping first-appearance order for deterministic carry-over.
	order := make([]uint32, 0, len(batch))
	groups := make(map[uint32][]queued, len(batch))
	for _, q := range batch {
		if _, ok := groups[q.target]; !ok {
			order = append(order, q.target)
		}
		groups[q.target] = append(groups[q.target], q)
	}

	results := make([]FlushResult, len(order))
	carries := make([][]queued, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	for i, target := range order {
		g.Go(func() error {
			res, carry, err := b.deliver(gctx, groups[target])
			results[i] = res
			carries[i] = carry
			return err
		})
	}
	err := g.Wait()

	var total FlushResult
	var carried []queued
	for i := range order {
		r := results[i]
		total.Delivered += r.Delivered
		total.Applied += r.Applied
		total.Reapplied += r.Reapplied
		total.Discarded += r.Discarded
		total.Resubmitted += r.Resubmitted
		carried = append(carried, carries[i]...)
	}

	if len(carried) > 0 {
		b.mu.Lock()
		b.pending = append(carried, b.pending...)
		b.mu.Unlock()
	}

	if total.Delivered > 0 {
		slog.Debug("effect bus flushed",
			"delivered", total.Delivered,
			"applied", total.Applied,
			"reapplied", total.Reapplied,
			"discarded", total.Discarded,
			"resubmitted", total.Resubmitted,
			"carried", len(carried))
	}

	return total, err
}

// deliver applies the effects of one target in order.
func (b *Bus) deliver(ctx context.Context, queue []queued) (FlushResult, []queued, error) {
	var res FlushResult
	for i, q := range queue {
		if err := ctx.Err(); err != nil {
			// Undelivered effects keep their place for the next flush.
			return res, queue[i:], nil
		}

		outcome, err := q.run(q.retry, b.cfg.DeferRetry)
		if err != nil {
			return res, queue[i+1:], fmt.Errorf("delivering %s to %d: %w", q.binding, q.target, err)
		}

		res.Delivered++
		switch outcome {
		case OutcomeApplied:
			res.Applied++
		case OutcomeReapplied:
			res.Reapplied++
		case OutcomeDiscarded:
			res.Discarded++
		case OutcomeResubmitted:
			res.Resubmitted++
			retried := q
			retried.retry = true
			carry := make([]queued, 0, len(queue)-i)
			carry = append(carry, retried)
			carry = append(carry, queue[i+1:]...)
			return res, carry, nil
		}
	}
	return res, nil, nil
}
