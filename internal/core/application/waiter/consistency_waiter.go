// Package waiter bridges the gap between a committed write and the moment a
// causally dependent saga step can observe it.
package waiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/metrics"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultAttempts = 10
)

var errStatusNotReached = errors.New("status not reached")

// StatusReader reads the committed status of an order.
type StatusReader interface {
	GetStatus(ctx context.Context, id kernel.UUID) (order.Status, error)
}

// ConsistencyWaiter polls the persisted status of an order until it matches
// the expected one. When a StatusBroker is attached a matching notification
// ends the wait before the next poll.
type ConsistencyWaiter struct {
	reader   StatusReader
	broker   *StatusBroker
	interval time.Duration
	attempts uint
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

type Option func(*ConsistencyWaiter)

func WithInterval(interval time.Duration) Option {
	return func(w *ConsistencyWaiter) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithAttempts(attempts uint) Option {
	return func(w *ConsistencyWaiter) {
		if attempts > 0 {
			w.attempts = attempts
		}
	}
}

func WithBroker(broker *StatusBroker) Option {
	return func(w *ConsistencyWaiter) {
		w.broker = broker
	}
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(w *ConsistencyWaiter) {
		w.metrics = recorder
	}
}

func NewConsistencyWaiter(reader StatusReader, logger *slog.Logger, opts ...Option) *ConsistencyWaiter {
	w := &ConsistencyWaiter{
		reader:   reader,
		interval: DefaultInterval,
		attempts: DefaultAttempts,
		logger:   logger.With("component", "consistency_waiter"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AwaitStatus reports whether orderID was observed in want. Running out of
// attempts is not an error: it is logged and the caller proceeds, relying on
// the state machine to reject the follow-up step if it is still premature.
func (w *ConsistencyWaiter) AwaitStatus(ctx context.Context, orderID kernel.UUID, want order.Status) bool {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var notified atomic.Bool
	if w.broker != nil {
		updates, unsubscribe := w.broker.Subscribe(orderID)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case status, ok := <-updates:
					if !ok {
						return
					}
					if status == want {
						notified.Store(true)
						cancel()
						return
					}
				case <-waitCtx.Done():
					return
				}
			}
		}()
		defer func() {
			cancel()
			<-done
			unsubscribe()
		}()
	}

	var last order.Status
	err := retry.Do(
		func() error {
			status, err := w.reader.GetStatus(waitCtx, orderID)
			if err != nil {
				return err
			}
			last = status
			if status != want {
				return fmt.Errorf("%w: order is %s", errStatusNotReached, status)
			}
			return nil
		},
		retry.Context(waitCtx),
		retry.Attempts(w.attempts),
		retry.Delay(w.interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil || notified.Load() {
		return true
	}

	if ctx.Err() != nil {
		return false
	}

	w.metrics.ConsistencyWaitExhausted()
	w.logger.WarnContext(ctx, "Consistency wait exhausted, proceeding",
		"order_id", orderID.String(),
		"expected_status", want.String(),
		"last_status", last.String(),
		"attempts", w.attempts,
		"error", err,
	)
	return false
}
