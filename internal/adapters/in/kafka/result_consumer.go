// Package kafka consumes the replies of the validation and allocation
// services and feeds them to the order saga.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"
	"beerorder/internal/pkg/kafkaheader"

	"github.com/avast/retry-go/v4"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	fetchBackoff    = time.Second
	handleAttempts  = 3
	handleRetryWait = 200 * time.Millisecond
)

// ResultProcessor is the part of the saga that accepts downstream replies.
type ResultProcessor interface {
	ProcessValidationResult(ctx context.Context, cmd commands.ValidationResultCommand) (*order.Order, error)
	ProcessAllocationResult(ctx context.Context, cmd commands.AllocationResultCommand) (*order.Order, error)
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers               []string
	GroupID               string
	ValidationResultTopic string
	AllocationResultTopic string
	// Concurrency is the number of readers per topic. All readers share the
	// consumer group, so each partition is still read in order.
	Concurrency int
}

type Option func(*ResultConsumer)

// WithReaderFactory replaces the kafka reader constructor.
func WithReaderFactory(factory func(topic string) MessageReader) Option {
	return func(c *ResultConsumer) {
		c.newReader = factory
	}
}

type ResultConsumer struct {
	cfg       Config
	processor ResultProcessor
	newReader func(topic string) MessageReader
	logger    *slog.Logger
}

func NewResultConsumer(cfg Config, processor ResultProcessor, logger *slog.Logger, opts ...Option) *ResultConsumer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	c := &ResultConsumer{
		cfg:       cfg,
		processor: processor,
		logger:    logger.With("component", "result_consumer"),
	}
	c.newReader = func(topic string) MessageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.GroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run reads both result topics until ctx is done.
func (c *ResultConsumer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, topic := range []string{c.cfg.ValidationResultTopic, c.cfg.AllocationResultTopic} {
		for worker := range c.cfg.Concurrency {
			reader := c.newReader(topic)
			g.Go(func() error {
				return c.consume(ctx, reader, topic, worker)
			})
		}
	}

	return g.Wait()
}

func (c *ResultConsumer) consume(ctx context.Context, reader MessageReader, topic string, worker int) error {
	logger := c.logger.With("topic", topic, "worker", worker)
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn("Reader close failed", "error", err)
		}
	}()
	logger.Info("Consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Consumer stopped")
				return nil
			}
			logger.Error("Fetch failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchBackoff):
			}
			continue
		}

		if err = c.Handle(ctx, msg); err != nil {
			logger.Error("Result dropped",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}

		if err = reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Error("Offset commit failed", "offset", msg.Offset, "error", err)
		}
	}
}

// Handle applies one record. Malformed records and unknown orders are not
// retried; other failures are retried a few times before giving up.
func (c *ResultConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	carrier := kafkaheader.Carrier(msg.Headers)
	ctx = otel.GetTextMapPropagator().Extract(ctx, &carrier)

	var apply func() error
	switch msg.Topic {
	case c.cfg.ValidationResultTopic:
		cmd, err := decodeValidationResult(msg.Value)
		if err != nil {
			return err
		}
		apply = func() error {
			_, err := c.processor.ProcessValidationResult(ctx, cmd)
			return err
		}
	case c.cfg.AllocationResultTopic:
		cmd, err := decodeAllocationResult(msg.Value)
		if err != nil {
			return err
		}
		apply = func() error {
			_, err := c.processor.ProcessAllocationResult(ctx, cmd)
			return err
		}
	default:
		return fmt.Errorf("no handler for topic %q", msg.Topic)
	}

	return retry.Do(apply,
		retry.Context(ctx),
		retry.Attempts(handleAttempts),
		retry.Delay(handleRetryWait),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

func isTransient(err error) bool {
	return !errors.Is(err, commands.ErrOrderNotFound) &&
		!errors.Is(err, errs.ErrValueIsInvalid) &&
		!errors.Is(err, errs.ErrValueIsOutOfRange) &&
		!errors.Is(err, errs.ErrValueIsRequired)
}
