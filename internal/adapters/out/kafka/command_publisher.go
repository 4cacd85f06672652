// Package kafka sends saga commands to the downstream services.
package kafka

import (
	"context"
	"fmt"

	"beerorder/internal/core/domain/model/outbox"
	"beerorder/internal/pkg/kafkaheader"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CommandPublisher implements ports.CommandPublisher. Records are keyed by
// order id so every command of one order lands on the same partition.
type CommandPublisher struct {
	writer messageWriter
}

func NewCommandPublisher(brokers ...string) *CommandPublisher {
	return NewCommandPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

func NewCommandPublisherWithWriter(writer messageWriter) *CommandPublisher {
	return &CommandPublisher{writer: writer}
}

func (p *CommandPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	headers := kafkaheader.Carrier{
		{Key: kafkaheader.CommandType, Value: []byte(message.CommandType())},
		{Key: kafkaheader.MessageID, Value: []byte(message.ID().String())},
		{Key: kafkaheader.OrderID, Value: []byte(message.OrderID().String())},
	}
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   message.Destination(),
		Key:     []byte(message.OrderID().String()),
		Value:   message.Payload(),
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("write %s to %s: %w", message.CommandType(), message.Destination(), err)
	}
	return nil
}

func (p *CommandPublisher) Close() error {
	return p.writer.Close()
}
