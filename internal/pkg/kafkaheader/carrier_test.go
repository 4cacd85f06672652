package kafkaheader_test

import (
	"context"
	"testing"

	"beerorder/internal/pkg/kafkaheader"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestCarrier(t *testing.T) {
	t.Run("should set, replace and read headers", func(t *testing.T) {
		c := kafkaheader.Carrier{{Key: kafkaheader.OrderID, Value: []byte("a")}}

		c.Set(kafkaheader.CommandType, "ValidateOrderCommand")
		c.Set(kafkaheader.OrderID, "b")

		assert.Equal(t, "b", c.Get(kafkaheader.OrderID))
		assert.Equal(t, "ValidateOrderCommand", c.Get(kafkaheader.CommandType))
		assert.Empty(t, c.Get("missing"))
		assert.ElementsMatch(t, []string{kafkaheader.OrderID, kafkaheader.CommandType}, c.Keys())
	})

	t.Run("should round trip trace context", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
			Remote:     true,
		})
		ctx := trace.ContextWithRemoteSpanContext(context.Background(), sc)

		var headers []kafka.Header
		out := kafkaheader.Carrier(headers)
		propagation.TraceContext{}.Inject(ctx, &out)

		in := kafkaheader.Carrier(out)
		extracted := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), &in))

		assert.Equal(t, traceID, extracted.TraceID())
		assert.Equal(t, spanID, extracted.SpanID())
	})
}
