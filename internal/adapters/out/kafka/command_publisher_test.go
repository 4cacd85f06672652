package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkaadapter "beerorder/internal/adapters/out/kafka"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/outbox"
	"beerorder/internal/pkg/kafkaheader"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct{ mock.Mock }

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func newMessage(t *testing.T) *outbox.Message {
	t.Helper()
	m, err := outbox.NewMessage(kernel.NewUUID(), kernel.NewUUID(), "AllocateOrderCommand", "allocate-order",
		[]byte(`{"orderId":"1"}`), time.Now())
	require.NoError(t, err)
	return m
}

func TestCommandPublisher_Publish(t *testing.T) {
	t.Run("should key by order id and set headers", func(t *testing.T) {
		message := newMessage(t)
		writer := new(MockWriter)
		writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			got := msgs[0]
			headers := kafkaheader.Carrier(got.Headers)
			return got.Topic == "allocate-order" &&
				string(got.Key) == message.OrderID().String() &&
				string(got.Value) == `{"orderId":"1"}` &&
				headers.Get(kafkaheader.CommandType) == "AllocateOrderCommand" &&
				headers.Get(kafkaheader.MessageID) == message.ID().String() &&
				headers.Get(kafkaheader.OrderID) == message.OrderID().String()
		})).Return(nil).Once()

		err := kafkaadapter.NewCommandPublisherWithWriter(writer).Publish(t.Context(), message)

		require.NoError(t, err)
		writer.AssertExpectations(t)
	})

	t.Run("should wrap write errors", func(t *testing.T) {
		writeErr := errors.New("leader not available")
		writer := new(MockWriter)
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(writeErr).Once()

		err := kafkaadapter.NewCommandPublisherWithWriter(writer).Publish(t.Context(), newMessage(t))

		require.ErrorIs(t, err, writeErr)
		assert.Contains(t, err.Error(), "allocate-order")
	})
}

func TestCommandPublisher_Close(t *testing.T) {
	writer := new(MockWriter)
	writer.On("Close").Return(nil).Once()

	require.NoError(t, kafkaadapter.NewCommandPublisherWithWriter(writer).Close())
	writer.AssertExpectations(t)
}
