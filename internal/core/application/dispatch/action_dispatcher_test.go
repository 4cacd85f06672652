package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"beerorder/internal/core/application/dispatch"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/core/domain/model/outbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommandPublisher struct{ mock.Mock }

func (m *MockCommandPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func newDispatcher(publisher *MockCommandPublisher) *dispatch.ActionDispatcher {
	return dispatch.NewActionDispatcher(
		publisher,
		dispatch.DefaultTopics(),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func newOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	line, err := order.NewLine(kernel.NewUUID(), "0631234200036", 3)
	require.NoError(t, err)
	o, err := order.RestoreOrder(kernel.NewUUID(), kernel.NewUUID(), "web", status, []*order.Line{line})
	require.NoError(t, err)
	return o
}

func TestActionDispatcher_Prepare(t *testing.T) {
	cases := []struct {
		action      order.Action
		commandType string
		topic       string
		withOrder   bool
	}{
		{order.ActionValidateOrder, dispatch.ValidateOrderCommandType, "validate-order", true},
		{order.ActionAllocateOrder, dispatch.AllocateOrderCommandType, "allocate-order", true},
		{order.ActionAllocationFailure, dispatch.AllocationFailureNoticeType, "allocation-failure", false},
		{order.ActionDeallocateOrder, dispatch.DeallocateOrderCommandType, "deallocate-order", true},
	}

	for _, tc := range cases {
		t.Run("should build "+tc.commandType, func(t *testing.T) {
			o := newOrder(t, order.AllocationPending)

			msg, err := newDispatcher(new(MockCommandPublisher)).Prepare(t.Context(), tc.action, o)

			require.NoError(t, err)
			require.NotNil(t, msg)
			assert.Equal(t, tc.commandType, msg.CommandType())
			assert.Equal(t, tc.topic, msg.Destination())
			assert.True(t, msg.OrderID().IsEqual(o.ID()))
			assert.Equal(t, outbox.Pending, msg.Status())

			var body struct {
				OrderID string             `json:"orderId"`
				Order   *dispatch.OrderDto `json:"beerOrder"`
			}
			require.NoError(t, json.Unmarshal(msg.Payload(), &body))
			assert.Equal(t, o.ID().String(), body.OrderID)
			if tc.withOrder {
				require.NotNil(t, body.Order)
				assert.Equal(t, "ALLOCATION_PENDING", body.Order.Status)
				require.Len(t, body.Order.Lines, 1)
				assert.Equal(t, 3, body.Order.Lines[0].OrderQuantity)
			} else {
				assert.Nil(t, body.Order)
			}
		})
	}

	t.Run("should send nothing for transitions without action", func(t *testing.T) {
		msg, err := newDispatcher(new(MockCommandPublisher)).Prepare(t.Context(), order.ActionNone, newOrder(t, order.Validated))

		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	t.Run("should only log the validation failure compensation", func(t *testing.T) {
		msg, err := newDispatcher(new(MockCommandPublisher)).
			Prepare(t.Context(), order.ActionValidationFailure, newOrder(t, order.ValidationException))

		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	t.Run("should reject unmapped actions", func(t *testing.T) {
		_, err := newDispatcher(new(MockCommandPublisher)).Prepare(t.Context(), order.Action(99), newOrder(t, order.New))
		require.Error(t, err)
	})
}

func TestActionDispatcher_Dispatch(t *testing.T) {
	t.Run("should publish and mark the message dispatched", func(t *testing.T) {
		ctx := t.Context()
		publisher := new(MockCommandPublisher)
		d := newDispatcher(publisher)
		msg, err := d.Prepare(ctx, order.ActionAllocateOrder, newOrder(t, order.AllocationPending))
		require.NoError(t, err)
		publisher.On("Publish", ctx, msg).Return(nil).Once()

		require.NoError(t, d.Dispatch(ctx, msg))

		assert.True(t, msg.IsDispatched())
		publisher.AssertExpectations(t)
	})

	t.Run("should report a dispatch failure and keep the message pending", func(t *testing.T) {
		ctx := t.Context()
		publisher := new(MockCommandPublisher)
		d := newDispatcher(publisher)
		msg, err := d.Prepare(ctx, order.ActionAllocationFailure, newOrder(t, order.AllocationException))
		require.NoError(t, err)
		cause := errors.New("broker unavailable")
		publisher.On("Publish", ctx, msg).Return(cause).Once()

		err = d.Dispatch(ctx, msg)

		var failure *dispatch.DispatchFailureError
		require.ErrorAs(t, err, &failure)
		require.ErrorIs(t, err, dispatch.ErrDispatchFailure)
		require.ErrorIs(t, err, cause)
		assert.Equal(t, dispatch.AllocationFailureNoticeType, failure.CommandType)
		assert.False(t, msg.IsDispatched())
		assert.Equal(t, 1, msg.Attempts())
		assert.Equal(t, "broker unavailable", msg.LastError())
	})
}
