// Package dispatch turns transition actions into outbound commands.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/core/domain/model/outbox"
	"beerorder/internal/core/ports"
	"beerorder/internal/pkg/metrics"
)

// ErrDispatchFailure is wrapped by every DispatchFailureError.
var ErrDispatchFailure = errors.New("dispatch failure")

// DispatchFailureError reports a command that could not be handed to the
// command channel. The order transition that produced it stays committed.
type DispatchFailureError struct {
	MessageID   kernel.UUID
	OrderID     kernel.UUID
	CommandType string
	Cause       error
}

func (e *DispatchFailureError) Error() string {
	return fmt.Sprintf("%s: %s for order %s: %v", ErrDispatchFailure, e.CommandType, e.OrderID, e.Cause)
}

func (e *DispatchFailureError) Unwrap() []error {
	return []error{ErrDispatchFailure, e.Cause}
}

// Topics names the destination of each outbound command.
type Topics struct {
	ValidateOrder     string
	AllocateOrder     string
	AllocationFailure string
	DeallocateOrder   string
}

func DefaultTopics() Topics {
	return Topics{
		ValidateOrder:     "validate-order",
		AllocateOrder:     "allocate-order",
		AllocationFailure: "allocation-failure",
		DeallocateOrder:   "deallocate-order",
	}
}

// ActionDispatcher maps each action to exactly one outbound command. Prepare
// runs inside the transition's transaction and captures the order snapshot;
// Dispatch sends the prepared message once that transaction has committed.
type ActionDispatcher struct {
	publisher ports.CommandPublisher
	topics    Topics
	now       func() time.Time
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

func NewActionDispatcher(
	publisher ports.CommandPublisher,
	topics Topics,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) *ActionDispatcher {
	return &ActionDispatcher{
		publisher: publisher,
		topics:    topics,
		now:       time.Now,
		metrics:   recorder,
		logger:    logger.With("component", "action_dispatcher"),
	}
}

// Prepare builds the outbound message for action. It returns nil when the
// action sends nothing: ActionNone, and the log-only compensating action for
// a failed validation.
func (d *ActionDispatcher) Prepare(ctx context.Context, action order.Action, o *order.Order) (*outbox.Message, error) {
	var (
		commandType string
		topic       string
		body        any
	)

	orderID := o.ID().String()
	switch action {
	case order.ActionNone:
		return nil, nil
	case order.ActionValidationFailure:
		d.logger.ErrorContext(ctx, "Order failed validation, compensation recorded",
			"order_id", orderID,
			"customer_ref", o.CustomerRef(),
		)
		return nil, nil
	case order.ActionValidateOrder:
		commandType, topic = ValidateOrderCommandType, d.topics.ValidateOrder
		body = ValidateOrderCommand{OrderID: orderID, Order: NewOrderDto(o)}
	case order.ActionAllocateOrder:
		commandType, topic = AllocateOrderCommandType, d.topics.AllocateOrder
		body = AllocateOrderCommand{OrderID: orderID, Order: NewOrderDto(o)}
	case order.ActionAllocationFailure:
		commandType, topic = AllocationFailureNoticeType, d.topics.AllocationFailure
		body = AllocationFailureNotice{OrderID: orderID}
	case order.ActionDeallocateOrder:
		commandType, topic = DeallocateOrderCommandType, d.topics.DeallocateOrder
		body = DeallocateOrderCommand{OrderID: orderID, Order: NewOrderDto(o)}
	default:
		return nil, fmt.Errorf("no command is mapped to action %s", action)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", commandType, err)
	}

	return outbox.NewMessage(kernel.NewUUID(), o.ID(), commandType, topic, payload, d.now())
}

// Dispatch publishes message and marks it dispatched in memory. A send failure
// is recorded on the message and returned as *DispatchFailureError.
func (d *ActionDispatcher) Dispatch(ctx context.Context, message *outbox.Message) error {
	if err := d.publisher.Publish(ctx, message); err != nil {
		message.RecordFailure(err)
		d.metrics.DispatchFailed(message.CommandType())
		return &DispatchFailureError{
			MessageID:   message.ID(),
			OrderID:     message.OrderID(),
			CommandType: message.CommandType(),
			Cause:       err,
		}
	}

	message.MarkDispatched(d.now())
	d.metrics.CommandDispatched(message.CommandType())
	d.logger.DebugContext(ctx, "Command dispatched",
		"order_id", message.OrderID().String(),
		"command", message.CommandType(),
		"destination", message.Destination(),
	)
	return nil
}
