package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/core/domain/model/outbox"
	"beerorder/internal/core/domain/services"
	"beerorder/internal/core/ports"
	"beerorder/internal/pkg/errs"
	"beerorder/internal/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrOrderNotFound is returned when a trigger names an order that does not exist.
	ErrOrderNotFound = errors.New("order not found")

	errNothingToRedrive = errors.New("order has no step to redrive")
)

// step decides which event to fire against a loaded order and, once the
// transition is accepted, applies any payload to it.
type step struct {
	event      func(aggregate *order.Order) (order.Event, error)
	afterApply func(aggregate *order.Order) error
}

func fixed(event order.Event) step {
	return step{event: func(*order.Order) (order.Event, error) { return event, nil }}
}

// OrderOrchestrator runs the beer order saga. Every trigger for an order goes
// through the same sequence under that order's delivery guard: load, fire the
// event against the transition table, persist the new state together with the
// outbound command in one transaction, commit, then send the command.
//
// Rejected events (no edge for the current state) are logged and swallowed,
// which makes redelivered and late results harmless. Send failures are logged
// and left in the outbox for the relay job; the committed state is kept.
type OrderOrchestrator struct {
	uowFactory OrderUoWFactory
	guard      ports.DeliveryGuard
	dispatcher ActionDispatcher
	waiter     ConsistencyWaiter
	resolver   services.AllocationResolver
	statuses   StatusPublisher
	metrics    *metrics.Recorder
	tracer     trace.Tracer
	logger     *slog.Logger
}

func NewOrderOrchestrator(
	uowFactory OrderUoWFactory,
	guard ports.DeliveryGuard,
	dispatcher ActionDispatcher,
	waiter ConsistencyWaiter,
	statuses StatusPublisher,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) *OrderOrchestrator {
	return &OrderOrchestrator{
		uowFactory: uowFactory,
		guard:      guard,
		dispatcher: dispatcher,
		waiter:     waiter,
		resolver:   services.NewAllocationResolver(),
		statuses:   statuses,
		metrics:    recorder,
		tracer:     otel.Tracer("beerorder/saga"),
		logger:     logger.With("component", "order_orchestrator"),
	}
}

// CreateOrder stores a new order at NEW and immediately fires VALIDATE_ORDER.
// Only a failure to store the order is returned. If the validation step fails
// afterwards the order stays at NEW and is picked up by the stale order sweep.
func (s *OrderOrchestrator) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	created, err := cmd.newOrder()
	if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "saga.create_order", created.ID())
	defer span.End()

	unlock, err := s.guard.Lock(ctx, created.ID().String())
	if err != nil {
		return nil, fmt.Errorf("acquire order guard: %w", err)
	}
	defer unlock()

	if err = s.insert(ctx, created); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, err
	}

	s.logger.InfoContext(ctx, "Order created",
		"order_id", created.ID().String(),
		"customer_id", created.CustomerID().String(),
		"lines", len(created.Lines()),
	)
	s.statuses.Publish(created.ID(), created.Status())

	pending, err := s.fireLocked(ctx, created.ID(), fixed(order.ValidateOrder))
	if err != nil {
		s.logger.ErrorContext(ctx, "Order left at NEW, validation request not recorded",
			"order_id", created.ID().String(),
			"error", err,
		)
		return created, nil
	}
	return pending, nil
}

// ApplyExternalResult fires one result event sent back by a downstream
// service. For ALLOCATION_SUCCESS and ALLOCATION_NO_INVENTORY the reported
// quantities are merged into the lines in the same transaction.
func (s *OrderOrchestrator) ApplyExternalResult(
	ctx context.Context,
	orderID kernel.UUID,
	event order.Event,
	allocations []order.LineAllocation,
) (*order.Order, error) {
	if !event.IsExternalResult() {
		return nil, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%s is not a result event", event))
	}

	st := fixed(event)
	if event == order.AllocationSuccess || event == order.AllocationNoInventory {
		st.afterApply = func(aggregate *order.Order) error {
			return aggregate.Allocate(allocations)
		}
	}

	return s.settle(s.fire(ctx, orderID, st))
}

// ProcessValidationResult applies the validation verdict. A passed order is
// sent on to allocation as soon as VALIDATED is visible; the wait happens with
// no guard held.
func (s *OrderOrchestrator) ProcessValidationResult(
	ctx context.Context,
	cmd ValidationResultCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.IsValid() {
		return s.ApplyExternalResult(ctx, cmd.OrderID(), order.ValidationFailed, nil)
	}

	// A redelivered verdict finds the order already VALIDATED when the
	// allocation step failed last time; it still has to send ALLOCATE_ORDER.
	validated, err := s.fire(ctx, cmd.OrderID(), fixed(order.ValidationSuccess))
	if err != nil && !(errors.Is(err, order.ErrInvalidTransition) && validated != nil && validated.Status() == order.Validated) {
		return s.settle(validated, err)
	}

	s.waiter.AwaitStatus(ctx, cmd.OrderID(), order.Validated)

	return s.settle(s.fire(ctx, cmd.OrderID(), fixed(order.AllocateOrder)))
}

// ProcessAllocationResult applies the allocation reply. The outcome is
// ALLOCATION_FAILED on an allocation error, ALLOCATION_NO_INVENTORY when the
// service reports pending inventory or any line would stay short, and
// ALLOCATION_SUCCESS otherwise.
func (s *OrderOrchestrator) ProcessAllocationResult(
	ctx context.Context,
	cmd AllocationResultCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	allocations := cmd.Allocations()
	var resolved order.Event
	st := step{
		event: func(aggregate *order.Order) (order.Event, error) {
			event, err := s.resolver.Resolve(aggregate, allocations, cmd.AllocationError(), cmd.PendingInventory())
			resolved = event
			return event, err
		},
		afterApply: func(aggregate *order.Order) error {
			if resolved == order.AllocationFailed {
				return nil
			}
			return aggregate.Allocate(allocations)
		},
	}

	return s.settle(s.fire(ctx, cmd.OrderID(), st))
}

// CancelOrder fires CANCEL_ORDER. Orders that are not cancel-eligible are
// returned unchanged.
func (s *OrderOrchestrator) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return s.settle(s.fire(ctx, cmd.OrderID(), fixed(order.CancelOrder)))
}

// MarkPickedUp fires BEER_ORDER_PICKED_UP, accepted only from ALLOCATED.
func (s *OrderOrchestrator) MarkPickedUp(ctx context.Context, cmd PickUpOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return s.settle(s.fire(ctx, cmd.OrderID(), fixed(order.BeerOrderPickedUp)))
}

// RedriveOrder repeats the lifecycle step an order may have missed after a
// crash: VALIDATE_ORDER for NEW and ALLOCATE_ORDER for VALIDATED. Orders in
// any other state are returned unchanged.
func (s *OrderOrchestrator) RedriveOrder(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	st := step{event: func(aggregate *order.Order) (order.Event, error) {
		switch aggregate.Status() { //nolint:exhaustive // only two states can be redriven
		case order.New:
			return order.ValidateOrder, nil
		case order.Validated:
			return order.AllocateOrder, nil
		default:
			return order.UnknownEvent, errNothingToRedrive
		}
	}}

	redriven, err := s.fire(ctx, orderID, st)
	if errors.Is(err, errNothingToRedrive) {
		return redriven, nil
	}
	return s.settle(redriven, err)
}

func (s *OrderOrchestrator) fire(ctx context.Context, orderID kernel.UUID, st step) (*order.Order, error) {
	ctx, span := s.startSpan(ctx, "saga.fire", orderID)
	defer span.End()

	unlock, err := s.guard.Lock(ctx, orderID.String())
	if err != nil {
		return nil, fmt.Errorf("acquire order guard: %w", err)
	}
	defer unlock()

	aggregate, err := s.fireLocked(ctx, orderID, st)
	if err != nil && !errors.Is(err, order.ErrInvalidTransition) && !errors.Is(err, errNothingToRedrive) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
	}
	return aggregate, err
}

// fireLocked must be called with the order's guard held. On a rejected event
// it returns the unchanged order together with the *order.InvalidTransitionError.
func (s *OrderOrchestrator) fireLocked(ctx context.Context, orderID kernel.UUID, st step) (*order.Order, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrOrderNotFound, err)
		}
		return nil, err
	}

	from := aggregate.Status()
	event, err := st.event(aggregate)
	if err != nil {
		return aggregate, err
	}

	transition, err := aggregate.Apply(event)
	if err != nil {
		if errors.Is(err, order.ErrInvalidTransition) {
			s.metrics.RejectedEvent(from.String(), event.String())
			s.logger.WarnContext(ctx, "Event rejected by order state",
				"order_id", orderID.String(),
				"state", from.String(),
				"event", event.String(),
			)
		}
		return aggregate, err
	}

	if st.afterApply != nil {
		if err = st.afterApply(aggregate); err != nil {
			return nil, err
		}
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	message, err := s.dispatcher.Prepare(ctx, transition.Action, aggregate)
	if err != nil {
		return nil, err
	}
	if message != nil {
		if err = uow.OutboxRepository().Add(ctx, message); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.metrics.Transition(transition.From.String(), transition.To.String(), event.String())
	s.logger.InfoContext(ctx, "Order state changed",
		"order_id", orderID.String(),
		"from", transition.From.String(),
		"to", transition.To.String(),
		"event", event.String(),
		"action", transition.Action.String(),
	)
	s.statuses.Publish(orderID, aggregate.Status())

	if message != nil {
		s.deliver(ctx, message)
	}

	return aggregate, nil
}

func (s *OrderOrchestrator) insert(ctx context.Context, aggregate *order.Order) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// deliver sends a committed message and records the outcome. Failures leave
// the message pending for the outbox relay.
func (s *OrderOrchestrator) deliver(ctx context.Context, message *outbox.Message) {
	if err := s.dispatcher.Dispatch(ctx, message); err != nil {
		s.logger.ErrorContext(ctx, "Command dispatch failed, left for outbox relay",
			"order_id", message.OrderID().String(),
			"command", message.CommandType(),
			"error", err,
		)
	}

	if err := s.uowFactory.Create().OutboxRepository().Update(ctx, message); err != nil {
		s.logger.WarnContext(ctx, "Outbox message state not saved",
			"message_id", message.ID().String(),
			"error", err,
		)
	}
}

// settle swallows rejected events; the caller gets the order as it is.
func (s *OrderOrchestrator) settle(aggregate *order.Order, err error) (*order.Order, error) {
	if errors.Is(err, order.ErrInvalidTransition) {
		return aggregate, nil
	}
	return aggregate, err
}

func (s *OrderOrchestrator) startSpan(ctx context.Context, name string, orderID kernel.UUID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("order.id", orderID.String())))
}
