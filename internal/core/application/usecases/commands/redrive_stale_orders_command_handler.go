package commands

import (
	"context"
	"log/slog"
	"time"

	"beerorder/internal/core/application/usecases/queries"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/metrics"
)

type (
	StaleOrderFinder interface {
		Handle(ctx context.Context, query queries.GetStaleOrdersQuery) ([]queries.StaleOrderResponse, error)
	}

	OrderRedriver interface {
		RedriveOrder(ctx context.Context, orderID kernel.UUID) (*order.Order, error)
	}
)

type RedriveStaleOrdersCommandHandler struct {
	finder   StaleOrderFinder
	redriver OrderRedriver
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

func NewRedriveStaleOrdersCommandHandler(
	finder StaleOrderFinder,
	redriver OrderRedriver,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) RedriveStaleOrdersCommandHandler {
	return RedriveStaleOrdersCommandHandler{
		finder:   finder,
		redriver: redriver,
		metrics:  recorder,
		logger:   logger.With("component", "stale_order_sweep"),
	}
}

// Handle returns how many orders were redriven. One failing order does not
// stop the sweep.
func (h RedriveStaleOrdersCommandHandler) Handle(ctx context.Context, cmd RedriveStaleOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	stuck, err := h.find(ctx, cmd.redriveBefore, cmd.batchSize, order.New, order.Validated)
	if err != nil {
		return 0, err
	}

	redriven := 0
	for _, o := range stuck {
		h.metrics.StaleOrder(o.Status.String())
		if _, err = h.redriver.RedriveOrder(ctx, o.ID); err != nil {
			h.logger.ErrorContext(ctx, "Redrive failed",
				"order_id", o.ID.String(),
				"state", o.Status.String(),
				"error", err,
			)
			continue
		}
		redriven++
	}

	waiting, err := h.find(ctx, cmd.pendingBefore, cmd.batchSize,
		order.ValidationPending, order.AllocationPending, order.PendingInventory)
	if err != nil {
		return redriven, err
	}
	for _, o := range waiting {
		h.metrics.StaleOrder(o.Status.String())
		h.logger.WarnContext(ctx, "Order waiting on downstream reply",
			"order_id", o.ID.String(),
			"state", o.Status.String(),
			"since", o.UpdatedAt,
		)
	}

	return redriven, nil
}

func (h RedriveStaleOrdersCommandHandler) find(
	ctx context.Context,
	before time.Time,
	limit int,
	statuses ...order.Status,
) ([]queries.StaleOrderResponse, error) {
	query, err := queries.NewGetStaleOrdersQuery(before, limit, statuses...)
	if err != nil {
		return nil, err
	}
	return h.finder.Handle(ctx, query)
}
