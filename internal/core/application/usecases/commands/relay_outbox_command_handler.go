package commands

import (
	"context"
	"log/slog"
)

// RelayOutboxCommandHandler resends commands whose first dispatch failed.
// The batch is claimed inside one transaction, so two instances never send
// the same message concurrently.
//
// The row locks are held until every message in the batch has been published,
// so a slow broker holds them for up to batch size times the publish timeout.
// Only messages older than the relay delay are claimed, while the orchestrator
// updates its own message right after the commit that created it; the two
// contend only when a first delivery outlives the delay. Keep JOB_BATCH_SIZE
// small relative to OUTBOX_RELAY_DELAY divided by the publish timeout.
type RelayOutboxCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher ActionDispatcher
	logger     *slog.Logger
}

func NewRelayOutboxCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher ActionDispatcher,
	logger *slog.Logger,
) RelayOutboxCommandHandler {
	return RelayOutboxCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		logger:     logger.With("component", "outbox_relay"),
	}
}

// Handle returns how many messages were sent. A message that fails again
// stays pending with its attempt counter raised.
func (h RelayOutboxCommandHandler) Handle(ctx context.Context, cmd RelayOutboxCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outboxRepo := uow.OutboxRepository()
	pending, err := outboxRepo.ListPending(ctx, cmd.CreatedBefore(), cmd.BatchSize())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, message := range pending {
		if dispatchErr := h.dispatcher.Dispatch(ctx, message); dispatchErr != nil {
			h.logger.WarnContext(ctx, "Relay attempt failed",
				"message_id", message.ID().String(),
				"order_id", message.OrderID().String(),
				"command", message.CommandType(),
				"attempts", message.Attempts(),
				"error", dispatchErr,
			)
		} else {
			sent++
		}

		if err = outboxRepo.Update(ctx, message); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	if len(pending) > 0 {
		h.logger.InfoContext(ctx, "Outbox relayed", "pending", len(pending), "sent", sent)
	}
	return sent, nil
}
