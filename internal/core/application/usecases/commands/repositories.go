package commands

import (
	"context"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/core/domain/model/outbox"
	"beerorder/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	OrderUoW interface {
		TxManager
		OrderRepoFactory
		OutboxRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// ActionDispatcher prepares the outbound command of a transition inside its
	// transaction and sends it after commit.
	ActionDispatcher interface {
		Prepare(ctx context.Context, action order.Action, aggregate *order.Order) (*outbox.Message, error)
		Dispatch(ctx context.Context, message *outbox.Message) error
	}

	// ConsistencyWaiter reports whether an order was observed in a status
	// before its attempts ran out.
	ConsistencyWaiter interface {
		AwaitStatus(ctx context.Context, orderID kernel.UUID, want order.Status) bool
	}

	// StatusPublisher announces committed statuses to in-process waiters.
	StatusPublisher interface {
		Publish(orderID kernel.UUID, status order.Status)
	}
)
