package ports

import (
	"context"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/outbox"
)

// OutboxRepository stores commands awaiting delivery to downstream services.
type OutboxRepository interface {
	// Add stores a pending message. It is called inside the transaction that
	// committed the order transition producing the message.
	Add(ctx context.Context, message *outbox.Message) error

	// Update persists the dispatch state and attempt counters of a message.
	Update(ctx context.Context, message *outbox.Message) error

	Get(ctx context.Context, id kernel.UUID) (*outbox.Message, error)

	// ListPending returns up to limit pending messages created before the
	// given instant, oldest first.
	ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*outbox.Message, error)
}
