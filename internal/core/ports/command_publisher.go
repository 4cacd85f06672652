package ports

import (
	"context"

	"beerorder/internal/core/domain/model/outbox"
)

// CommandPublisher delivers an outbound command to the service behind its
// destination. Delivery is at-least-once; receivers deduplicate by order id
// and command type.
type CommandPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}
