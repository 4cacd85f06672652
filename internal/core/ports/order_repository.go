package ports

import (
	"context"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Implementations bound to a transaction see that transaction's writes.
type OrderRepository interface {
	// Add persists a new order with its lines.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the status and allocated quantities of an existing order.
	// Implementations must also announce the new status to other instances
	// once the surrounding transaction commits.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads an order with its lines. A missing order is reported as
	// errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetStatus reads only the persisted status of an order.
	GetStatus(ctx context.Context, id kernel.UUID) (order.Status, error)
}
