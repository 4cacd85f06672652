package queries

import (
	"context"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderSummaryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var statusFilter *string
	if query.Status() != order.Unknown {
		s := query.Status().String()
		statusFilter = &s
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, customer_id, customer_ref, status, updated_at
		FROM orders
		WHERE (?::text IS NULL OR status = ?::text)
		ORDER BY updated_at DESC, id
		LIMIT ?
	`, statusFilter, statusFilter, query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderSummaryResponse, 0)
	for rows.Next() {
		var (
			resp           OrderSummaryResponse
			id, customerID uuid.UUID
		)
		if err = rows.Scan(&id, &customerID, &resp.CustomerRef, &resp.Status, &resp.UpdatedAt); err != nil {
			return nil, err
		}
		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
			return nil, err
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
