package queries

import (
	"context"
	"database/sql"
	"errors"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads an order straight from the tables, bypassing
// the aggregate.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound for an unknown order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)
	resp := GetOrderQueryResponse{ID: query.OrderID()}

	var customerID uuid.UUID
	err := db.Raw(`
		SELECT customer_id, customer_ref, status, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row().Scan(&customerID, &resp.CustomerRef, &resp.Status, &resp.CreatedAt, &resp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetOrderQueryResponse{}, err
	}

	if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}

	rows, err := db.Raw(`
		SELECT id, upc, quantity_ordered, quantity_allocated
		FROM order_lines
		WHERE order_id = ?
		ORDER BY position
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	defer rows.Close()

	resp.Lines = make([]OrderLineResponse, 0)
	for rows.Next() {
		var (
			line   OrderLineResponse
			lineID uuid.UUID
		)
		if err = rows.Scan(&lineID, &line.UPC, &line.QuantityOrdered, &line.QuantityAllocated); err != nil {
			return GetOrderQueryResponse{}, err
		}
		if line.ID, err = kernel.UUIDFromBytes(lineID[:]); err != nil {
			return GetOrderQueryResponse{}, err
		}
		resp.Lines = append(resp.Lines, line)
	}

	if err = rows.Err(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	return resp, nil
}
