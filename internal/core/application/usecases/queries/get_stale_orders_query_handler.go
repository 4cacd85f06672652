package queries

import (
	"context"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetStaleOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetStaleOrdersQueryHandler(db *gorm.DB) GetStaleOrdersQueryHandler {
	return GetStaleOrdersQueryHandler{db: db}
}

func (h GetStaleOrdersQueryHandler) Handle(ctx context.Context, query GetStaleOrdersQuery) ([]StaleOrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(query.statuses))
	for _, s := range query.statuses {
		names = append(names, s.String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, status, updated_at
		FROM orders
		WHERE status IN ? AND updated_at < ?
		ORDER BY updated_at
		LIMIT ?
	`, names, query.updatedBefore, query.limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stale := make([]StaleOrderResponse, 0)
	for rows.Next() {
		var (
			resp   StaleOrderResponse
			id     uuid.UUID
			status string
		)
		if err = rows.Scan(&id, &status, &resp.UpdatedAt); err != nil {
			return nil, err
		}
		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		stale = append(stale, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stale, nil
}
