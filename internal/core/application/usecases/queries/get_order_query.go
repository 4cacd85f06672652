package queries

import (
	"errors"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its lines.
//
// Example:
//
//	query, err := queries.NewGetOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	resp, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

type OrderLineResponse struct {
	ID                kernel.UUID
	UPC               string
	QuantityOrdered   int
	QuantityAllocated int
}

type GetOrderQueryResponse struct {
	ID          kernel.UUID
	CustomerID  kernel.UUID
	CustomerRef string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []OrderLineResponse
}
