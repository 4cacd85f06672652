package queries

import (
	"errors"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"
	"beerorder/internal/pkg/guard"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery lists orders, most recently changed first, optionally
// narrowed to one status. A zero limit means DefaultListLimit.
type ListOrdersQuery struct {
	status order.Status
	limit  int
	guard  guard.ConstructorGuard
}

// NewListOrdersQuery accepts order.Unknown as "any status".
func NewListOrdersQuery(status order.Status, limit int) (ListOrdersQuery, error) {
	if status != order.Unknown {
		if err := status.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return ListOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxListLimit)
	}

	return ListOrdersQuery{status: status, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Status() order.Status {
	return q.status
}

func (q ListOrdersQuery) Limit() int {
	return q.limit
}

type OrderSummaryResponse struct {
	ID          kernel.UUID
	CustomerID  kernel.UUID
	CustomerRef string
	Status      string
	UpdatedAt   time.Time
}
