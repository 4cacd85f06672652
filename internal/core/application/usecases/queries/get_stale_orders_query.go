package queries

import (
	"errors"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"
	"beerorder/internal/pkg/guard"
)

var ErrGetStaleOrdersQueryIsNotConstructed = errors.New(
	"GetStaleOrdersQuery must be created via NewGetStaleOrdersQuery constructor",
)

// GetStaleOrdersQuery finds orders that have sat in one of the given
// statuses since before a cut-off, oldest first.
//
// Example:
//
//	query, err := queries.NewGetStaleOrdersQuery(time.Now().Add(-5*time.Minute), 50,
//	    order.New, order.Validated, order.ValidationPending)
type GetStaleOrdersQuery struct {
	updatedBefore time.Time
	statuses      []order.Status
	limit         int
	guard         guard.ConstructorGuard
}

func NewGetStaleOrdersQuery(updatedBefore time.Time, limit int, statuses ...order.Status) (GetStaleOrdersQuery, error) {
	if updatedBefore.IsZero() {
		return GetStaleOrdersQuery{}, errs.NewValueIsRequiredError("updatedBefore")
	}
	if len(statuses) == 0 {
		return GetStaleOrdersQuery{}, errs.NewValueIsRequiredError("statuses")
	}
	for _, s := range statuses {
		if err := s.Validate(); err != nil {
			return GetStaleOrdersQuery{}, err
		}
	}
	if limit < 1 || limit > MaxListLimit {
		return GetStaleOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxListLimit)
	}

	return GetStaleOrdersQuery{
		updatedBefore: updatedBefore,
		statuses:      statuses,
		limit:         limit,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (q GetStaleOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetStaleOrdersQueryIsNotConstructed)
}

type StaleOrderResponse struct {
	ID        kernel.UUID
	Status    order.Status
	UpdatedAt time.Time
}
