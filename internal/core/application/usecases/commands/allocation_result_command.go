package commands

import (
	"errors"
	"slices"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/guard"
)

var ErrAllocationResultCommandIsNotConstructed = errors.New(
	"AllocationResultCommand must be created via NewAllocationResultCommand constructor",
)

// AllocationResultCommand carries the allocation service's reply. An
// allocation error wins over everything else; otherwise the order is pending
// inventory when the service says so or when any line is short.
type AllocationResultCommand struct {
	orderID          kernel.UUID
	allocations      []order.LineAllocation
	allocationError  bool
	pendingInventory bool

	guard guard.ConstructorGuard
}

func NewAllocationResultCommand(
	orderID kernel.UUID,
	allocations []order.LineAllocation,
	allocationError, pendingInventory bool,
) (AllocationResultCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AllocationResultCommand{}, err
	}

	for _, a := range allocations {
		if err := a.LineID.Validate(); err != nil {
			return AllocationResultCommand{}, err
		}
	}

	return AllocationResultCommand{
		orderID:          orderID,
		allocations:      slices.Clone(allocations),
		allocationError:  allocationError,
		pendingInventory: pendingInventory,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (c AllocationResultCommand) Validate() error {
	return c.guard.Validate(ErrAllocationResultCommandIsNotConstructed)
}

func (c AllocationResultCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AllocationResultCommand) Allocations() []order.LineAllocation {
	return slices.Clone(c.allocations)
}

func (c AllocationResultCommand) AllocationError() bool {
	return c.allocationError
}

func (c AllocationResultCommand) PendingInventory() bool {
	return c.pendingInventory
}
