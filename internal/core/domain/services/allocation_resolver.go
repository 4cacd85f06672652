package services

import (
	"beerorder/internal/core/domain/model/order"
)

// AllocationResolver is a domain service that maps the allocation service's
// reply onto a saga event.
//
// Business rules, in order of precedence:
//   - an allocation error fails the allocation (ALLOCATION_FAILED)
//   - a reply flagged as pending inventory leaves the order waiting for stock
//     (ALLOCATION_NO_INVENTORY)
//   - a reply that leaves any line short is treated the same way, so partial
//     allocations end in PENDING_INVENTORY
//   - otherwise the order is fully allocated (ALLOCATION_SUCCESS)
//
// Example usage:
//
//	resolver := services.NewAllocationResolver()
//	event, err := resolver.Resolve(o, allocations, false, false)
//	if err != nil {
//	    // the reply names a line the order does not have
//	    return err
//	}
//	transition, err := o.Apply(event)
type AllocationResolver struct{}

// NewAllocationResolver creates a new AllocationResolver instance.
func NewAllocationResolver() AllocationResolver {
	return AllocationResolver{}
}

// Resolve returns the event an allocation reply stands for.
//
// Parameters:
//   - o: the order the reply belongs to (must be valid)
//   - allocations: quantities reported per line id
//   - allocationError: the allocation service could not process the order
//   - pendingInventory: the allocation service is waiting for stock
//
// Returns an error when o is invalid or a reported quantity is out of range.
func (r AllocationResolver) Resolve(
	o *order.Order,
	allocations []order.LineAllocation,
	allocationError, pendingInventory bool,
) (order.Event, error) {
	if err := o.Validate(); err != nil {
		return order.UnknownEvent, err
	}

	if allocationError {
		return order.AllocationFailed, nil
	}
	if pendingInventory {
		return order.AllocationNoInventory, nil
	}

	covered, err := o.CoveredBy(allocations)
	if err != nil {
		return order.UnknownEvent, err
	}
	if !covered {
		return order.AllocationNoInventory, nil
	}
	return order.AllocationSuccess, nil
}
