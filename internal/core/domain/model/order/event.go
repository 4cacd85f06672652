package order

import (
	"fmt"

	"beerorder/internal/pkg/errs"
)

// Event is a saga trigger. Triggers come from the order's own lifecycle
// (VALIDATE_ORDER, ALLOCATE_ORDER, CANCEL_ORDER, BEER_ORDER_PICKED_UP) or from
// the results sent back by the validation and allocation services.
type Event int

const (
	UnknownEvent Event = iota
	ValidateOrder
	ValidationSuccess
	ValidationFailed
	AllocateOrder
	AllocationSuccess
	AllocationFailed
	AllocationNoInventory
	BeerOrderPickedUp
	CancelOrder
)

var eventNames = map[Event]string{
	ValidateOrder:         "VALIDATE_ORDER",
	ValidationSuccess:     "VALIDATION_SUCCESS",
	ValidationFailed:      "VALIDATION_FAILED",
	AllocateOrder:         "ALLOCATE_ORDER",
	AllocationSuccess:     "ALLOCATION_SUCCESS",
	AllocationFailed:      "ALLOCATION_FAILED",
	AllocationNoInventory: "ALLOCATION_NO_INVENTORY",
	BeerOrderPickedUp:     "BEER_ORDER_PICKED_UP",
	CancelOrder:           "CANCEL_ORDER",
}

// AllEvents lists every valid event in declaration order.
func AllEvents() []Event {
	return []Event{
		ValidateOrder, ValidationSuccess, ValidationFailed, AllocateOrder, AllocationSuccess,
		AllocationFailed, AllocationNoInventory, BeerOrderPickedUp, CancelOrder,
	}
}

func (e Event) Validate() error {
	if _, ok := eventNames[e]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("event is invalid", fmt.Errorf("%d is not a valid event", e))
	}
	return nil
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "UNKNOWN_EVENT"
}

// IsExternalResult reports whether e is produced by a downstream service reply
// rather than by the order's own lifecycle.
func (e Event) IsExternalResult() bool {
	switch e { //nolint:exhaustive // lifecycle events fall through to false
	case ValidationSuccess, ValidationFailed, AllocationSuccess, AllocationFailed, AllocationNoInventory:
		return true
	default:
		return false
	}
}
