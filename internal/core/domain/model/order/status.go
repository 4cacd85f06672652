package order

import (
	"fmt"

	"beerorder/internal/pkg/errs"
)

// Status is the saga state of an order. Every value other than Unknown is a
// node of the transition table in transition.go.
//
//	NEW ──> VALIDATION_PENDING ──┬──> VALIDATED ──> ALLOCATION_PENDING ──┬──> ALLOCATED ──> PICKED_UP
//	                             │                                        ├──> PENDING_INVENTORY
//	                             └──> VALIDATION_EXCEPTION                └──> ALLOCATION_EXCEPTION
//
// VALIDATION_PENDING, VALIDATED, ALLOCATION_PENDING and ALLOCATED may also move
// to CANCELLED.
type Status int

const (
	// Unknown is the zero value and never a valid persisted state.
	Unknown Status = iota
	New
	ValidationPending
	Validated
	ValidationException
	AllocationPending
	Allocated
	PendingInventory
	AllocationException
	PickedUp
	Cancelled
)

var statusNames = map[Status]string{
	New:                 "NEW",
	ValidationPending:   "VALIDATION_PENDING",
	Validated:           "VALIDATED",
	ValidationException: "VALIDATION_EXCEPTION",
	AllocationPending:   "ALLOCATION_PENDING",
	Allocated:           "ALLOCATED",
	PendingInventory:    "PENDING_INVENTORY",
	AllocationException: "ALLOCATION_EXCEPTION",
	PickedUp:            "PICKED_UP",
	Cancelled:           "CANCELLED",
}

// AllStatuses lists every valid status in declaration order.
func AllStatuses() []Status {
	return []Status{
		New, ValidationPending, Validated, ValidationException, AllocationPending,
		Allocated, PendingInventory, AllocationException, PickedUp, Cancelled,
	}
}

// ParseStatus is the inverse of String. It is used when reading statuses back
// from storage, query strings and LISTEN/NOTIFY payloads.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no event is accepted in s.
func (s Status) IsTerminal() bool {
	return terminalStatuses.Contains(s)
}

// IsCancelable reports whether CANCEL_ORDER is accepted in s.
func (s Status) IsCancelable() bool {
	return cancelableStatuses.Contains(s)
}
