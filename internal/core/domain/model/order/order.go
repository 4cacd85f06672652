package order

import (
	"errors"
	"slices"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order was not built by NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the aggregate root the saga runs on.
//
// Invariants:
//   - the identifier and customer identifier are valid
//   - there is at least one line and line identifiers are unique
//   - the status only changes through Apply, which consults the transition table
//   - allocated quantities only change through Allocate
type Order struct {
	id          kernel.UUID
	customerID  kernel.UUID
	customerRef string
	status      Status
	lines       []*Line

	isConstructed bool
}

// NewOrder creates an order at NEW.
//
// Example:
//
//	line, _ := order.NewLine(kernel.NewUUID(), "0631234200036", 3)
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, "web-4711", []*order.Line{line})
//	if err != nil {
//	    return err
//	}
//	transition, err := o.Apply(order.ValidateOrder) // NEW -> VALIDATION_PENDING
func NewOrder(id, customerID kernel.UUID, customerRef string, lines []*Line) (*Order, error) {
	return RestoreOrder(id, customerID, customerRef, New, lines)
}

// RestoreOrder rebuilds an order read from storage in any valid status.
func RestoreOrder(id, customerID kernel.UUID, customerRef string, status Status, lines []*Line) (*Order, error) {
	o := &Order{
		customerRef:   customerRef,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setStatus(status),
		o.setLines(lines),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// CustomerRef is the caller supplied reference. It may be empty.
func (o *Order) CustomerRef() string {
	return o.customerRef
}

func (o *Order) Status() Status {
	return o.status
}

// Lines returns the lines in creation order. The slice is a copy; the lines are shared.
func (o *Order) Lines() []*Line {
	return slices.Clone(o.lines)
}

// Apply fires event against the current status and, when the table has an
// edge, moves the order to its target. The returned transition carries the
// action the caller must dispatch after the change is committed.
// On *InvalidTransitionError the order is left untouched.
func (o *Order) Apply(event Event) (Transition, error) {
	t, err := Fire(o.status, event)
	if err != nil {
		return Transition{}, err
	}
	o.status = t.To
	return t, nil
}

// LineAllocation is the allocated quantity the allocation service reports for one line.
type LineAllocation struct {
	LineID            kernel.UUID
	QuantityAllocated int
}

// Allocate merges reported quantities into the lines by line id. Allocations
// for unknown lines are ignored. Either every known allocation is applied or,
// if any of them is out of range, none is.
func (o *Order) Allocate(allocations []LineAllocation) error {
	plan, err := o.planAllocation(allocations)
	if err != nil {
		return err
	}

	for line, quantity := range plan {
		line.quantityAllocated = quantity
	}
	return nil
}

// CoveredBy reports whether every line would be fully allocated once
// allocations were merged. The order itself is not changed.
func (o *Order) CoveredBy(allocations []LineAllocation) (bool, error) {
	plan, err := o.planAllocation(allocations)
	if err != nil {
		return false, err
	}

	for _, l := range o.lines {
		quantity, ok := plan[l]
		if !ok {
			quantity = l.quantityAllocated
		}
		if quantity != l.quantityOrdered {
			return false, nil
		}
	}
	return true, nil
}

func (o *Order) planAllocation(allocations []LineAllocation) (map[*Line]int, error) {
	plan := make(map[*Line]int, len(allocations))
	for _, a := range allocations {
		line := o.line(a.LineID)
		if line == nil {
			continue
		}
		if a.QuantityAllocated < 0 || a.QuantityAllocated > line.quantityOrdered {
			return nil, errs.NewValueIsOutOfRangeError("quantity allocated", a.QuantityAllocated, 0, line.quantityOrdered)
		}
		plan[line] = a.QuantityAllocated
	}
	return plan, nil
}

// IsFullyAllocated reports whether every line has its full quantity allocated.
func (o *Order) IsFullyAllocated() bool {
	for _, l := range o.lines {
		if !l.IsFullyAllocated() {
			return false
		}
	}
	return true
}

func (o *Order) line(id kernel.UUID) *Line {
	for _, l := range o.lines {
		if l.id.IsEqual(id) {
			return l
		}
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer id", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setLines(lines []*Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("order lines")
	}

	seen := make(map[kernel.UUID]struct{}, len(lines))
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
		if _, dup := seen[l.id]; dup {
			return errs.NewValueIsInvalidError("duplicate order line " + l.id.String())
		}
		seen[l.id] = struct{}{}
	}

	o.lines = slices.Clone(lines)
	return nil
}
