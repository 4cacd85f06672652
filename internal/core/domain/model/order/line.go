package order

import (
	"errors"
	"fmt"
	"strings"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/errs"
)

// ErrLineIsNotConstructed is returned when a Line was not built by NewLine or RestoreLine.
var ErrLineIsNotConstructed = errors.New("Line must be created via NewLine constructor")

// Line is one beer of an order. quantityAllocated starts at 0 and is only
// changed by Order.Allocate; it never exceeds quantityOrdered.
type Line struct {
	id                kernel.UUID
	upc               string
	quantityOrdered   int
	quantityAllocated int

	isConstructed bool
}

// NewLine creates an unallocated line.
func NewLine(id kernel.UUID, upc string, quantityOrdered int) (*Line, error) {
	return RestoreLine(id, upc, quantityOrdered, 0)
}

// RestoreLine rebuilds a line read from storage.
func RestoreLine(id kernel.UUID, upc string, quantityOrdered, quantityAllocated int) (*Line, error) {
	line := &Line{isConstructed: true}

	if err := errors.Join(
		line.setID(id),
		line.setUPC(upc),
		line.setQuantityOrdered(quantityOrdered),
	); err != nil {
		return nil, err
	}

	if err := line.setQuantityAllocated(quantityAllocated); err != nil {
		return nil, err
	}

	return line, nil
}

func (l *Line) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLineIsNotConstructed
	}
	return nil
}

func (l *Line) ID() kernel.UUID {
	return l.id
}

func (l *Line) UPC() string {
	return l.upc
}

func (l *Line) QuantityOrdered() int {
	return l.quantityOrdered
}

func (l *Line) QuantityAllocated() int {
	return l.quantityAllocated
}

// IsFullyAllocated reports whether the allocation service covered the whole line.
func (l *Line) IsFullyAllocated() bool {
	return l.quantityAllocated == l.quantityOrdered
}

func (l *Line) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.id = id
	return nil
}

func (l *Line) setUPC(upc string) error {
	if strings.TrimSpace(upc) == "" {
		return errs.NewValueIsRequiredError("upc")
	}
	l.upc = upc
	return nil
}

func (l *Line) setQuantityOrdered(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"quantity ordered is invalid",
			fmt.Errorf("%d is not greater than 0", quantity),
		)
	}
	l.quantityOrdered = quantity
	return nil
}

func (l *Line) setQuantityAllocated(quantity int) error {
	if quantity < 0 || quantity > l.quantityOrdered {
		return errs.NewValueIsOutOfRangeError("quantity allocated", quantity, 0, l.quantityOrdered)
	}
	l.quantityAllocated = quantity
	return nil
}
