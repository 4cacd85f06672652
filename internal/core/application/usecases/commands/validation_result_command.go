package commands

import (
	"errors"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/guard"
)

var ErrValidationResultCommandIsNotConstructed = errors.New(
	"ValidationResultCommand must be created via NewValidationResultCommand constructor",
)

// ValidationResultCommand carries the validation service's verdict on an order.
type ValidationResultCommand struct {
	orderID kernel.UUID
	isValid bool

	guard guard.ConstructorGuard
}

func NewValidationResultCommand(orderID kernel.UUID, isValid bool) (ValidationResultCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ValidationResultCommand{}, err
	}

	return ValidationResultCommand{
		orderID: orderID,
		isValid: isValid,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ValidationResultCommand) Validate() error {
	return c.guard.Validate(ErrValidationResultCommandIsNotConstructed)
}

func (c ValidationResultCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ValidationResultCommand) IsValid() bool {
	return c.isValid
}
