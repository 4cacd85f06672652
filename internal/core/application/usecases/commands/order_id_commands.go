package commands

import (
	"errors"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/guard"
)

var (
	ErrCancelOrderCommandIsNotConstructed = errors.New(
		"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
	)
	ErrPickUpOrderCommandIsNotConstructed = errors.New(
		"PickUpOrderCommand must be created via NewPickUpOrderCommand constructor",
	)
)

// CancelOrderCommand asks to cancel an order. It is a no-op for orders that
// are no longer cancel-eligible.
type CancelOrderCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID kernel.UUID) (CancelOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// PickUpOrderCommand records that the customer collected an allocated order.
type PickUpOrderCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewPickUpOrderCommand(orderID kernel.UUID) (PickUpOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return PickUpOrderCommand{}, err
	}
	return PickUpOrderCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c PickUpOrderCommand) Validate() error {
	return c.guard.Validate(ErrPickUpOrderCommandIsNotConstructed)
}

func (c PickUpOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
