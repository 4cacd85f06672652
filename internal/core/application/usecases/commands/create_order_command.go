package commands

import (
	"errors"
	"fmt"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"
	"beerorder/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// OrderLineDraft is one requested beer. A zero LineID is replaced by a fresh one.
type OrderLineDraft struct {
	LineID   kernel.UUID
	UPC      string
	Quantity int
}

// CreateOrderCommand is a customer's request to place an order.
//
// Example:
//
//	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), customerID, "web-4711", []commands.OrderLineDraft{
//	    {UPC: "0631234200036", Quantity: 3},
//	})
//	if err != nil {
//	    return err
//	}
//	created, err := orchestrator.CreateOrder(ctx, cmd) // created.Status() == VALIDATION_PENDING
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	customerID  kernel.UUID
	customerRef string
	lines       []*order.Line

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID, customerID kernel.UUID,
	customerRef string,
	lines []OrderLineDraft,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		customerRef: customerRef,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setLines(lines),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) CustomerRef() string {
	return c.customerRef
}

func (c CreateOrderCommand) newOrder() (*order.Order, error) {
	return order.NewOrder(c.orderID, c.customerID, c.customerRef, c.lines)
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer id", err)
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setLines(drafts []OrderLineDraft) error {
	if len(drafts) == 0 {
		return errs.NewValueIsRequiredError("order lines")
	}

	lines := make([]*order.Line, 0, len(drafts))
	var problems []error
	for i, d := range drafts {
		id := d.LineID
		if id.Validate() != nil {
			id = kernel.NewUUID()
		}
		line, err := order.NewLine(id, d.UPC, d.Quantity)
		if err != nil {
			problems = append(problems, fmt.Errorf("line %d: %w", i, err))
			continue
		}
		lines = append(lines, line)
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	c.lines = lines
	return nil
}
