package dispatch

import (
	"beerorder/internal/core/domain/model/order"
)

// Command type names. They travel in the "command-type" message header and in
// the outbox table.
const (
	ValidateOrderCommandType    = "ValidateOrderCommand"
	AllocateOrderCommandType    = "AllocateOrderCommand"
	AllocationFailureNoticeType = "AllocationFailureNotice"
	DeallocateOrderCommandType  = "DeallocateOrderCommand"
)

// OrderLineDto is the wire form of an order line.
type OrderLineDto struct {
	ID                string `json:"id"`
	UPC               string `json:"upc"`
	OrderQuantity     int    `json:"orderQuantity"`
	QuantityAllocated int    `json:"quantityAllocated"`
}

// OrderDto is the order snapshot carried by commands.
type OrderDto struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customerId"`
	CustomerRef string         `json:"customerRef,omitempty"`
	Status      string         `json:"orderStatus"`
	Lines       []OrderLineDto `json:"beerOrderLines"`
}

type ValidateOrderCommand struct {
	OrderID string   `json:"orderId"`
	Order   OrderDto `json:"beerOrder"`
}

type AllocateOrderCommand struct {
	OrderID string   `json:"orderId"`
	Order   OrderDto `json:"beerOrder"`
}

type AllocationFailureNotice struct {
	OrderID string `json:"orderId"`
}

type DeallocateOrderCommand struct {
	OrderID string   `json:"orderId"`
	Order   OrderDto `json:"beerOrder"`
}

// NewOrderDto snapshots o as it was when the command was produced.
func NewOrderDto(o *order.Order) OrderDto {
	lines := o.Lines()
	dto := OrderDto{
		ID:          o.ID().String(),
		CustomerID:  o.CustomerID().String(),
		CustomerRef: o.CustomerRef(),
		Status:      o.Status().String(),
		Lines:       make([]OrderLineDto, 0, len(lines)),
	}
	for _, l := range lines {
		dto.Lines = append(dto.Lines, OrderLineDto{
			ID:                l.ID().String(),
			UPC:               l.UPC(),
			OrderQuantity:     l.QuantityOrdered(),
			QuantityAllocated: l.QuantityAllocated(),
		})
	}
	return dto
}
