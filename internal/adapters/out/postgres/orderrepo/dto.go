// Package orderrepo maps beer order aggregates onto the orders and
// order_lines tables.
package orderrepo

import (
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is a row of the orders table. Status is stored by name.
type OrderDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID      `gorm:"type:uuid;index"`
	CustomerRef string         `gorm:"type:text"`
	Status      string         `gorm:"type:varchar(32);index"`
	Lines       []OrderLineDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderLineDTO is a row of the order_lines table. Position keeps the lines in
// the order they were requested.
type OrderLineDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;index"`
	Position          int
	UPC               string `gorm:"column:upc;type:varchar(64)"`
	QuantityOrdered   int
	QuantityAllocated int
}

func (OrderLineDTO) TableName() string {
	return "order_lines"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	lines := aggregate.Lines()
	dto := OrderDTO{
		ID:          aggregate.ID().Bytes(),
		CustomerID:  aggregate.CustomerID().Bytes(),
		CustomerRef: aggregate.CustomerRef(),
		Status:      aggregate.Status().String(),
		Lines:       make([]OrderLineDTO, 0, len(lines)),
	}

	for i, l := range lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ID:                l.ID().Bytes(),
			OrderID:           dto.ID,
			Position:          i,
			UPC:               l.UPC(),
			QuantityOrdered:   l.QuantityOrdered(),
			QuantityAllocated: l.QuantityAllocated(),
		})
	}

	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	lines := make([]*order.Line, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		lineID, lineErr := kernel.UUIDFromBytes(l.ID[:])
		if lineErr != nil {
			return nil, lineErr
		}
		line, lineErr := order.RestoreLine(lineID, l.UPC, l.QuantityOrdered, l.QuantityAllocated)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return order.RestoreOrder(id, customerID, dto.CustomerRef, status, lines)
}
