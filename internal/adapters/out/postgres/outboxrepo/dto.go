// Package outboxrepo persists commands waiting to be sent to downstream
// services.
package outboxrepo

import (
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/outbox"

	"github.com/google/uuid"
)

type MessageDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID `gorm:"type:uuid;index"`
	CommandType  string    `gorm:"type:varchar(64)"`
	Destination  string    `gorm:"type:varchar(255)"`
	Payload      []byte    `gorm:"type:bytea"`
	Status       string    `gorm:"type:varchar(16);index"`
	Attempts     int
	LastError    string `gorm:"type:text"`
	CreatedAt    time.Time
	DispatchedAt *time.Time
}

func (MessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(m *outbox.Message) MessageDTO {
	return MessageDTO{
		ID:           m.ID().Bytes(),
		OrderID:      m.OrderID().Bytes(),
		CommandType:  m.CommandType(),
		Destination:  m.Destination(),
		Payload:      m.Payload(),
		Status:       m.Status().String(),
		Attempts:     m.Attempts(),
		LastError:    m.LastError(),
		CreatedAt:    m.CreatedAt(),
		DispatchedAt: m.DispatchedAt(),
	}
}

func toDomain(dto MessageDTO) (*outbox.Message, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	status, err := outbox.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return outbox.RestoreMessage(id, orderID, dto.CommandType, dto.Destination, dto.Payload,
		status, dto.Attempts, dto.LastError, dto.CreatedAt, dto.DispatchedAt)
}
