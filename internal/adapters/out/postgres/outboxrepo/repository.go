package outboxrepo

import (
	"context"
	"errors"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/outbox"
	"beerorder/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements ports.OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := fromDomain(message)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update stores the dispatch state. Zero values are written too, hence the map.
func (r *GormOutboxRepository) Update(ctx context.Context, message *outbox.Message) error {
	dto := fromDomain(message)
	result := r.db.WithContext(ctx).Model(&MessageDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"status":        dto.Status,
		"attempts":      dto.Attempts,
		"last_error":    dto.LastError,
		"dispatched_at": dto.DispatchedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", message.ID().String())
	}
	return nil
}

func (r *GormOutboxRepository) Get(ctx context.Context, id kernel.UUID) (*outbox.Message, error) {
	var dto MessageDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("outbox message", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

// ListPending returns the oldest pending messages. Rows already claimed by
// another relay transaction are skipped.
func (r *GormOutboxRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*outbox.Message, error) {
	var dtos []MessageDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND created_at < ?", outbox.Pending.String(), createdBefore).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*outbox.Message, 0, len(dtos))
	for _, dto := range dtos {
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
