package orderrepo

import (
	"context"
	"errors"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusChannel is the postgres NOTIFY channel announcing committed status
// changes. The payload is "<order id>:<status name>".
const StatusChannel = "order_status_changed"

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order together with its lines.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update writes the status and the allocated quantities, then queues a
// status notification that postgres delivers when the transaction commits.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"status":     dto.Status,
		"updated_at": gorm.Expr("now()"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	for _, l := range dto.Lines {
		if err := db.Model(&OrderLineDTO{}).
			Where("id = ? AND order_id = ?", l.ID, dto.ID).
			Update("quantity_allocated", l.QuantityAllocated).Error; err != nil {
			return err
		}
	}

	return db.Exec("SELECT pg_notify(?, ?)", StatusChannel, aggregate.ID().String()+":"+dto.Status).Error
}

// Get loads an order and its lines. Inside a transaction the order row is
// locked until commit.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetStatus reads the committed status without touching the lines.
func (r *GormOrderRepository) GetStatus(ctx context.Context, id kernel.UUID) (order.Status, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).Select("status").First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.Unknown, errs.NewObjectNotFoundError("order", id.String())
		}
		return order.Unknown, err
	}

	return order.ParseStatus(dto.Status)
}
