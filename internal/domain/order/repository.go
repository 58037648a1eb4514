// internal/domain/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository errors
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateToken = errors.New("payment token already settled")
)

// Repository persists settled orders. Create must fail with
// ErrDuplicateToken when an order with the same payment token already exists;
// that constraint is the settlement idempotence backstop.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByPaymentToken(ctx context.Context, token string) (*Order, error)
	FindByUser(ctx context.Context, userID uint, offset, limit int) ([]Order, int64, error)
	FindByID(ctx context.Context, userID, orderID uint) (*Order, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed order repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create persists the order and its frozen items in one transaction
func (r *gormRepository) Create(ctx context.Context, o *Order) error {
	err := r.db.WithContext(ctx).Create(o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("failed to persist order: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByPaymentToken(ctx context.Context, token string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).Preload("Items").Where("payment_token = ?", token).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to look up order by token: %w", err)
	}
	return &o, nil
}

func (r *gormRepository) FindByUser(ctx context.Context, userID uint, offset, limit int) ([]Order, int64, error) {
	var orders []Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *gormRepository) FindByID(ctx context.Context, userID, orderID uint) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}
