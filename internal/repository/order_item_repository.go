package repository

import (
	"context"
	"tailor_shop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemRepository interface {
	Create(ctx context.Context, orderItem *models.OrderItem) error
	// GetByID loads the item together with its owning order.
	GetByID(ctx context.Context, id uint) (*models.OrderItem, error)
	// LockByID loads the item with a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id uint) (*models.OrderItem, error)
	GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	UpdateCurrentStatus(ctx context.Context, id uint, status models.Status) error
	UpdatePaymentStatus(ctx context.Context, id uint, status models.PaymentStatus) error
	UpdatePrice(ctx context.Context, id uint, price decimal.Decimal, approval models.ApprovalStatus) error
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(ctx context.Context, orderItem *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(orderItem).Error
}

func (r *orderItemRepository) GetByID(ctx context.Context, id uint) (*models.OrderItem, error) {
	var orderItem models.OrderItem
	err := r.db.WithContext(ctx).Preload("Order").Where("item_id = ?", id).First(&orderItem).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &orderItem, nil
}

func (r *orderItemRepository) LockByID(ctx context.Context, id uint) (*models.OrderItem, error) {
	var orderItem models.OrderItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ?", id).
		First(&orderItem).Error
	if err != nil {
		return nil, mapError(err)
	}

	// Loaded separately so the lock applies to the item row only.
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, orderItem.OrderID).Error; err != nil {
		return nil, mapError(err)
	}
	orderItem.Order = &order
	return &orderItem, nil
}

func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var orderItems []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("item_id").Find(&orderItems).Error
	if err != nil {
		return nil, err
	}
	return orderItems, nil
}

func (r *orderItemRepository) UpdateCurrentStatus(ctx context.Context, id uint, status models.Status) error {
	return r.updateColumn(ctx, id, "current_status", status)
}

func (r *orderItemRepository) UpdatePaymentStatus(ctx context.Context, id uint, status models.PaymentStatus) error {
	return r.updateColumn(ctx, id, "payment_status", status)
}

func (r *orderItemRepository) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal, approval models.ApprovalStatus) error {
	result := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("item_id = ?", id).
		Updates(map[string]interface{}{
			"final_price":     price,
			"approval_status": approval,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderItemRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("item_id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
