package repository

import (
	"context"
	"tailor_shop/internal/models"

	"gorm.io/gorm"
)

// StatusStore is the append-only order_tracking log. It has no update or delete.
type StatusStore interface {
	Append(ctx context.Context, event *models.OrderTracking) error
	// Latest returns the most recent event, or nil when the item has none yet.
	Latest(ctx context.Context, orderItemID uint) (*models.OrderTracking, error)
	ListByItem(ctx context.Context, orderItemID uint) ([]models.OrderTracking, error)
}

type statusStore struct {
	db *gorm.DB
}

func NewStatusStore(db *gorm.DB) StatusStore {
	return &statusStore{db: db}
}

func (s *statusStore) Append(ctx context.Context, event *models.OrderTracking) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *statusStore) Latest(ctx context.Context, orderItemID uint) (*models.OrderTracking, error) {
	var events []models.OrderTracking
	err := s.db.WithContext(ctx).
		Where("order_item_id = ?", orderItemID).
		Order("created_at DESC").Order("id DESC").
		Limit(1).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (s *statusStore) ListByItem(ctx context.Context, orderItemID uint) ([]models.OrderTracking, error) {
	var events []models.OrderTracking
	err := s.db.WithContext(ctx).
		Where("order_item_id = ?", orderItemID).
		Order("created_at").Order("id").
		Find(&events).Error
	return events, err
}
