package repository

import (
	"context"
	"tailor_shop/internal/models"

	"gorm.io/gorm"
)

type ActionLogRepository interface {
	Append(ctx context.Context, entry *models.ActionLog) error
	ListByItem(ctx context.Context, orderItemID uint) ([]models.ActionLog, error)
}

type actionLogRepository struct {
	db *gorm.DB
}

func NewActionLogRepository(db *gorm.DB) ActionLogRepository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Append(ctx context.Context, entry *models.ActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *actionLogRepository) ListByItem(ctx context.Context, orderItemID uint) ([]models.ActionLog, error) {
	var entries []models.ActionLog
	err := r.db.WithContext(ctx).Where("order_item_id = ?", orderItemID).Order("id").Find(&entries).Error
	return entries, err
}
