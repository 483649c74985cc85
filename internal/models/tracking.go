package models

import "time"

// OrderTracking is one append-only status event of an order item.
type OrderTracking struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderItemID uint      `json:"order_item_id" gorm:"not null;index:idx_tracking_item_created,priority:1"`
	Status      Status    `json:"status" gorm:"type:varchar(32);not null"`
	Notes       string    `json:"notes" gorm:"type:text"`
	UpdatedBy   *uint     `json:"updated_by"`
	ActorRole   ActorRole `json:"actor_role" gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_tracking_item_created,priority:2"`
}

func (OrderTracking) TableName() string {
	return "order_tracking"
}
