package models

import "time"

type Notification struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	OrderItemID  uint      `json:"order_item_id" gorm:"index"`
	Kind         string    `json:"kind" gorm:"type:varchar(32);not null"` // accepted, status_changed, payment
	Title        string    `json:"title" gorm:"not null"`
	Message      string    `json:"message" gorm:"type:text"`
	IsRead       bool      `json:"is_read" gorm:"default:false"`
	WhatsAppSent bool      `json:"whatsapp_sent" gorm:"column:whatsapp_sent;default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	NotificationAccepted      = "accepted"
	NotificationStatusChanged = "status_changed"
	NotificationPayment       = "payment"
)
