package models

import "time"

// ActionLog is the human-readable audit trail of lifecycle and billing decisions.
type ActionLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrderItemID    *uint     `json:"order_item_id" gorm:"index"`
	UserID         uint      `json:"user_id" gorm:"index"`
	ActionType     string    `json:"action_type" gorm:"type:varchar(64);not null"`
	ActionBy       ActorRole `json:"action_by" gorm:"type:varchar(16);not null"`
	PreviousStatus string    `json:"previous_status" gorm:"type:varchar(32)"`
	NewStatus      string    `json:"new_status" gorm:"type:varchar(32)"`
	Reason         string    `json:"reason" gorm:"type:text"`
	Notes          string    `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ActionLog) TableName() string {
	return "action_logs"
}

const (
	ActionStatusUpdate    = "status_update"
	ActionPaymentRecorded = "payment_recorded"
	ActionAutoCharge      = "automatic_charge"
	ActionPriceConfirmed  = "price_confirmed"
	ActionPriceDeclined   = "price_declined"
)
