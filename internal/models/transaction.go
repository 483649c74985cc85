package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLog is one append-only payment ledger entry.
type TransactionLog struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	OrderItemID           uint            `json:"order_item_id" gorm:"not null;index"`
	UserID                uint            `json:"user_id" gorm:"index"`
	TransactionType       TransactionType `json:"transaction_type" gorm:"type:varchar(32);not null"`
	Amount                decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	PreviousPaymentStatus PaymentStatus   `json:"previous_payment_status" gorm:"type:varchar(32)"`
	NewPaymentStatus      PaymentStatus   `json:"new_payment_status" gorm:"type:varchar(32);not null"`
	PaymentMethod         string          `json:"payment_method" gorm:"type:varchar(32)"`
	Notes                 string          `json:"notes" gorm:"type:text"`
	CreatedBy             *uint           `json:"created_by"`
	ActorRole             ActorRole       `json:"actor_role" gorm:"type:varchar(16);not null"`
	CreatedAt             time.Time       `json:"created_at"`
}

func (TransactionLog) TableName() string {
	return "transaction_logs"
}

type PaymentSummary struct {
	TotalTransactions   int64           `json:"total_transactions"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	LastTransactionDate *time.Time      `json:"last_transaction_date"`
}
