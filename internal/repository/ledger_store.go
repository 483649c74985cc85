package repository

import (
	"context"
	"tailor_shop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerStore is the append-only transaction_logs ledger. It has no update or delete.
type LedgerStore interface {
	Append(ctx context.Context, entry *models.TransactionLog) error
	// TotalPaid sums payment, down_payment and final_payment entries.
	TotalPaid(ctx context.Context, orderItemID uint) (decimal.Decimal, error)
	Summary(ctx context.Context, orderItemID uint) (*models.PaymentSummary, error)
	ListByItem(ctx context.Context, orderItemID uint) ([]models.TransactionLog, error)
}

type ledgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &ledgerStore{db: db}
}

func (s *ledgerStore) Append(ctx context.Context, entry *models.TransactionLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *ledgerStore) TotalPaid(ctx context.Context, orderItemID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.TransactionLog{}).
		Where("order_item_id = ? AND transaction_type IN ?", orderItemID, models.CollectedTypes).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

func (s *ledgerStore) Summary(ctx context.Context, orderItemID uint) (*models.PaymentSummary, error) {
	entries, err := s.ListByItem(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	return SummarizeLedger(entries), nil
}

func (s *ledgerStore) ListByItem(ctx context.Context, orderItemID uint) ([]models.TransactionLog, error) {
	var entries []models.TransactionLog
	err := s.db.WithContext(ctx).
		Where("order_item_id = ?", orderItemID).
		Order("created_at").Order("id").
		Find(&entries).Error
	return entries, err
}

// SummarizeLedger folds ledger entries into a payment summary.
func SummarizeLedger(entries []models.TransactionLog) *models.PaymentSummary {
	summary := &models.PaymentSummary{TotalAmount: decimal.Zero}
	for i := range entries {
		summary.TotalTransactions++
		summary.TotalAmount = summary.TotalAmount.Add(entries[i].Amount)
		created := entries[i].CreatedAt
		if summary.LastTransactionDate == nil || created.After(*summary.LastTransactionDate) {
			summary.LastTransactionDate = &created
		}
	}
	return summary
}
