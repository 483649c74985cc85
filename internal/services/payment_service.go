package services

import (
	"context"
	"fmt"
	"strings"
	"tailor_shop/internal/logger"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxPaymentMethodLen = 32

// PaymentResult is returned to callers of a manual payment.
type PaymentResult struct {
	AmountCharged decimal.Decimal        `json:"amount_charged"`
	TotalPaid     decimal.Decimal        `json:"total_paid"`
	Remaining     decimal.Decimal        `json:"remaining"`
	PaymentStatus models.PaymentStatus   `json:"payment_status"`
	Transaction   *models.TransactionLog `json:"transaction"`
}

type PaymentServiceDeps struct {
	UnitOfWork repository.UnitOfWork
	Ledger     repository.LedgerStore
	Reconciler *BillingReconciler
	Locker     ItemLocker
	Cache      SummaryCache
	Notifier   NotificationTrigger
	Audit      AuditLog
	Logger     logrus.FieldLogger
}

// PaymentService records manual payments and serves ledger reads.
type PaymentService struct {
	runner     itemRunner
	ledger     repository.LedgerStore
	reconciler *BillingReconciler
	cache      SummaryCache
	effects    sideEffects
}

func NewPaymentService(deps PaymentServiceDeps) (*PaymentService, error) {
	if deps.UnitOfWork == nil {
		return nil, fmt.Errorf("payment service: unit of work is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("payment service: ledger store is required")
	}
	reconciler := deps.Reconciler
	if reconciler == nil {
		reconciler = NewBillingReconciler(nil)
	}
	return &PaymentService{
		runner:     newItemRunner(deps.UnitOfWork, deps.Locker, deps.Logger),
		ledger:     deps.Ledger,
		reconciler: reconciler,
		cache:      deps.Cache,
		effects:    newSideEffects(deps.Notifier, deps.Audit, deps.Cache, deps.Ledger, deps.Logger),
	}, nil
}

func (s *PaymentService) RecordPayment(ctx context.Context, orderItemID uint, amount decimal.Decimal, method, notes string, actor Actor) (*PaymentResult, error) {
	method = strings.TrimSpace(method)
	if method == "" || len(method) > maxPaymentMethodLen {
		return nil, fmt.Errorf("%w: payment method is required and at most %d characters", ErrInvalidInput, maxPaymentMethodLen)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var (
		rec      *Reconciliation
		snapshot models.OrderItem
	)
	err := s.runner.run(ctx, orderItemID, func(ctx context.Context, repos repository.Repositories, item *models.OrderItem) error {
		var err error
		rec, err = s.reconciler.ApplyManualPayment(ctx, repos, item, amount, method, strings.TrimSpace(notes), actor)
		if err != nil {
			return err
		}
		snapshot = *item
		return nil
	})
	if err != nil {
		return nil, classify("record payment", err)
	}

	s.effects.paymentRecorded(ctx, &snapshot, rec, actor)
	return &PaymentResult{
		AmountCharged: rec.AmountCharged,
		TotalPaid:     rec.TotalPaid,
		Remaining:     rec.Remaining,
		PaymentStatus: rec.PaymentStatus,
		Transaction:   rec.Transaction,
	}, nil
}

// PaymentSummary reads through the cache when one is configured.
func (s *PaymentService) PaymentSummary(ctx context.Context, orderItemID uint) (*models.PaymentSummary, error) {
	if s.cache != nil {
		summary, ok, err := s.cache.GetPaymentSummary(ctx, orderItemID)
		if err != nil {
			logger.LogError(s.effects.log, "services", "PaymentSummary", "payment summary cache read failed", orderItemID, err)
		} else if ok {
			return summary, nil
		}
	}

	summary, err := s.ledger.Summary(ctx, orderItemID)
	if err != nil {
		return nil, classify("payment summary", err)
	}

	if s.cache != nil {
		if err := s.cache.SetPaymentSummary(ctx, orderItemID, summary); err != nil {
			logger.LogError(s.effects.log, "services", "PaymentSummary", "payment summary cache write failed", orderItemID, err)
		}
	}
	return summary, nil
}

func (s *PaymentService) Transactions(ctx context.Context, orderItemID uint) ([]models.TransactionLog, error) {
	entries, err := s.ledger.ListByItem(ctx, orderItemID)
	if err != nil {
		return nil, classify("list transactions", err)
	}
	return entries, nil
}
