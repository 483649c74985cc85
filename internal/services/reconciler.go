package services

import (
	"context"
	"fmt"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"time"

	"github.com/shopspring/decimal"
)

const automaticPaymentMethod = "system"

// Reconciliation is the ledger state after one reconciler pass over an item.
type Reconciliation struct {
	// Transaction is nil when the pass appended nothing.
	Transaction           *models.TransactionLog `json:"transaction,omitempty"`
	AmountCharged         decimal.Decimal        `json:"amount_charged"`
	TotalPaid             decimal.Decimal        `json:"total_paid"`
	Remaining             decimal.Decimal        `json:"remaining"`
	PreviousPaymentStatus models.PaymentStatus   `json:"previous_payment_status"`
	PaymentStatus         models.PaymentStatus   `json:"payment_status"`
}

// BillingReconciler owns every write to the payment ledger and to order_items.payment_status.
// All methods expect to run inside a repository.UnitOfWork holding the item lock, so the
// read of total paid and the append that follows see no interleaved writes.
type BillingReconciler struct {
	clock func() time.Time
}

func NewBillingReconciler(clock func() time.Time) *BillingReconciler {
	if clock == nil {
		clock = time.Now
	}
	return &BillingReconciler{clock: func() time.Time { return clock().UTC() }}
}

// ApplyAutomaticCharge charges whatever newStatus makes due and then re-derives the
// payment status. Nothing is appended when the target is already met.
func (b *BillingReconciler) ApplyAutomaticCharge(ctx context.Context, repos repository.Repositories, item *models.OrderItem, newStatus models.Status, actor Actor) (*Reconciliation, error) {
	totalPaid, err := repos.Ledger.TotalPaid(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	plan, ok := PlanAutomaticCharge(item.ServiceType, newStatus, item.FinalPrice, totalPaid)
	if !ok || !plan.Amount.IsPositive() {
		return b.Recompute(ctx, repos, item, totalPaid)
	}

	notes := fmt.Sprintf("automatic %s on status %s", plan.Type, newStatus)
	return b.appendEntry(ctx, repos, item, totalPaid, ledgerEntry{
		txType:    plan.Type,
		amount:    plan.Amount,
		method:    automaticPaymentMethod,
		notes:     notes,
		createdBy: actor.userRef(),
		role:      models.ActorSystem,
	})
}

// ApplyManualPayment appends a payment of amount, or fails without writing anything when
// the amount is invalid or would exceed the final price.
func (b *BillingReconciler) ApplyManualPayment(ctx context.Context, repos repository.Repositories, item *models.OrderItem, amount decimal.Decimal, method, notes string, actor Actor) (*Reconciliation, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	totalPaid, err := repos.Ledger.TotalPaid(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	role := actor.Role
	if !role.Valid() {
		role = models.ActorUser
	}
	return b.appendEntry(ctx, repos, item, totalPaid, ledgerEntry{
		txType:    models.TransactionPayment,
		amount:    amount,
		method:    method,
		notes:     notes,
		createdBy: actor.userRef(),
		role:      role,
	})
}

// Recompute writes the derived payment status for totalPaid without touching the ledger.
func (b *BillingReconciler) Recompute(ctx context.Context, repos repository.Repositories, item *models.OrderItem, totalPaid decimal.Decimal) (*Reconciliation, error) {
	previous := item.PaymentStatus
	next := DerivePaymentStatus(item.ServiceType, item.FinalPrice, totalPaid)
	if next != previous {
		if err := repos.Items.UpdatePaymentStatus(ctx, item.ID, next); err != nil {
			return nil, err
		}
		item.PaymentStatus = next
	}
	return &Reconciliation{
		AmountCharged:         decimal.Zero,
		TotalPaid:             totalPaid,
		Remaining:             RemainingBalance(item.FinalPrice, totalPaid),
		PreviousPaymentStatus: previous,
		PaymentStatus:         next,
	}, nil
}

type ledgerEntry struct {
	txType    models.TransactionType
	amount    decimal.Decimal
	method    string
	notes     string
	createdBy *uint
	role      models.ActorRole
}

func (b *BillingReconciler) appendEntry(ctx context.Context, repos repository.Repositories, item *models.OrderItem, totalPaid decimal.Decimal, e ledgerEntry) (*Reconciliation, error) {
	newTotal := totalPaid.Add(e.amount)
	if newTotal.GreaterThan(item.FinalPrice) {
		return nil, &OverpaymentError{
			Attempted: e.amount,
			Remaining: RemainingBalance(item.FinalPrice, totalPaid),
		}
	}

	previous := item.PaymentStatus
	next := DerivePaymentStatus(item.ServiceType, item.FinalPrice, newTotal)

	entry := &models.TransactionLog{
		OrderItemID:           item.ID,
		UserID:                item.OwnerID(),
		TransactionType:       e.txType,
		Amount:                e.amount,
		PreviousPaymentStatus: previous,
		NewPaymentStatus:      next,
		PaymentMethod:         e.method,
		Notes:                 e.notes,
		CreatedBy:             e.createdBy,
		ActorRole:             e.role,
		CreatedAt:             b.clock(),
	}
	if err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	if err := repos.Items.UpdatePaymentStatus(ctx, item.ID, next); err != nil {
		return nil, err
	}
	item.PaymentStatus = next

	return &Reconciliation{
		Transaction:           entry,
		AmountCharged:         e.amount,
		TotalPaid:             newTotal,
		Remaining:             RemainingBalance(item.FinalPrice, newTotal),
		PreviousPaymentStatus: previous,
		PaymentStatus:         next,
	}, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	return nil
}
