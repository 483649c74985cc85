package services

import (
	"context"
	"tailor_shop/internal/models"

	"github.com/shopspring/decimal"
)

// Actor identifies who asked for an operation.
type Actor struct {
	ID   uint
	Role models.ActorRole
}

// SystemActor is used for writes the service makes on its own behalf.
var SystemActor = Actor{Role: models.ActorSystem}

func (a Actor) IsAdmin() bool {
	return a.Role == models.ActorAdmin || a.Role == models.ActorSystem
}

func (a Actor) userRef() *uint {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}

// NotificationTrigger is told about customer-visible lifecycle and payment events.
// Implementations may fail; callers log and continue.
type NotificationTrigger interface {
	OnStatusAccepted(ctx context.Context, userID, orderItemID uint, serviceType models.ServiceType) error
	OnStatusChanged(ctx context.Context, userID, orderItemID uint, status models.Status, notes string) error
	OnPaymentRecorded(ctx context.Context, userID, orderItemID uint, amount decimal.Decimal, method string, serviceType models.ServiceType) error
}

// AuditLog receives a human-readable record of each reconciliation decision.
// An orderItemID of 0 records an action that is not tied to an item.
type AuditLog interface {
	LogAction(ctx context.Context, orderItemID, userID uint, actionType string, actorRole models.ActorRole, previousStatus, newStatus, notes string) error
}

// ItemLocker serialises work on one order item across processes. release reports a lock
// that was no longer held, e.g. because it expired during the work.
type ItemLocker interface {
	Lock(ctx context.Context, orderItemID uint) (release func() error, err error)
}

// SummaryCache stores payment summaries for fast reads. A miss returns ok=false.
// SetPaymentSummary never replaces an entry that covers more transactions than summary,
// so a summary read before a ledger write cannot shadow the one written after it.
type SummaryCache interface {
	GetPaymentSummary(ctx context.Context, orderItemID uint) (summary *models.PaymentSummary, ok bool, err error)
	SetPaymentSummary(ctx context.Context, orderItemID uint, summary *models.PaymentSummary) error
	InvalidatePaymentSummary(ctx context.Context, orderItemID uint) error
}
