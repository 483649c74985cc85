package services

import (
	"context"
	"fmt"
	"strings"
	"tailor_shop/internal/logger"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"

	"github.com/sirupsen/logrus"
)

// notifiedStatuses are the statuses customers hear about.
var notifiedStatuses = map[models.Status]bool{
	models.StatusInProgress:    true,
	models.StatusReadyToPickup: true,
	models.StatusCompleted:     true,
	models.StatusRented:        true,
	models.StatusReturned:      true,
}

// itemRunner takes the optional cross-process lock, then the database row lock.
type itemRunner struct {
	uow    repository.UnitOfWork
	locker ItemLocker
	log    logrus.FieldLogger
}

func newItemRunner(uow repository.UnitOfWork, locker ItemLocker, log logrus.FieldLogger) itemRunner {
	if log == nil {
		log = logger.Discard()
	}
	return itemRunner{uow: uow, locker: locker, log: log}
}

func (r itemRunner) run(ctx context.Context, orderItemID uint, fn repository.ItemWork) error {
	if r.locker != nil {
		release, err := r.locker.Lock(ctx, orderItemID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrItemBusy, err)
		}
		defer func() {
			if err := release(); err != nil {
				logger.LogError(r.log, "services", "itemRunner.run", "item lock release failed", orderItemID, err)
			}
		}()
	}
	return r.uow.RunForItem(ctx, orderItemID, fn)
}

// sideEffects runs after commit. Nothing here can fail the operation that triggered it.
type sideEffects struct {
	notifier NotificationTrigger
	audit    AuditLog
	cache    SummaryCache
	ledger   repository.LedgerStore
	log      logrus.FieldLogger
}

func newSideEffects(notifier NotificationTrigger, audit AuditLog, cache SummaryCache, ledger repository.LedgerStore, log logrus.FieldLogger) sideEffects {
	if log == nil {
		log = logger.Discard()
	}
	return sideEffects{notifier: notifier, audit: audit, cache: cache, ledger: ledger, log: log}
}

func (e sideEffects) statusRecorded(ctx context.Context, item *models.OrderItem, res *TransitionResult, notes string, actor Actor) {
	ctx = context.WithoutCancel(ctx)

	e.logAction(ctx, item.ID, actor, models.ActionStatusUpdate, string(res.PreviousStatus), string(res.Status), notes)
	if notifiedStatuses[res.Status] && e.notifier != nil {
		if err := e.notifier.OnStatusChanged(ctx, item.OwnerID(), item.ID, res.Status, notes); err != nil {
			logger.LogError(e.log, "services", "statusRecorded", "status notification failed", item.ID, err)
		}
	}

	charge := res.Charge
	if charge == nil || charge.Transaction == nil {
		return
	}
	e.refreshSummary(ctx, item.ID)
	tx := charge.Transaction
	e.logAction(ctx, item.ID, Actor{ID: actor.ID, Role: models.ActorSystem}, models.ActionAutoCharge,
		string(charge.PreviousPaymentStatus), string(charge.PaymentStatus),
		fmt.Sprintf("%s of %s charged on status %s", tx.TransactionType, tx.Amount.StringFixed(2), res.Status))
	e.notifyPayment(ctx, item, tx)
}

func (e sideEffects) paymentRecorded(ctx context.Context, item *models.OrderItem, rec *Reconciliation, actor Actor) {
	ctx = context.WithoutCancel(ctx)

	e.refreshSummary(ctx, item.ID)
	tx := rec.Transaction
	e.logAction(ctx, item.ID, actor, models.ActionPaymentRecorded,
		string(rec.PreviousPaymentStatus), string(rec.PaymentStatus),
		strings.TrimSpace(fmt.Sprintf("%s payment of %s, remaining %s. %s", tx.PaymentMethod, tx.Amount.StringFixed(2), rec.Remaining.StringFixed(2), tx.Notes)))
	e.notifyPayment(ctx, item, tx)
}

func (e sideEffects) priceConfirmed(ctx context.Context, item *models.OrderItem, previous models.ApprovalStatus, notes string, actor Actor) {
	ctx = context.WithoutCancel(ctx)

	e.logAction(ctx, item.ID, actor, models.ActionPriceConfirmed, string(previous), string(item.ApprovalStatus),
		strings.TrimSpace(fmt.Sprintf("final price %s. %s", item.FinalPrice.StringFixed(2), notes)))
	if e.notifier != nil {
		if err := e.notifier.OnStatusAccepted(ctx, item.OwnerID(), item.ID, item.ServiceType); err != nil {
			logger.LogError(e.log, "services", "priceConfirmed", "accepted notification failed", item.ID, err)
		}
	}
}

func (e sideEffects) priceDeclined(ctx context.Context, item *models.OrderItem, previous models.ApprovalStatus, notes string, actor Actor) {
	ctx = context.WithoutCancel(ctx)

	e.logAction(ctx, item.ID, actor, models.ActionPriceDeclined, string(previous), string(item.ApprovalStatus), notes)
	if e.notifier != nil {
		if err := e.notifier.OnStatusChanged(ctx, item.OwnerID(), item.ID, models.StatusPriceDeclined, notes); err != nil {
			logger.LogError(e.log, "services", "priceDeclined", "declined notification failed", item.ID, err)
		}
	}
}

func (e sideEffects) notifyPayment(ctx context.Context, item *models.OrderItem, tx *models.TransactionLog) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.OnPaymentRecorded(ctx, item.OwnerID(), item.ID, tx.Amount, tx.PaymentMethod, item.ServiceType); err != nil {
		logger.LogError(e.log, "services", "notifyPayment", "payment notification failed", item.ID, err)
	}
}

func (e sideEffects) logAction(ctx context.Context, orderItemID uint, actor Actor, actionType, previous, next, notes string) {
	if e.audit == nil {
		return
	}
	if err := e.audit.LogAction(ctx, orderItemID, actor.ID, actionType, actor.Role, previous, next, notes); err != nil {
		logger.LogError(e.log, "services", "logAction", "audit log write failed", actionType, err)
	}
}

// refreshSummary stores the committed ledger summary. A reader that loaded an older summary
// cannot overwrite it afterwards, since the cache keeps the entry covering more transactions.
// When the fresh summary cannot be written the entry is dropped instead.
func (e sideEffects) refreshSummary(ctx context.Context, orderItemID uint) {
	if e.cache == nil {
		return
	}
	if e.ledger != nil {
		summary, err := e.ledger.Summary(ctx, orderItemID)
		if err == nil {
			err = e.cache.SetPaymentSummary(ctx, orderItemID, summary)
		}
		if err == nil {
			return
		}
		logger.LogError(e.log, "services", "refreshSummary", "payment summary cache refresh failed", orderItemID, err)
	}
	if err := e.cache.InvalidatePaymentSummary(ctx, orderItemID); err != nil {
		logger.LogError(e.log, "services", "refreshSummary", "payment summary cache invalidation failed", orderItemID, err)
	}
}
