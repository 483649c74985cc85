package services

import (
	"context"
	"fmt"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"time"

	"github.com/sirupsen/logrus"
)

// TransitionResult is the outcome of one recorded status transition.
type TransitionResult struct {
	Status         models.Status        `json:"status"`
	PreviousStatus models.Status        `json:"previous_status"`
	StatusInfo     models.OrderTracking `json:"status_info"`
	Charge         *Reconciliation      `json:"charge"`
}

// AllowedTransitions lists where an item can go next.
type AllowedTransitions struct {
	CurrentStatus models.Status   `json:"current_status"`
	NextStatuses  []models.Status `json:"next_statuses"`
}

type StatusLedgerDeps struct {
	UnitOfWork repository.UnitOfWork
	// Ledger is read after commit to refresh the cached payment summary.
	Ledger     repository.LedgerStore
	Reconciler *BillingReconciler
	Locker     ItemLocker
	Notifier   NotificationTrigger
	Audit      AuditLog
	Cache      SummaryCache
	Logger     logrus.FieldLogger
	Clock      func() time.Time
}

// StatusLedger appends status events and runs the automatic-charge path in the same unit of work.
type StatusLedger struct {
	runner     itemRunner
	reconciler *BillingReconciler
	effects    sideEffects
	clock      func() time.Time
}

func NewStatusLedger(deps StatusLedgerDeps) (*StatusLedger, error) {
	if deps.UnitOfWork == nil {
		return nil, fmt.Errorf("status ledger: unit of work is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	reconciler := deps.Reconciler
	if reconciler == nil {
		reconciler = NewBillingReconciler(clock)
	}
	return &StatusLedger{
		runner:     newItemRunner(deps.UnitOfWork, deps.Locker, deps.Logger),
		reconciler: reconciler,
		effects:    newSideEffects(deps.Notifier, deps.Audit, deps.Cache, deps.Ledger, deps.Logger),
		clock:      func() time.Time { return clock().UTC() },
	}, nil
}

// RecordTransition validates newStatus against the item's current status, appends the event,
// updates the cached status and applies any automatic charge. Validation failures write nothing.
func (l *StatusLedger) RecordTransition(ctx context.Context, orderItemID uint, newStatus models.Status, notes string, actor Actor) (*TransitionResult, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}

	var (
		result   *TransitionResult
		snapshot models.OrderItem
	)
	err := l.runner.run(ctx, orderItemID, func(ctx context.Context, repos repository.Repositories, item *models.OrderItem) error {
		current, err := CurrentStatus(ctx, repos.Statuses, item)
		if err != nil {
			return err
		}
		if err := ValidateTransition(item.ServiceType, current, newStatus); err != nil {
			return err
		}

		event := &models.OrderTracking{
			OrderItemID: item.ID,
			Status:      newStatus,
			Notes:       notes,
			UpdatedBy:   actor.userRef(),
			ActorRole:   actor.Role,
			CreatedAt:   l.clock(),
		}
		if err := repos.Statuses.Append(ctx, event); err != nil {
			return err
		}
		if err := repos.Items.UpdateCurrentStatus(ctx, item.ID, newStatus); err != nil {
			return err
		}
		item.CurrentStatus = newStatus

		charge, err := l.reconciler.ApplyAutomaticCharge(ctx, repos, item, newStatus, actor)
		if err != nil {
			return err
		}

		result = &TransitionResult{
			Status:         newStatus,
			PreviousStatus: current,
			StatusInfo:     *event,
			Charge:         charge,
		}
		snapshot = *item
		return nil
	})
	if err != nil {
		return nil, classify("record status transition", err)
	}

	l.effects.statusRecorded(ctx, &snapshot, result, notes, actor)
	return result, nil
}

// CurrentStatus is the status of the latest tracking event, or the initial status when none exists.
func CurrentStatus(ctx context.Context, statuses repository.StatusStore, item *models.OrderItem) (models.Status, error) {
	latest, err := statuses.Latest(ctx, item.ID)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return InitialStatus(item.ServiceType), nil
	}
	return latest.Status, nil
}

// DeclinePrice records that the customer turned down the quoted price. The item leaves the
// flow at price_declined, which is terminal. Only an item still awaiting review, at its
// initial status and with nothing collected can be declined.
func (l *StatusLedger) DeclinePrice(ctx context.Context, orderItemID uint, notes string, actor Actor) (*TransitionResult, error) {
	var (
		result   *TransitionResult
		snapshot models.OrderItem
		previous models.ApprovalStatus
	)
	err := l.runner.run(ctx, orderItemID, func(ctx context.Context, repos repository.Repositories, item *models.OrderItem) error {
		if item.ApprovalStatus != models.ApprovalPendingReview {
			return fmt.Errorf("%w: price already %s", ErrPriceLocked, item.ApprovalStatus)
		}
		current, err := CurrentStatus(ctx, repos.Statuses, item)
		if err != nil {
			return err
		}
		if current != InitialStatus(item.ServiceType) {
			return &InvalidTransitionError{
				ServiceType: item.ServiceType,
				From:        current,
				To:          models.StatusPriceDeclined,
				Allowed:     NextStatuses(item.ServiceType, current),
			}
		}
		totalPaid, err := repos.Ledger.TotalPaid(ctx, item.ID)
		if err != nil {
			return err
		}
		if totalPaid.IsPositive() {
			return ErrPriceLocked
		}

		if err := repos.Items.UpdatePrice(ctx, item.ID, item.FinalPrice, models.ApprovalPriceDeclined); err != nil {
			return err
		}
		previous = item.ApprovalStatus
		item.ApprovalStatus = models.ApprovalPriceDeclined

		event := &models.OrderTracking{
			OrderItemID: item.ID,
			Status:      models.StatusPriceDeclined,
			Notes:       notes,
			UpdatedBy:   actor.userRef(),
			ActorRole:   actor.Role,
			CreatedAt:   l.clock(),
		}
		if err := repos.Statuses.Append(ctx, event); err != nil {
			return err
		}
		if err := repos.Items.UpdateCurrentStatus(ctx, item.ID, models.StatusPriceDeclined); err != nil {
			return err
		}
		item.CurrentStatus = models.StatusPriceDeclined

		charge, err := l.reconciler.Recompute(ctx, repos, item, totalPaid)
		if err != nil {
			return err
		}
		result = &TransitionResult{
			Status:         models.StatusPriceDeclined,
			PreviousStatus: current,
			StatusInfo:     *event,
			Charge:         charge,
		}
		snapshot = *item
		return nil
	})
	if err != nil {
		return nil, classify("decline price", err)
	}

	l.effects.priceDeclined(ctx, &snapshot, previous, notes, actor)
	return result, nil
}
