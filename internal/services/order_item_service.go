package services

import (
	"context"
	"fmt"
	"strings"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderItemService is the boundary the HTTP layer talks to. It applies the owner-or-admin
// rule before delegating to the ledgers.
type OrderItemService interface {
	GetOrderItem(ctx context.Context, orderItemID uint, actor Actor) (*OrderItemView, error)
	RecordStatusTransition(ctx context.Context, cmd StatusTransitionCommand) (*TransitionResult, error)
	GetAllowedTransitions(ctx context.Context, orderItemID uint, actor Actor) (*AllowedTransitions, error)
	ListStatusHistory(ctx context.Context, orderItemID uint, actor Actor) ([]models.OrderTracking, error)
	RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*PaymentResult, error)
	GetPaymentSummary(ctx context.Context, orderItemID uint, actor Actor) (*models.PaymentSummary, error)
	ListTransactions(ctx context.Context, orderItemID uint, actor Actor) ([]models.TransactionLog, error)
	ConfirmPrice(ctx context.Context, cmd ConfirmPriceCommand) (*models.OrderItem, error)
	DeclinePrice(ctx context.Context, cmd DeclinePriceCommand) (*TransitionResult, error)
}

type StatusTransitionCommand struct {
	OrderItemID uint
	Status      models.Status
	Notes       string
	Actor       Actor
}

type RecordPaymentCommand struct {
	OrderItemID   uint
	Amount        decimal.Decimal
	PaymentMethod string
	Notes         string
	Actor         Actor
}

type ConfirmPriceCommand struct {
	OrderItemID uint
	FinalPrice  decimal.Decimal
	Notes       string
	Actor       Actor
}

type DeclinePriceCommand struct {
	OrderItemID uint
	Notes       string
	Actor       Actor
}

// OrderItemView is an order item with its service payload decoded.
type OrderItemView struct {
	Item    *models.OrderItem     `json:"item"`
	Details models.ServiceDetails `json:"details"`
}

type OrderItemServiceDeps struct {
	Items      repository.OrderItemRepository
	Statuses   repository.StatusStore
	Ledger     repository.LedgerStore
	UnitOfWork repository.UnitOfWork
	Locker     ItemLocker
	Cache      SummaryCache
	Notifier   NotificationTrigger
	Audit      AuditLog
	Logger     logrus.FieldLogger
	Clock      func() time.Time
}

type orderItemService struct {
	items      repository.OrderItemRepository
	statuses   repository.StatusStore
	runner     itemRunner
	reconciler *BillingReconciler
	statusLog  *StatusLedger
	payments   *PaymentService
	effects    sideEffects
}

func NewOrderItemService(deps OrderItemServiceDeps) (OrderItemService, error) {
	if deps.Items == nil || deps.Statuses == nil || deps.Ledger == nil {
		return nil, fmt.Errorf("order item service: repositories are required")
	}
	if deps.UnitOfWork == nil {
		return nil, fmt.Errorf("order item service: unit of work is required")
	}

	reconciler := NewBillingReconciler(deps.Clock)
	statusLog, err := NewStatusLedger(StatusLedgerDeps{
		UnitOfWork: deps.UnitOfWork,
		Ledger:     deps.Ledger,
		Reconciler: reconciler,
		Locker:     deps.Locker,
		Notifier:   deps.Notifier,
		Audit:      deps.Audit,
		Cache:      deps.Cache,
		Logger:     deps.Logger,
		Clock:      deps.Clock,
	})
	if err != nil {
		return nil, err
	}
	payments, err := NewPaymentService(PaymentServiceDeps{
		UnitOfWork: deps.UnitOfWork,
		Ledger:     deps.Ledger,
		Reconciler: reconciler,
		Locker:     deps.Locker,
		Cache:      deps.Cache,
		Notifier:   deps.Notifier,
		Audit:      deps.Audit,
		Logger:     deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &orderItemService{
		items:      deps.Items,
		statuses:   deps.Statuses,
		runner:     newItemRunner(deps.UnitOfWork, deps.Locker, deps.Logger),
		reconciler: reconciler,
		statusLog:  statusLog,
		payments:   payments,
		effects:    newSideEffects(deps.Notifier, deps.Audit, deps.Cache, deps.Ledger, deps.Logger),
	}, nil
}

func (s *orderItemService) GetOrderItem(ctx context.Context, orderItemID uint, actor Actor) (*OrderItemView, error) {
	item, err := s.authorize(ctx, orderItemID, actor)
	if err != nil {
		return nil, err
	}
	details, err := item.Details()
	if err != nil {
		s.effects.log.WithField("order_item_id", item.ID).WithError(err).Warn("order item has unreadable service details")
	}
	return &OrderItemView{Item: item, Details: details}, nil
}

func (s *orderItemService) RecordStatusTransition(ctx context.Context, cmd StatusTransitionCommand) (*TransitionResult, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.statusLog.RecordTransition(ctx, cmd.OrderItemID, cmd.Status, strings.TrimSpace(cmd.Notes), cmd.Actor)
}

func (s *orderItemService) GetAllowedTransitions(ctx context.Context, orderItemID uint, actor Actor) (*AllowedTransitions, error) {
	item, err := s.authorize(ctx, orderItemID, actor)
	if err != nil {
		return nil, err
	}
	current, err := CurrentStatus(ctx, s.statuses, item)
	if err != nil {
		return nil, classify("allowed transitions", err)
	}
	return &AllowedTransitions{
		CurrentStatus: current,
		NextStatuses:  NextStatuses(item.ServiceType, current),
	}, nil
}

func (s *orderItemService) ListStatusHistory(ctx context.Context, orderItemID uint, actor Actor) ([]models.OrderTracking, error) {
	if _, err := s.authorize(ctx, orderItemID, actor); err != nil {
		return nil, err
	}
	events, err := s.statuses.ListByItem(ctx, orderItemID)
	if err != nil {
		return nil, classify("status history", err)
	}
	return events, nil
}

func (s *orderItemService) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*PaymentResult, error) {
	if _, err := s.authorize(ctx, cmd.OrderItemID, cmd.Actor); err != nil {
		return nil, err
	}
	return s.payments.RecordPayment(ctx, cmd.OrderItemID, cmd.Amount, cmd.PaymentMethod, cmd.Notes, cmd.Actor)
}

func (s *orderItemService) GetPaymentSummary(ctx context.Context, orderItemID uint, actor Actor) (*models.PaymentSummary, error) {
	if _, err := s.authorize(ctx, orderItemID, actor); err != nil {
		return nil, err
	}
	return s.payments.PaymentSummary(ctx, orderItemID)
}

func (s *orderItemService) ListTransactions(ctx context.Context, orderItemID uint, actor Actor) ([]models.TransactionLog, error) {
	if _, err := s.authorize(ctx, orderItemID, actor); err != nil {
		return nil, err
	}
	return s.payments.Transactions(ctx, orderItemID)
}

// ConfirmPrice is the admin price-confirmation step. The price can be confirmed once and
// never after money has been collected against the item.
func (s *orderItemService) ConfirmPrice(ctx context.Context, cmd ConfirmPriceCommand) (*models.OrderItem, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !cmd.FinalPrice.IsPositive() || !cmd.FinalPrice.Equal(cmd.FinalPrice.Round(2)) {
		return nil, fmt.Errorf("%w: final price must be positive with at most two decimal places", ErrInvalidInput)
	}

	var (
		snapshot models.OrderItem
		previous models.ApprovalStatus
	)
	err := s.runner.run(ctx, cmd.OrderItemID, func(ctx context.Context, repos repository.Repositories, item *models.OrderItem) error {
		if item.ApprovalStatus != models.ApprovalPendingReview {
			return fmt.Errorf("%w: price already %s", ErrPriceLocked, item.ApprovalStatus)
		}
		totalPaid, err := repos.Ledger.TotalPaid(ctx, item.ID)
		if err != nil {
			return err
		}
		if totalPaid.IsPositive() {
			return ErrPriceLocked
		}

		if err := repos.Items.UpdatePrice(ctx, item.ID, cmd.FinalPrice, models.ApprovalAccepted); err != nil {
			return err
		}
		previous = item.ApprovalStatus
		item.FinalPrice = cmd.FinalPrice
		item.ApprovalStatus = models.ApprovalAccepted

		if _, err := s.reconciler.Recompute(ctx, repos, item, totalPaid); err != nil {
			return err
		}
		snapshot = *item
		return nil
	})
	if err != nil {
		return nil, classify("confirm price", err)
	}

	s.effects.priceConfirmed(ctx, &snapshot, previous, strings.TrimSpace(cmd.Notes), cmd.Actor)
	return &snapshot, nil
}

// DeclinePrice is the admin step for a customer who refused the quote.
func (s *orderItemService) DeclinePrice(ctx context.Context, cmd DeclinePriceCommand) (*TransitionResult, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.statusLog.DeclinePrice(ctx, cmd.OrderItemID, strings.TrimSpace(cmd.Notes), cmd.Actor)
}

// authorize loads the item and lets through admins and the user who placed the order.
func (s *orderItemService) authorize(ctx context.Context, orderItemID uint, actor Actor) (*models.OrderItem, error) {
	item, err := s.items.GetByID(ctx, orderItemID)
	if err != nil {
		return nil, classify("load order item", err)
	}
	if actor.IsAdmin() {
		return item, nil
	}
	if actor.ID == 0 || actor.ID != item.OwnerID() {
		return nil, ErrUnauthorized
	}
	return item, nil
}
