package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService takes new orders in. Everything after intake goes through OrderItemService.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uint, actor Actor) (*models.Order, error)
	GetOrdersByUser(ctx context.Context, userID uint, actor Actor) ([]models.Order, error)
}

type CreateOrderCommand struct {
	UserID        uint
	CustomerName  string
	CustomerPhone string
	Items         []NewOrderItem
	Actor         Actor
}

type NewOrderItem struct {
	ServiceName string
	// EstimatedPrice is provisional until an admin confirms the final price.
	EstimatedPrice decimal.Decimal
	Details        models.ServiceDetails
}

type orderService struct {
	orderRepo repository.OrderRepository
	clock     func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, clock func() time.Time) OrderService {
	if clock == nil {
		clock = time.Now
	}
	return &orderService{orderRepo: orderRepo, clock: clock}
}

func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*models.Order, error) {
	if !cmd.Actor.IsAdmin() && cmd.Actor.ID != cmd.UserID {
		return nil, ErrUnauthorized
	}
	if cmd.UserID == 0 || strings.TrimSpace(cmd.CustomerName) == "" {
		return nil, fmt.Errorf("%w: user and customer name are required", ErrInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("%w: an order needs at least one item", ErrInvalidInput)
	}

	now := s.clock().UTC()
	order := &models.Order{
		OrderNumber:   newOrderNumber(now),
		UserID:        cmd.UserID,
		CustomerName:  strings.TrimSpace(cmd.CustomerName),
		CustomerPhone: strings.TrimSpace(cmd.CustomerPhone),
		OrderDate:     now,
	}

	for i, in := range cmd.Items {
		if in.Details == nil {
			return nil, fmt.Errorf("%w: item %d has no service details", ErrInvalidInput, i+1)
		}
		if in.EstimatedPrice.IsNegative() || !in.EstimatedPrice.Equal(in.EstimatedPrice.Round(2)) {
			return nil, fmt.Errorf("%w: item %d has an invalid price", ErrInvalidInput, i+1)
		}

		item := models.OrderItem{
			ServiceName:    in.ServiceName,
			FinalPrice:     in.EstimatedPrice,
			ApprovalStatus: models.ApprovalPendingReview,
		}
		if err := item.SetDetails(in.Details); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		item.CurrentStatus = InitialStatus(item.ServiceType)
		item.PaymentStatus = DerivePaymentStatus(item.ServiceType, item.FinalPrice, decimal.Zero)
		if item.ServiceName == "" {
			item.ServiceName = humanize(string(item.ServiceType))
		}
		order.Items = append(order.Items, item)
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, classify("create order", err)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, classify("get order", err)
	}
	if !actor.IsAdmin() && actor.ID != order.UserID {
		return nil, ErrUnauthorized
	}
	return order, nil
}

func (s *orderService) GetOrdersByUser(ctx context.Context, userID uint, actor Actor) ([]models.Order, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, ErrUnauthorized
	}
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, classify("list orders", err)
	}
	return orders, nil
}

func newOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}
