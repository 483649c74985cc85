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

// MessageSender delivers a text message to a phone number. pkg/whatsapp.Client satisfies it.
type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	sender        MessageSender
	log           logrus.FieldLogger
}

// NewNotificationService stores every notification and, when sender is not nil, forwards it
// over WhatsApp to the customer's registered number.
func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, sender MessageSender, log logrus.FieldLogger) NotificationTrigger {
	if log == nil {
		log = logger.Discard()
	}
	return &notificationService{
		notifications: notifications,
		users:         users,
		sender:        sender,
		log:           log,
	}
}

func (s *notificationService) OnStatusAccepted(ctx context.Context, userID, orderItemID uint, serviceType models.ServiceType) error {
	message := fmt.Sprintf("✅ Your %s order #%d has been accepted and the price is confirmed.", humanize(string(serviceType)), orderItemID)
	return s.notify(ctx, userID, orderItemID, models.NotificationAccepted, "Order accepted", message)
}

func (s *notificationService) OnStatusChanged(ctx context.Context, userID, orderItemID uint, status models.Status, notes string) error {
	message := fmt.Sprintf("📦 Order #%d is now %s.", orderItemID, humanize(string(status)))
	if notes != "" {
		message += "\n📝 " + notes
	}
	return s.notify(ctx, userID, orderItemID, models.NotificationStatusChanged, "Order status updated", message)
}

func (s *notificationService) OnPaymentRecorded(ctx context.Context, userID, orderItemID uint, amount decimal.Decimal, method string, serviceType models.ServiceType) error {
	message := fmt.Sprintf("💰 Payment of %s via %s received for your %s order #%d.",
		amount.StringFixed(2), method, humanize(string(serviceType)), orderItemID)
	return s.notify(ctx, userID, orderItemID, models.NotificationPayment, "Payment received", message)
}

func (s *notificationService) notify(ctx context.Context, userID, orderItemID uint, kind, title, message string) error {
	if userID == 0 {
		return fmt.Errorf("notification %s for order item %d has no recipient", kind, orderItemID)
	}

	notification := &models.Notification{
		UserID:      userID,
		OrderItemID: orderItemID,
		Kind:        kind,
		Title:       title,
		Message:     message,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.sender == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load recipient %d: %w", userID, err)
	}
	if user.WhatsAppNumber == "" {
		s.log.WithField("user_id", userID).Debug("recipient has no WhatsApp number, notification stored only")
		return nil
	}
	if err := s.sender.SendTextMessage(ctx, user.WhatsAppNumber, title+"\n"+message); err != nil {
		return fmt.Errorf("failed to send WhatsApp notification: %w", err)
	}
	return s.notifications.MarkWhatsAppSent(ctx, notification.ID)
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
