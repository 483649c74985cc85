package services

import (
	"context"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"time"
)

type auditService struct {
	actions repository.ActionLogRepository
	clock   func() time.Time
}

func NewAuditService(actions repository.ActionLogRepository, clock func() time.Time) AuditLog {
	if clock == nil {
		clock = time.Now
	}
	return &auditService{actions: actions, clock: clock}
}

func (s *auditService) LogAction(ctx context.Context, orderItemID, userID uint, actionType string, actorRole models.ActorRole, previousStatus, newStatus, notes string) error {
	entry := &models.ActionLog{
		UserID:         userID,
		ActionType:     actionType,
		ActionBy:       actorRole,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		Notes:          notes,
		CreatedAt:      s.clock().UTC(),
	}
	if orderItemID != 0 {
		entry.OrderItemID = &orderItemID
	}
	return s.actions.Append(ctx, entry)
}
