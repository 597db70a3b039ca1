package service

import (
	"context"
	"log/slog"

	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/observability"
	"jobboard/internal/repository"
)

// NotificationService owns the per-user notification ledger.
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Emit records one notification. Failures are logged and counted, never returned.
func (s *NotificationService) Emit(ctx context.Context, userID uint, typ, message string, data map[string]any) {
	n := &models.Notification{UserID: userID, Type: typ, Message: message, Data: data}
	if err := s.repo.Create(ctx, n); err != nil {
		observability.NotificationFailures.WithLabelValues(typ).Inc()
		middleware.Logger.WarnContext(ctx, "notification write failed",
			slog.String("type", typ),
			slog.Uint64("recipient", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}

// Broadcast writes one independent row per recipient. A failed row does not
// affect the others.
func (s *NotificationService) Broadcast(ctx context.Context, userIDs []uint, typ, message string, data map[string]any) int {
	sent := 0
	for _, id := range userIDs {
		n := &models.Notification{UserID: id, Type: typ, Message: message, Data: data}
		if err := s.repo.Create(ctx, n); err != nil {
			observability.NotificationFailures.WithLabelValues(typ).Inc()
			middleware.Logger.WarnContext(ctx, "notification fan-out write failed",
				slog.String("type", typ),
				slog.Uint64("recipient", uint64(id)),
				slog.String("error", err.Error()),
			)
			continue
		}
		sent++
	}
	return sent
}

func (s *NotificationService) List(ctx context.Context, userID uint, read *bool, page models.PageQuery) ([]models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, read, page)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead flags one notification as read. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	if err := s.authorize(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one notification. Only the recipient may do so.
func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.authorize(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *NotificationService) authorize(ctx context.Context, userID, id uint) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return models.NewForbiddenError("Not authorized to modify this notification")
	}
	return nil
}
