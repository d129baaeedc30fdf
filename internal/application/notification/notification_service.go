package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationService stores in-app notifications and serves the inbox.
// As a port.Notifier it never fails the calling workflow.
type NotificationService struct {
	repo     notification.NotificationRepository
	userRepo identity.UserRepository
	dedup    shared.IdempotencyStore
	logger   *zap.Logger
}

// NewNotificationService creates a new NotificationService.
// dedup may be nil, in which case NotifyOnce behaves like Notify.
func NewNotificationService(
	repo notification.NotificationRepository,
	userRepo identity.UserRepository,
	dedup shared.IdempotencyStore,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		dedup:    dedup,
		logger:   logger,
	}
}

// Notify stores a notification for the user
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message string, typ notification.Type, link string) {
	n, err := notification.New(userID, title, message, typ, link)
	if err != nil {
		s.logger.Warn("Dropping invalid notification",
			zap.String("user_id", userID.String()),
			zap.String("title", title),
			zap.Error(err))
		return
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to store notification",
			zap.String("user_id", userID.String()),
			zap.String("title", title),
			zap.Error(err))
	}
}

// NotifyRole notifies the first active user holding the role
func (s *NotificationService) NotifyRole(ctx context.Context, role identity.Role, title, message string, typ notification.Type, link string) {
	user, err := s.userRepo.FindFirstByRole(ctx, role)
	if err != nil {
		if shared.HasCode(err, shared.CodeNotFound) {
			s.logger.Warn("No active user holds the role, notification dropped",
				zap.String("role", string(role)),
				zap.String("title", title))
			return
		}
		s.logger.Error("Failed to resolve role for notification",
			zap.String("role", string(role)),
			zap.Error(err))
		return
	}
	s.Notify(ctx, user.ID, title, message, typ, link)
}

// NotifyOnce notifies unless the key was claimed within ttl. A failing
// store does not suppress the notification.
func (s *NotificationService) NotifyOnce(ctx context.Context, key string, ttl time.Duration, userID uuid.UUID, title, message string, typ notification.Type, link string) {
	if s.dedup != nil {
		fresh, err := s.dedup.MarkProcessed(ctx, "notify:"+key, ttl)
		if err != nil {
			s.logger.Warn("Idempotency store unavailable, sending anyway",
				zap.String("key", key),
				zap.Error(err))
		} else if !fresh {
			s.logger.Debug("Duplicate notification suppressed", zap.String("key", key))
			return
		}
	}
	s.Notify(ctx, userID, title, message, typ, link)
}

// List returns the user's latest notifications
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) (*InboxResponse, error) {
	items, err := s.repo.FindLatest(ctx, userID, notification.InboxSize)
	if err != nil {
		return nil, err
	}
	out := &InboxResponse{Items: make([]NotificationResponse, len(items))}
	for i := range items {
		out.Items[i] = ToNotificationResponse(&items[i])
		if !items[i].Read {
			out.Unread++
		}
	}
	return out, nil
}

// MarkRead flags one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead flags every notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

var _ port.Notifier = (*NotificationService)(nil)
