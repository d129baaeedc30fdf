package notification

import (
	"context"

	"github.com/google/uuid"
)

// NotificationRepository defines the interface for notification persistence
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error

	// FindLatest returns the user's newest notifications, at most limit
	FindLatest(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error)

	// MarkRead flags one notification; it is scoped to the owner so a user
	// cannot touch another user's inbox
	MarkRead(ctx context.Context, id, userID uuid.UUID) error

	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
