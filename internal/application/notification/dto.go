package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/notification"
)

// NotificationResponse represents an inbox entry in API responses
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      notification.Type `json:"type"`
	Link      string            `json:"link,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

// InboxResponse is the user's latest notifications with the unread count
type InboxResponse struct {
	Items  []NotificationResponse `json:"items"`
	Unread int                    `json:"unread"`
}

// ToNotificationResponse converts a domain notification to a response
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
