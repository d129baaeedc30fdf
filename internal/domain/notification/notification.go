package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// Type is the severity shown in the inbox
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError:
		return true
	}
	return false
}

// InboxSize is the number of notifications a user sees
const InboxSize = 50

// Notification is an in-app inbox entry
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	Type      Type
	Link      string
	Read      bool
	CreatedAt time.Time
}

// New creates an unread notification; unknown types fall back to info
func New(userID uuid.UUID, title, message string, typ Type, link string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("Notification recipient is required")
	}
	if title == "" {
		return nil, shared.NewValidationError("Notification title is required")
	}
	if !typ.IsValid() {
		typ = TypeInfo
	}
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Link:      link,
		CreatedAt: time.Now(),
	}, nil
}
