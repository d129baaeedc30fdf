package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindFirstByRole returns the oldest active user holding the role
	FindFirstByRole(ctx context.Context, role Role) (*User, error)

	Save(ctx context.Context, user *User) error
}
