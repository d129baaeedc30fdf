package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// AggregateModel holds the columns every aggregate table shares.
// Repositories save with WHERE version = previous to detect lost updates.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

// Root rebuilds the embedded domain root; pending events are never stored
func (m *AggregateModel) Root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Version:    m.Version,
	}
}

func (m *AggregateModel) SetRoot(a shared.BaseAggregateRoot) {
	m.ID, m.CreatedAt, m.UpdatedAt, m.Version = a.ID, a.CreatedAt, a.UpdatedAt, a.Version
}
