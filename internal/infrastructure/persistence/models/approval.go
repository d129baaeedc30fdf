package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
)

// ApprovalModel is one level of an approval chain. The owner is either a
// material request or a purchase order.
type ApprovalModel struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key"`
	OwnerType  approval.OwnerType `gorm:"type:varchar(30);not null;uniqueIndex:idx_approval_owner_level,priority:1"`
	OwnerID    uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_approval_owner_level,priority:2"`
	Level      int                `gorm:"not null;uniqueIndex:idx_approval_owner_level,priority:3"`
	Status     approval.Status    `gorm:"type:varchar(20);not null;default:'pending'"`
	ApproverID *uuid.UUID         `gorm:"type:uuid"`
	Comment    string             `gorm:"type:text"`
	Signature  string             `gorm:"type:text"`
	ActedAt    *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ApprovalModel) TableName() string {
	return "approvals"
}

// ToDomain converts the persistence model to a domain Approval
func (m *ApprovalModel) ToDomain() approval.Approval {
	return approval.Approval{
		ID:         m.ID,
		OwnerType:  m.OwnerType,
		OwnerID:    m.OwnerID,
		Level:      m.Level,
		Status:     m.Status,
		ApproverID: m.ApproverID,
		Comment:    m.Comment,
		Signature:  m.Signature,
		ActedAt:    m.ActedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ApprovalModelsFromChain converts a chain to persistence models
func ApprovalModelsFromChain(chain approval.Chain) []ApprovalModel {
	out := make([]ApprovalModel, len(chain))
	for i, a := range chain {
		out[i] = ApprovalModel{
			ID:         a.ID,
			OwnerType:  a.OwnerType,
			OwnerID:    a.OwnerID,
			Level:      a.Level,
			Status:     a.Status,
			ApproverID: a.ApproverID,
			Comment:    a.Comment,
			Signature:  a.Signature,
			ActedAt:    a.ActedAt,
			CreatedAt:  a.CreatedAt,
			UpdatedAt:  a.UpdatedAt,
		}
	}
	return out
}

// ChainFromModels converts level-ordered models to a domain chain
func ChainFromModels(rows []ApprovalModel) approval.Chain {
	chain := make(approval.Chain, len(rows))
	for i := range rows {
		chain[i] = rows[i].ToDomain()
	}
	return chain
}
