package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/shopspring/decimal"
)

// MaterialRequestModel is the persistence model for a material request (YC#####)
type MaterialRequestModel struct {
	AggregateModel
	Code        string             `gorm:"type:varchar(20);not null;uniqueIndex"`
	ProjectID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	CreatedBy   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Description string             `gorm:"type:text"`
	Priority    request.Priority   `gorm:"type:varchar(20);not null;default:'normal'"`
	NeedByDate  *time.Time         `gorm:"type:date"`
	Status      request.Status     `gorm:"type:varchar(20);not null;default:'pending';index"`
	Items       []RequestItemModel `gorm:"foreignKey:RequestID;references:ID"`
}

// TableName returns the table name for GORM
func (MaterialRequestModel) TableName() string {
	return "material_requests"
}

// ToDomain converts the persistence model to a domain MaterialRequest.
// Approvals are loaded separately by the repository.
func (m *MaterialRequestModel) ToDomain() *request.MaterialRequest {
	req := &request.MaterialRequest{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		ProjectID:         m.ProjectID,
		CreatedBy:         m.CreatedBy,
		Description:       m.Description,
		Priority:          m.Priority,
		NeedByDate:        m.NeedByDate,
		Status:            m.Status,
		Items:             make([]request.RequestItem, len(m.Items)),
	}
	for i, it := range m.Items {
		req.Items[i] = request.RequestItem{
			ID:         it.ID,
			RequestID:  it.RequestID,
			MaterialID: it.MaterialID,
			Quantity:   it.Quantity,
			Note:       it.Note,
		}
	}
	return req
}

// MaterialRequestModelFromDomain creates a persistence model with its items
func MaterialRequestModelFromDomain(req *request.MaterialRequest) *MaterialRequestModel {
	m := &MaterialRequestModel{
		Code:        req.Code,
		ProjectID:   req.ProjectID,
		CreatedBy:   req.CreatedBy,
		Description: req.Description,
		Priority:    req.Priority,
		NeedByDate:  req.NeedByDate,
		Status:      req.Status,
		Items:       make([]RequestItemModel, len(req.Items)),
	}
	m.SetRoot(req.BaseAggregateRoot)
	for i, it := range req.Items {
		m.Items[i] = RequestItemModel{
			ID:         it.ID,
			RequestID:  req.ID,
			MaterialID: it.MaterialID,
			Quantity:   it.Quantity,
			Note:       it.Note,
		}
	}
	return m
}

// RequestItemModel is a line of a material request
type RequestItemModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequestID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RequestItemModel) TableName() string {
	return "material_request_items"
}

// MaterialQuotaModel is the per-project cap for one material
type MaterialQuotaModel struct {
	AggregateModel
	ProjectID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quota_project_material,priority:1"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quota_project_material,priority:2"`
	MaxQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UsedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedBy    uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (MaterialQuotaModel) TableName() string {
	return "material_quotas"
}

// ToDomain converts the persistence model to a domain MaterialQuota
func (m *MaterialQuotaModel) ToDomain() *quota.MaterialQuota {
	return &quota.MaterialQuota{
		BaseAggregateRoot: m.Root(),
		ProjectID:         m.ProjectID,
		MaterialID:        m.MaterialID,
		MaxQuantity:       m.MaxQuantity,
		UsedQuantity:      m.UsedQuantity,
		CreatedBy:         m.CreatedBy,
	}
}

// MaterialQuotaModelFromDomain creates a persistence model from a domain quota
func MaterialQuotaModelFromDomain(q *quota.MaterialQuota) *MaterialQuotaModel {
	m := &MaterialQuotaModel{
		ProjectID:    q.ProjectID,
		MaterialID:   q.MaterialID,
		MaxQuantity:  q.MaxQuantity,
		UsedQuantity: q.UsedQuantity,
		CreatedBy:    q.CreatedBy,
	}
	m.SetRoot(q.BaseAggregateRoot)
	return m
}
