package quota

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/shopspring/decimal"
)

// UpsertQuotaRequest sets the max quantity of a (project, material) pair
type UpsertQuotaRequest struct {
	ProjectID   uuid.UUID       `json:"project_id" binding:"required"`
	MaterialID  uuid.UUID       `json:"material_id" binding:"required"`
	MaxQuantity decimal.Decimal `json:"max_quantity" binding:"decimal_positive"`
}

// CheckItem is one (material, quantity) pair to check against quotas
type CheckItem struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"decimal_positive"`
}

// CheckQuotaRequest asks for the advisory violations of a draft request
type CheckQuotaRequest struct {
	ProjectID uuid.UUID   `json:"project_id" binding:"required"`
	Items     []CheckItem `json:"items" binding:"required,min=1,dive"`
}

// QuotaListFilter represents list filters
type QuotaListFilter struct {
	ProjectID  *uuid.UUID `form:"project_id"`
	MaterialID *uuid.UUID `form:"material_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// QuotaResponse represents a quota in API responses
type QuotaResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	MaterialID   uuid.UUID       `json:"material_id"`
	MaxQuantity  decimal.Decimal `json:"max_quantity"`
	UsedQuantity decimal.Decimal `json:"used_quantity"`
	Remaining    decimal.Decimal `json:"remaining"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToQuotaResponse converts a domain quota to a response
func ToQuotaResponse(q *quota.MaterialQuota) QuotaResponse {
	return QuotaResponse{
		ID:           q.ID,
		ProjectID:    q.ProjectID,
		MaterialID:   q.MaterialID,
		MaxQuantity:  q.MaxQuantity,
		UsedQuantity: q.UsedQuantity,
		Remaining:    q.Remaining(),
		CreatedBy:    q.CreatedBy,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// ToQuotaResponses converts a slice of quotas
func ToQuotaResponses(quotas []quota.MaterialQuota) []QuotaResponse {
	out := make([]QuotaResponse, len(quotas))
	for i := range quotas {
		out[i] = ToQuotaResponse(&quotas[i])
	}
	return out
}
