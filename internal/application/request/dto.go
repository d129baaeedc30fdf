package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/shopspring/decimal"
)

// CreateRequestItemInput represents an item in the create request
type CreateRequestItemInput struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"decimal_positive"`
	Note       string          `json:"note"`
}

// CreateRequestRequest represents a request to create a material request
type CreateRequestRequest struct {
	ProjectID   uuid.UUID                `json:"project_id" binding:"required"`
	Description string                   `json:"description"`
	Priority    request.Priority         `json:"priority"`
	NeedByDate  *time.Time               `json:"need_by_date"`
	Items       []CreateRequestItemInput `json:"items" binding:"required,min=1,dive"`
}

// ApproveRequest carries an approver's decision on the next pending level
type ApproveRequest struct {
	Decision  approval.Decision `json:"decision" binding:"required,oneof=approved rejected"`
	Comment   string            `json:"comment"`
	Signature string            `json:"signature"`
}

// RequestListFilter represents list filters
type RequestListFilter struct {
	ProjectID *uuid.UUID      `form:"project_id"`
	Status    *request.Status `form:"status"`
	CreatedBy *uuid.UUID      `form:"created_by"`
	Search    string          `form:"search"`
	Page      int             `form:"page"`
	PageSize  int             `form:"page_size"`
}

// RequestItemResponse represents a request item in API responses
type RequestItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	MaterialID uuid.UUID       `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

// ApprovalResponse represents one approval level
type ApprovalResponse struct {
	ID         uuid.UUID       `json:"id"`
	Level      int             `json:"level"`
	Status     approval.Status `json:"status"`
	ApproverID *uuid.UUID      `json:"approver_id,omitempty"`
	Comment    string          `json:"comment,omitempty"`
	Signature  string          `json:"signature,omitempty"`
	ActedAt    *time.Time      `json:"acted_at,omitempty"`
}

// RequestResponse represents a material request in API responses
type RequestResponse struct {
	ID           uuid.UUID             `json:"id"`
	Code         string                `json:"code"`
	ProjectID    uuid.UUID             `json:"project_id"`
	CreatedBy    uuid.UUID             `json:"created_by"`
	Description  string                `json:"description"`
	Priority     request.Priority      `json:"priority"`
	NeedByDate   *time.Time            `json:"need_by_date,omitempty"`
	Status       request.Status        `json:"status"`
	CurrentLevel int                   `json:"current_level"`
	Items        []RequestItemResponse `json:"items"`
	Approvals    []ApprovalResponse    `json:"approvals"`
	Version      int                   `json:"version"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// CreateRequestResult is the created request plus its advisory quota violations
type CreateRequestResult struct {
	Request    RequestResponse   `json:"request"`
	Violations []quota.Violation `json:"quota_violations"`
}

// ApproveResult reports the acted level and the resulting chain outcome
type ApproveResult struct {
	Request RequestResponse  `json:"request"`
	Acted   ApprovalResponse `json:"acted"`
	Outcome approval.Outcome `json:"outcome"`
}

// ToApprovalResponse converts an approval level
func ToApprovalResponse(a *approval.Approval) ApprovalResponse {
	return ApprovalResponse{
		ID:         a.ID,
		Level:      a.Level,
		Status:     a.Status,
		ApproverID: a.ApproverID,
		Comment:    a.Comment,
		Signature:  a.Signature,
		ActedAt:    a.ActedAt,
	}
}

// ToApprovalResponses converts a chain sorted by level
func ToApprovalResponses(chain approval.Chain) []ApprovalResponse {
	sorted := chain.Sorted()
	out := make([]ApprovalResponse, len(sorted))
	for i := range sorted {
		out[i] = ToApprovalResponse(&sorted[i])
	}
	return out
}

// ToRequestResponse converts a domain request to a response
func ToRequestResponse(r *request.MaterialRequest) RequestResponse {
	items := make([]RequestItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = RequestItemResponse{
			ID:         item.ID,
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			Note:       item.Note,
		}
	}
	return RequestResponse{
		ID:           r.ID,
		Code:         r.Code,
		ProjectID:    r.ProjectID,
		CreatedBy:    r.CreatedBy,
		Description:  r.Description,
		Priority:     r.Priority,
		NeedByDate:   r.NeedByDate,
		Status:       r.Status,
		CurrentLevel: r.Approvals.CurrentLevel(),
		Items:        items,
		Approvals:    ToApprovalResponses(r.Approvals),
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToRequestResponses converts a slice of requests
func ToRequestResponses(requests []request.MaterialRequest) []RequestResponse {
	out := make([]RequestResponse, len(requests))
	for i := range requests {
		out[i] = ToRequestResponse(&requests[i])
	}
	return out
}
