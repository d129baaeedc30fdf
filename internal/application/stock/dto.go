package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// StockCheckRequest asks for the stock-versus-purchase split of a request
type StockCheckRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
}

// IssueStockItemInput is one line to hand over from the warehouse
type IssueStockItemInput struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"decimal_positive"`
}

// IssueStockRequest creates a stock issue (XK) for an approved request.
// When Items is empty every stock-fulfillable quantity is issued.
type IssueStockRequest struct {
	RequestID uuid.UUID             `json:"request_id" binding:"required"`
	Items     []IssueStockItemInput `json:"items" binding:"omitempty,dive"`
	Note      string                `json:"note"`
}

// ReceiveStockRequest confirms the site received the issued goods
type ReceiveStockRequest struct {
	Note string `json:"note"`
}

// RestockRequest adds received goods to a material's stock
type RestockRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"decimal_positive"`
}

// StockIssueListFilter represents list filters
type StockIssueListFilter struct {
	Status    *stock.IssueStatus `form:"status"`
	RequestID *uuid.UUID         `form:"request_id"`
	Page      int                `form:"page"`
	PageSize  int                `form:"page_size"`
}

// StockIssueItemResponse represents an issued line
type StockIssueItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// StockIssueResponse represents a stock issue in API responses
type StockIssueResponse struct {
	ID          uuid.UUID                `json:"id"`
	Code        string                   `json:"code"`
	RequestID   uuid.UUID                `json:"request_id"`
	IssuedBy    uuid.UUID                `json:"issued_by"`
	Status      stock.IssueStatus        `json:"status"`
	IssuedAt    time.Time                `json:"issued_at"`
	ReceivedBy  *uuid.UUID               `json:"received_by,omitempty"`
	ReceivedAt  *time.Time               `json:"received_at,omitempty"`
	Note        string                   `json:"note,omitempty"`
	ReceiveNote string                   `json:"receive_note,omitempty"`
	Items       []StockIssueItemResponse `json:"items"`
}

// MaterialStockResponse represents a material's stock position
type MaterialStockResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Stock        decimal.Decimal `json:"stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	BelowMinimum bool            `json:"below_minimum"`
}

// ToStockIssueResponse converts a domain stock issue to a response
func ToStockIssueResponse(s *stock.StockIssue) StockIssueResponse {
	items := make([]StockIssueItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = StockIssueItemResponse{
			ID:           item.ID,
			MaterialID:   item.MaterialID,
			MaterialName: item.MaterialName,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
		}
	}
	return StockIssueResponse{
		ID:          s.ID,
		Code:        s.Code,
		RequestID:   s.RequestID,
		IssuedBy:    s.IssuedBy,
		Status:      s.Status,
		IssuedAt:    s.IssuedAt,
		ReceivedBy:  s.ReceivedBy,
		ReceivedAt:  s.ReceivedAt,
		Note:        s.Note,
		ReceiveNote: s.ReceiveNote,
		Items:       items,
	}
}

// ToStockIssueResponses converts a slice of stock issues
func ToStockIssueResponses(issues []stock.StockIssue) []StockIssueResponse {
	out := make([]StockIssueResponse, len(issues))
	for i := range issues {
		out[i] = ToStockIssueResponse(&issues[i])
	}
	return out
}

// ToMaterialStockResponse converts a material's stock position
func ToMaterialStockResponse(m *catalog.Material) MaterialStockResponse {
	return MaterialStockResponse{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Unit:         m.Unit,
		Stock:        m.Stock,
		MinStock:     m.MinStock,
		BelowMinimum: m.IsBelowMinimum(),
	}
}
