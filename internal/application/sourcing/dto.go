package sourcing

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// CheckStockRequest asks which lines of a request must be purchased
type CheckStockRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
}

// NeedPurchaseResponse lists the shortfall lines of a request
type NeedPurchaseResponse struct {
	RequestID uuid.UUID            `json:"request_id"`
	Items     []stock.ItemAnalysis `json:"items"`
}

// CreateRFQRequest opens an RFQ for the shortfall of a request
type CreateRFQRequest struct {
	RequestID   uuid.UUID   `json:"request_id" binding:"required"`
	SupplierIDs []uuid.UUID `json:"supplier_ids" binding:"required,min=2"`
	Deadline    time.Time   `json:"deadline" binding:"required"`
	Description string      `json:"description" binding:"max=2000"`
}

// QuotationItemInput is one priced line of a quotation
type QuotationItemInput struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"decimal_positive"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"decimal_nonnegative"`
	Note       string          `json:"note"`
}

// SubmitQuotationRequest submits a supplier's prices for an RFQ.
// SupplierID is taken from the actor for supplier accounts.
type SubmitQuotationRequest struct {
	RFQID            uuid.UUID            `json:"rfq_id" binding:"required"`
	SupplierID       *uuid.UUID           `json:"supplier_id"`
	Items            []QuotationItemInput `json:"items" binding:"required,min=1,dive"`
	DeliveryTimeDays int                  `json:"delivery_time_days" binding:"min=0"`
	PaymentTerms     string               `json:"payment_terms" binding:"max=500"`
	ValidUntil       *time.Time           `json:"valid_until"`
	Note             string               `json:"note"`
}

// RFQListFilter represents list filters
type RFQListFilter struct {
	Status    *sourcing.RFQStatus `form:"status"`
	RequestID *uuid.UUID          `form:"request_id"`
	Page      int                 `form:"page"`
	PageSize  int                 `form:"page_size"`
}

// QuotationListFilter represents list filters
type QuotationListFilter struct {
	Status     *sourcing.QuotationStatus `form:"status"`
	SupplierID *uuid.UUID                `form:"supplier_id"`
	RFQID      *uuid.UUID                `form:"rfq_id"`
	Page       int                       `form:"page"`
	PageSize   int                       `form:"page_size"`
}

// RFQItemResponse represents an RFQ line
type RFQItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Note         string          `json:"note,omitempty"`
}

// RFQResponse represents an RFQ in API responses
type RFQResponse struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	RequestID   uuid.UUID          `json:"request_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Deadline    time.Time          `json:"deadline"`
	Status      sourcing.RFQStatus `json:"status"`
	CreatedBy   uuid.UUID          `json:"created_by"`
	SupplierIDs []uuid.UUID        `json:"supplier_ids"`
	Items       []RFQItemResponse  `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CreateRFQResult carries the RFQ and the invitation outcome
type CreateRFQResult struct {
	RFQ RFQResponse `json:"rfq"`
	// EmailsSent counts invitations accepted by the mail server
	EmailsSent int `json:"emails_sent"`
}

// QuotationItemResponse represents a priced quotation line
type QuotationItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note,omitempty"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID               uuid.UUID                `json:"id"`
	Code             string                   `json:"code"`
	RFQID            uuid.UUID                `json:"rfq_id"`
	SupplierID       uuid.UUID                `json:"supplier_id"`
	TotalAmount      decimal.Decimal          `json:"total_amount"`
	DeliveryTimeDays int                      `json:"delivery_time_days"`
	PaymentTerms     string                   `json:"payment_terms,omitempty"`
	ValidUntil       *time.Time               `json:"valid_until,omitempty"`
	Note             string                   `json:"note,omitempty"`
	Status           sourcing.QuotationStatus `json:"status"`
	SubmittedAt      time.Time                `json:"submitted_at"`
	Items            []QuotationItemResponse  `json:"items"`
}

// ToRFQResponse converts a domain RFQ to a response
func ToRFQResponse(r *sourcing.RFQ) RFQResponse {
	items := make([]RFQItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = RFQItemResponse{
			ID:           item.ID,
			MaterialID:   item.MaterialID,
			MaterialName: item.MaterialName,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			Note:         item.Note,
		}
	}
	return RFQResponse{
		ID:          r.ID,
		Code:        r.Code,
		RequestID:   r.RequestID,
		Title:       r.Title,
		Description: r.Description,
		Deadline:    r.Deadline,
		Status:      r.Status,
		CreatedBy:   r.CreatedBy,
		SupplierIDs: r.SupplierIDs,
		Items:       items,
		CreatedAt:   r.CreatedAt,
	}
}

// ToRFQResponses converts a slice of RFQs
func ToRFQResponses(rfqs []sourcing.RFQ) []RFQResponse {
	out := make([]RFQResponse, len(rfqs))
	for i := range rfqs {
		out[i] = ToRFQResponse(&rfqs[i])
	}
	return out
}

// ToQuotationResponse converts a domain quotation to a response
func ToQuotationResponse(q *sourcing.Quotation) QuotationResponse {
	items := make([]QuotationItemResponse, len(q.Items))
	for i, item := range q.Items {
		items[i] = QuotationItemResponse{
			ID:           item.ID,
			MaterialID:   item.MaterialID,
			MaterialName: item.MaterialName,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Amount:       item.Amount,
			Note:         item.Note,
		}
	}
	return QuotationResponse{
		ID:               q.ID,
		Code:             q.Code,
		RFQID:            q.RFQID,
		SupplierID:       q.SupplierID,
		TotalAmount:      q.TotalAmount,
		DeliveryTimeDays: q.DeliveryTimeDays,
		PaymentTerms:     q.PaymentTerms,
		ValidUntil:       q.ValidUntil,
		Note:             q.Note,
		Status:           q.Status,
		SubmittedAt:      q.SubmittedAt,
		Items:            items,
	}
}

// ToQuotationResponses converts a slice of quotations
func ToQuotationResponses(quotations []sourcing.Quotation) []QuotationResponse {
	out := make([]QuotationResponse, len(quotations))
	for i := range quotations {
		out[i] = ToQuotationResponse(&quotations[i])
	}
	return out
}
