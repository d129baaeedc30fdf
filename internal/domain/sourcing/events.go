package sourcing

import (
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeRFQ = "RFQ"

// Event type constants
const (
	EventTypeRFQCreated        = "RFQCreated"
	EventTypeQuotationSelected = "QuotationSelected"
)

// RFQCreatedEvent is raised when an RFQ is sent to suppliers
type RFQCreatedEvent struct {
	shared.EventMeta
	RFQID       uuid.UUID   `json:"rfq_id"`
	Code        string      `json:"code"`
	RequestID   uuid.UUID   `json:"request_id"`
	SupplierIDs []uuid.UUID `json:"supplier_ids"`
}

// NewRFQCreatedEvent creates a new RFQCreatedEvent
func NewRFQCreatedEvent(r *RFQ) *RFQCreatedEvent {
	return &RFQCreatedEvent{
		EventMeta:   shared.NewEventMeta(EventTypeRFQCreated, AggregateTypeRFQ, r.ID),
		RFQID:       r.ID,
		Code:        r.Code,
		RequestID:   r.RequestID,
		SupplierIDs: r.SupplierIDs,
	}
}

// QuotationSelectedEvent is raised when a winning quotation is chosen
type QuotationSelectedEvent struct {
	shared.EventMeta
	RFQID         uuid.UUID       `json:"rfq_id"`
	QuotationID   uuid.UUID       `json:"quotation_id"`
	QuotationCode string          `json:"quotation_code"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewQuotationSelectedEvent creates a new QuotationSelectedEvent
func NewQuotationSelectedEvent(r *RFQ, q *Quotation) *QuotationSelectedEvent {
	return &QuotationSelectedEvent{
		EventMeta:     shared.NewEventMeta(EventTypeQuotationSelected, AggregateTypeRFQ, r.ID),
		RFQID:         r.ID,
		QuotationID:   q.ID,
		QuotationCode: q.Code,
		SupplierID:    q.SupplierID,
		TotalAmount:   q.TotalAmount,
	}
}
