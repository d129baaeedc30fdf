package purchase

import (
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
)

// PurchaseOrderCreatedEvent is raised when a PO is created from a quotation
type PurchaseOrderCreatedEvent struct {
	shared.EventMeta
	OrderID     uuid.UUID       `json:"order_id"`
	Code        string          `json:"code"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	QuotationID uuid.UUID       `json:"quotation_id"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		EventMeta:   shared.NewEventMeta(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, po.ID),
		OrderID:     po.ID,
		Code:        po.Code,
		SupplierID:  po.SupplierID,
		QuotationID: po.QuotationID,
		GrandTotal:  po.GrandTotal,
	}
}

// PurchaseOrderStatusChangedEvent is raised on approval outcome, delivery,
// completion and cancellation
type PurchaseOrderStatusChangedEvent struct {
	shared.EventMeta
	OrderID    uuid.UUID `json:"order_id"`
	Code       string    `json:"code"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(po *PurchaseOrder, from Status) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		EventMeta:  shared.NewEventMeta(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, po.ID),
		OrderID:    po.ID,
		Code:       po.Code,
		FromStatus: from,
		ToStatus:   po.Status,
	}
}
