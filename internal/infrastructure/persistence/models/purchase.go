package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PurchaseOrderModel is the persistence model for a purchase order (PO#####)
type PurchaseOrderModel struct {
	AggregateModel
	Code            string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	QuotationID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	RequestID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	VATAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GrandTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentTerms    string          `gorm:"type:varchar(500)"`
	DeliveryAddress string          `gorm:"type:varchar(500)"`
	DeliveryDate    *time.Time      `gorm:"index"`
	ActualDelivery  *time.Time
	Note            string          `gorm:"type:text"`
	Status          purchase.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	SentAt          *time.Time
	CancelledAt     *time.Time
	CancelReason    string                   `gorm:"type:varchar(500)"`
	Items           []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
// Approvals are loaded separately by the repository.
func (m *PurchaseOrderModel) ToDomain() *purchase.PurchaseOrder {
	po := &purchase.PurchaseOrder{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		QuotationID:       m.QuotationID,
		RequestID:         m.RequestID,
		ProjectID:         m.ProjectID,
		SupplierID:        m.SupplierID,
		CreatedBy:         m.CreatedBy,
		TotalAmount:       m.TotalAmount,
		VATAmount:         m.VATAmount,
		GrandTotal:        m.GrandTotal,
		PaymentTerms:      m.PaymentTerms,
		DeliveryAddress:   m.DeliveryAddress,
		DeliveryDate:      m.DeliveryDate,
		ActualDelivery:    m.ActualDelivery,
		Note:              m.Note,
		Status:            m.Status,
		SentAt:            m.SentAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Items:             make([]purchase.PurchaseOrderItem, len(m.Items)),
	}
	for i, it := range m.Items {
		po.Items[i] = purchase.PurchaseOrderItem{
			ID:           it.ID,
			OrderID:      it.OrderID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Amount:       it.Amount,
		}
	}
	return po
}

// PurchaseOrderModelFromDomain creates a persistence model with its items
func PurchaseOrderModelFromDomain(po *purchase.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		Code:            po.Code,
		QuotationID:     po.QuotationID,
		RequestID:       po.RequestID,
		ProjectID:       po.ProjectID,
		SupplierID:      po.SupplierID,
		CreatedBy:       po.CreatedBy,
		TotalAmount:     po.TotalAmount,
		VATAmount:       po.VATAmount,
		GrandTotal:      po.GrandTotal,
		PaymentTerms:    po.PaymentTerms,
		DeliveryAddress: po.DeliveryAddress,
		DeliveryDate:    po.DeliveryDate,
		ActualDelivery:  po.ActualDelivery,
		Note:            po.Note,
		Status:          po.Status,
		SentAt:          po.SentAt,
		CancelledAt:     po.CancelledAt,
		CancelReason:    po.CancelReason,
		Items:           make([]PurchaseOrderItemModel, len(po.Items)),
	}
	m.SetRoot(po.BaseAggregateRoot)
	for i, it := range po.Items {
		m.Items[i] = PurchaseOrderItemModel{
			ID:           it.ID,
			OrderID:      po.ID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Amount:       it.Amount,
		}
	}
	return m
}

// PurchaseOrderItemModel is a line of a PO
type PurchaseOrderItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null"`
	MaterialName string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// DeliveryModel records goods received for a PO; one per PO
type DeliveryModel struct {
	ID             uuid.UUID                                        `gorm:"type:uuid;primary_key"`
	POID           uuid.UUID                                        `gorm:"column:po_id;type:uuid;not null;uniqueIndex"`
	DeliveryDate   time.Time                                        `gorm:"not null"`
	ReceivedBy     string                                           `gorm:"type:varchar(200);not null"`
	RecordedBy     uuid.UUID                                        `gorm:"type:uuid;not null"`
	ActualQuantity datatypes.JSONType[[]purchase.DeliveredQuantity] `gorm:"not null"`
	QualityStatus  purchase.QualityStatus                           `gorm:"type:varchar(20);not null;default:'ok'"`
	Photos         datatypes.JSONType[[]string]                     `gorm:"not null"`
	Note           string                                           `gorm:"type:text"`
	CreatedAt      time.Time                                        `gorm:"not null"`
	UpdatedAt      time.Time                                        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryModel) TableName() string {
	return "deliveries"
}

// ToDomain converts the persistence model to a domain Delivery
func (m *DeliveryModel) ToDomain() *purchase.Delivery {
	return &purchase.Delivery{
		ID:             m.ID,
		POID:           m.POID,
		DeliveryDate:   m.DeliveryDate,
		ReceivedBy:     m.ReceivedBy,
		RecordedBy:     m.RecordedBy,
		ActualQuantity: m.ActualQuantity.Data(),
		QualityStatus:  m.QualityStatus,
		Photos:         m.Photos.Data(),
		Note:           m.Note,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// DeliveryModelFromDomain creates a persistence model from a domain Delivery
func DeliveryModelFromDomain(d *purchase.Delivery) *DeliveryModel {
	quantities := d.ActualQuantity
	if quantities == nil {
		quantities = []purchase.DeliveredQuantity{}
	}
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	return &DeliveryModel{
		ID:             d.ID,
		POID:           d.POID,
		DeliveryDate:   d.DeliveryDate,
		ReceivedBy:     d.ReceivedBy,
		RecordedBy:     d.RecordedBy,
		ActualQuantity: datatypes.NewJSONType(quantities),
		QualityStatus:  d.QualityStatus,
		Photos:         datatypes.NewJSONType(photos),
		Note:           d.Note,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// PaymentModel is the persistence model for a payment order (UNC#####)
type PaymentModel struct {
	AggregateModel
	POID           uuid.UUID              `gorm:"column:po_id;type:uuid;not null;uniqueIndex"`
	UNCNumber      string                 `gorm:"column:unc_number;type:varchar(20);not null;uniqueIndex"`
	Amount         decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Method         purchase.PaymentMethod `gorm:"type:varchar(20);not null"`
	Type           purchase.PaymentType   `gorm:"type:varchar(20);not null"`
	Status         purchase.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	InvoiceNumber  string                 `gorm:"type:varchar(100)"`
	VATInvoiceRef  string                 `gorm:"column:vat_invoice_ref;type:varchar(100)"`
	DeliveryNote   string                 `gorm:"type:varchar(500)"`
	AcceptanceNote string                 `gorm:"type:varchar(500)"`
	Note           string                 `gorm:"type:text"`
	CreatedBy      uuid.UUID              `gorm:"type:uuid;not null"`
	ApprovedBy     *uuid.UUID             `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	PaidAt         *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *purchase.Payment {
	return &purchase.Payment{
		BaseAggregateRoot: m.Root(),
		POID:              m.POID,
		UNCNumber:         m.UNCNumber,
		Amount:            m.Amount,
		Method:            m.Method,
		Type:              m.Type,
		Status:            m.Status,
		InvoiceNumber:     m.InvoiceNumber,
		VATInvoiceRef:     m.VATInvoiceRef,
		DeliveryNote:      m.DeliveryNote,
		AcceptanceNote:    m.AcceptanceNote,
		Note:              m.Note,
		CreatedBy:         m.CreatedBy,
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		PaidAt:            m.PaidAt,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *purchase.Payment) *PaymentModel {
	m := &PaymentModel{
		POID:           p.POID,
		UNCNumber:      p.UNCNumber,
		Amount:         p.Amount,
		Method:         p.Method,
		Type:           p.Type,
		Status:         p.Status,
		InvoiceNumber:  p.InvoiceNumber,
		VATInvoiceRef:  p.VATInvoiceRef,
		DeliveryNote:   p.DeliveryNote,
		AcceptanceNote: p.AcceptanceNote,
		Note:           p.Note,
		CreatedBy:      p.CreatedBy,
		ApprovedBy:     p.ApprovedBy,
		ApprovedAt:     p.ApprovedAt,
		PaidAt:         p.PaidAt,
	}
	m.SetRoot(p.BaseAggregateRoot)
	return m
}

// DeliveryTrackingModel is one event of the append-only tracking log
type DeliveryTrackingModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	POID        uuid.UUID  `gorm:"column:po_id;type:uuid;not null;index:idx_tracking_po_created,priority:1"`
	Status      string     `gorm:"type:varchar(30);not null"`
	Location    string     `gorm:"type:varchar(300)"`
	Note        string     `gorm:"type:text"`
	IsDelayed   bool       `gorm:"not null;default:false"`
	DelayReason string     `gorm:"type:varchar(500)"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_tracking_po_created,priority:2"`
}

// TableName returns the table name for GORM
func (DeliveryTrackingModel) TableName() string {
	return "delivery_tracking"
}

// ToDomain converts the persistence model to a domain DeliveryTracking
func (m *DeliveryTrackingModel) ToDomain() purchase.DeliveryTracking {
	return purchase.DeliveryTracking{
		ID:          m.ID,
		POID:        m.POID,
		Status:      m.Status,
		Location:    m.Location,
		Note:        m.Note,
		IsDelayed:   m.IsDelayed,
		DelayReason: m.DelayReason,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// DeliveryTrackingModelFromDomain creates a persistence model from a tracking event
func DeliveryTrackingModelFromDomain(t *purchase.DeliveryTracking) *DeliveryTrackingModel {
	return &DeliveryTrackingModel{
		ID:          t.ID,
		POID:        t.POID,
		Status:      t.Status,
		Location:    t.Location,
		Note:        t.Note,
		IsDelayed:   t.IsDelayed,
		DelayReason: t.DelayReason,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}
