package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/shopspring/decimal"
)

// RFQModel is the persistence model for a request for quotation (RFQ#####)
type RFQModel struct {
	AggregateModel
	Code        string             `gorm:"type:varchar(20);not null;uniqueIndex"`
	RequestID   uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_rfqs_request_id"`
	Title       string             `gorm:"type:varchar(300);not null"`
	Description string             `gorm:"type:text"`
	Deadline    time.Time          `gorm:"not null"`
	Status      sourcing.RFQStatus `gorm:"type:varchar(20);not null;default:'sent';index"`
	CreatedBy   uuid.UUID          `gorm:"type:uuid;not null"`
	Items       []RFQItemModel     `gorm:"foreignKey:RFQID;references:ID"`
	Suppliers   []RFQSupplierModel `gorm:"foreignKey:RFQID;references:ID"`
}

// TableName returns the table name for GORM
func (RFQModel) TableName() string {
	return "rfqs"
}

// ToDomain converts the persistence model to a domain RFQ
func (m *RFQModel) ToDomain() *sourcing.RFQ {
	rfq := &sourcing.RFQ{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		RequestID:         m.RequestID,
		Title:             m.Title,
		Description:       m.Description,
		Deadline:          m.Deadline,
		Status:            m.Status,
		CreatedBy:         m.CreatedBy,
		SupplierIDs:       make([]uuid.UUID, len(m.Suppliers)),
		Items:             make([]sourcing.RFQItem, len(m.Items)),
	}
	for i, s := range m.Suppliers {
		rfq.SupplierIDs[i] = s.SupplierID
	}
	for i, it := range m.Items {
		rfq.Items[i] = sourcing.RFQItem{
			ID:           it.ID,
			RFQID:        it.RFQID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			Note:         it.Note,
		}
	}
	return rfq
}

// RFQModelFromDomain creates a persistence model with items and invited suppliers
func RFQModelFromDomain(rfq *sourcing.RFQ) *RFQModel {
	m := &RFQModel{
		Code:        rfq.Code,
		RequestID:   rfq.RequestID,
		Title:       rfq.Title,
		Description: rfq.Description,
		Deadline:    rfq.Deadline,
		Status:      rfq.Status,
		CreatedBy:   rfq.CreatedBy,
		Items:       make([]RFQItemModel, len(rfq.Items)),
		Suppliers:   make([]RFQSupplierModel, len(rfq.SupplierIDs)),
	}
	m.SetRoot(rfq.BaseAggregateRoot)
	for i, it := range rfq.Items {
		m.Items[i] = RFQItemModel{
			ID:           it.ID,
			RFQID:        rfq.ID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			Note:         it.Note,
		}
	}
	for i, id := range rfq.SupplierIDs {
		m.Suppliers[i] = RFQSupplierModel{RFQID: rfq.ID, SupplierID: id, Position: i}
	}
	return m
}

// RFQItemModel is a material line of an RFQ
type RFQItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	RFQID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null"`
	MaterialName string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RFQItemModel) TableName() string {
	return "rfq_items"
}

// RFQSupplierModel records an invited supplier; Position keeps invitation order
type RFQSupplierModel struct {
	RFQID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (RFQSupplierModel) TableName() string {
	return "rfq_suppliers"
}

// QuotationModel is the persistence model for a supplier quotation (BG#####)
type QuotationModel struct {
	AggregateModel
	Code             string                   `gorm:"type:varchar(20);not null;uniqueIndex"`
	RFQID            uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_quotation_rfq_supplier,priority:1"`
	SupplierID       uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_quotation_rfq_supplier,priority:2"`
	TotalAmount      decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	DeliveryTimeDays int                      `gorm:"not null;default:0"`
	PaymentTerms     string                   `gorm:"type:varchar(500)"`
	ValidUntil       *time.Time               `gorm:"type:date"`
	Note             string                   `gorm:"type:text"`
	Status           sourcing.QuotationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	SubmittedAt      time.Time                `gorm:"not null"`
	Items            []QuotationItemModel     `gorm:"foreignKey:QuotationID;references:ID"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// ToDomain converts the persistence model to a domain Quotation
func (m *QuotationModel) ToDomain() *sourcing.Quotation {
	q := &sourcing.Quotation{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		RFQID:             m.RFQID,
		SupplierID:        m.SupplierID,
		TotalAmount:       m.TotalAmount,
		DeliveryTimeDays:  m.DeliveryTimeDays,
		PaymentTerms:      m.PaymentTerms,
		ValidUntil:        m.ValidUntil,
		Note:              m.Note,
		Status:            m.Status,
		SubmittedAt:       m.SubmittedAt,
		Items:             make([]sourcing.QuotationItem, len(m.Items)),
	}
	for i, it := range m.Items {
		q.Items[i] = sourcing.QuotationItem{
			ID:           it.ID,
			QuotationID:  it.QuotationID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Amount:       it.Amount,
			Note:         it.Note,
		}
	}
	return q
}

// QuotationModelFromDomain creates a persistence model with its items
func QuotationModelFromDomain(q *sourcing.Quotation) *QuotationModel {
	m := &QuotationModel{
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
		Items:            make([]QuotationItemModel, len(q.Items)),
	}
	m.SetRoot(q.BaseAggregateRoot)
	for i, it := range q.Items {
		m.Items[i] = QuotationItemModel{
			ID:           it.ID,
			QuotationID:  q.ID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Amount:       it.Amount,
			Note:         it.Note,
		}
	}
	return m
}

// QuotationItemModel is a priced line of a quotation
type QuotationItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	QuotationID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null"`
	MaterialName string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Note         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}
