package sourcing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuotationStatus represents the status of a supplier quotation
type QuotationStatus string

const (
	QuotationStatusPending  QuotationStatus = "pending"
	QuotationStatusSelected QuotationStatus = "selected"
	QuotationStatusRejected QuotationStatus = "rejected"
)

// IsValid checks if the status is a valid QuotationStatus
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusPending, QuotationStatusSelected, QuotationStatusRejected:
		return true
	}
	return false
}

// QuotationItem is one priced line
type QuotationItem struct {
	ID           uuid.UUID
	QuotationID  uuid.UUID
	MaterialID   uuid.UUID
	MaterialName string
	Unit         string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Amount       decimal.Decimal
	Note         string
}

// QuotationLine is a priced line submitted by a supplier
type QuotationLine struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Note       string
}

// Quotation is a supplier's answer to an RFQ (BG#####)
type Quotation struct {
	shared.BaseAggregateRoot
	Code             string
	RFQID            uuid.UUID
	SupplierID       uuid.UUID
	TotalAmount      decimal.Decimal
	DeliveryTimeDays int
	PaymentTerms     string
	ValidUntil       *time.Time
	Note             string
	Status           QuotationStatus
	SubmittedAt      time.Time
	Items            []QuotationItem
}

// SubmitInput carries a supplier's quotation
type SubmitInput struct {
	Code             string
	SupplierID       uuid.UUID
	DeliveryTimeDays int
	PaymentTerms     string
	ValidUntil       *time.Time
	Note             string
	Lines            []QuotationLine
}

// Submit creates a pending quotation against an open RFQ.
// Amounts are quantity × unit price and the total is their sum.
func (r *RFQ) Submit(in SubmitInput, now time.Time) (*Quotation, error) {
	if !r.IsOpen() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("RFQ %s no longer accepts quotations", r.Code)).
			WithDetail("status", string(r.Status))
	}
	if len(in.Lines) == 0 {
		return nil, shared.NewValidationError("Quotation needs at least one item")
	}
	if in.DeliveryTimeDays < 0 {
		return nil, shared.NewValidationError("Delivery time cannot be negative")
	}

	q := &Quotation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              in.Code,
		RFQID:             r.ID,
		SupplierID:        in.SupplierID,
		DeliveryTimeDays:  in.DeliveryTimeDays,
		PaymentTerms:      in.PaymentTerms,
		ValidUntil:        in.ValidUntil,
		Note:              in.Note,
		Status:            QuotationStatusPending,
		SubmittedAt:       now,
		TotalAmount:       decimal.Zero,
		Items:             make([]QuotationItem, len(in.Lines)),
	}
	for i, line := range in.Lines {
		rfqItem, ok := r.ItemFor(line.MaterialID)
		if !ok {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: material is not part of RFQ %s", i+1, r.Code)).
				WithDetail("material_id", line.MaterialID.String())
		}
		if !line.Quantity.IsPositive() {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: unit price cannot be negative", i+1))
		}
		amount := line.Quantity.Mul(line.UnitPrice).Round(2)
		q.Items[i] = QuotationItem{
			ID:           uuid.New(),
			QuotationID:  q.ID,
			MaterialID:   line.MaterialID,
			MaterialName: rfqItem.MaterialName,
			Unit:         rfqItem.Unit,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Amount:       amount,
			Note:         line.Note,
		}
		q.TotalAmount = q.TotalAmount.Add(amount)
	}
	return q, nil
}

// IsSelected reports whether this quotation won the RFQ
func (q *Quotation) IsSelected() bool {
	return q.Status == QuotationStatusSelected
}

// Select marks target as the RFQ's winner and rejects every sibling.
// siblings must be all quotations of the RFQ, target included.
func Select(rfq *RFQ, siblings []*Quotation, targetID uuid.UUID) (*Quotation, error) {
	if !rfq.IsOpen() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("RFQ %s is closed, a quotation was already selected", rfq.Code))
	}
	var target *Quotation
	for _, q := range siblings {
		if q.RFQID != rfq.ID {
			return nil, shared.NewValidationError(fmt.Sprintf("Quotation %s does not belong to RFQ %s", q.Code, rfq.Code))
		}
		if q.ID == targetID {
			target = q
		}
	}
	if target == nil {
		return nil, shared.NewNotFoundError("Quotation", targetID)
	}

	for _, q := range siblings {
		if q.ID == targetID {
			q.Status = QuotationStatusSelected
		} else {
			q.Status = QuotationStatusRejected
		}
		q.Touch()
	}
	if err := rfq.Close(); err != nil {
		return nil, err
	}
	rfq.AddDomainEvent(NewQuotationSelectedEvent(rfq, target))
	return target, nil
}
