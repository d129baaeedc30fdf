package purchase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/shopspring/decimal"
)

// DefaultVATRate is the Vietnamese standard VAT rate applied to every PO
var DefaultVATRate = decimal.RequireFromString("0.10")

// Status represents the status of a purchase order
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSent      Status = "sent"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AwaitingDeliveryStatuses are the statuses in which a PO can become overdue
var AwaitingDeliveryStatuses = []Status{StatusApproved, StatusSent, StatusInTransit}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSent, StatusInTransit,
		StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusApproved || target == StatusRejected || target == StatusCancelled
	case StatusApproved:
		return target == StatusSent || target == StatusInTransit || target == StatusDelivered || target == StatusCancelled
	case StatusSent:
		return target == StatusInTransit || target == StatusDelivered || target == StatusCancelled
	case StatusInTransit:
		return target == StatusDelivered || target == StatusCancelled
	case StatusDelivered:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCompleted, StatusRejected, StatusCancelled:
		return false
	}
	return false
}

// IsAwaitingDelivery reports whether goods are still expected
func (s Status) IsAwaitingDelivery() bool {
	return s == StatusApproved || s == StatusSent || s == StatusInTransit
}

// PurchaseOrderItem is a line copied from the selected quotation.
// It is owned by the PO and never follows later quotation edits.
type PurchaseOrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	MaterialID   uuid.UUID
	MaterialName string
	Unit         string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Amount       decimal.Decimal
}

// PurchaseOrder is an order placed with the winning supplier (PO#####)
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	Code            string
	QuotationID     uuid.UUID
	RequestID       uuid.UUID
	ProjectID       uuid.UUID
	SupplierID      uuid.UUID
	CreatedBy       uuid.UUID
	TotalAmount     decimal.Decimal
	VATAmount       decimal.Decimal
	GrandTotal      decimal.Decimal
	PaymentTerms    string
	DeliveryAddress string
	DeliveryDate    *time.Time
	ActualDelivery  *time.Time
	Note            string
	Status          Status
	SentAt          *time.Time
	CancelledAt     *time.Time
	CancelReason    string
	Items           []PurchaseOrderItem
	Approvals       approval.Chain
}

// FromQuotationInput carries what CreateFromQuotation needs besides the quotation
type FromQuotationInput struct {
	Code            string
	RequestID       uuid.UUID
	ProjectID       uuid.UUID
	CreatedBy       uuid.UUID
	DeliveryAddress string
	DeliveryDate    *time.Time
	Note            string
	VATRate         decimal.Decimal
	ApprovalLevels  int
}

// NewFromQuotation creates a pending PO from a selected quotation.
// VAT is total × rate rounded to 2 places; grand total is total + VAT.
func NewFromQuotation(q *sourcing.Quotation, in FromQuotationInput) (*PurchaseOrder, error) {
	if q == nil {
		return nil, shared.NewNotFoundError("Quotation", uuid.Nil)
	}
	if !q.IsSelected() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("Quotation %s is %s, only the selected quotation can become a PO", q.Code, q.Status)).
			WithDetail("status", string(q.Status))
	}
	if in.Code == "" {
		return nil, shared.NewValidationError("PO code cannot be empty")
	}
	rate := in.VATRate
	if rate.IsZero() {
		rate = DefaultVATRate
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("VAT rate cannot be negative")
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              in.Code,
		QuotationID:       q.ID,
		RequestID:         in.RequestID,
		ProjectID:         in.ProjectID,
		SupplierID:        q.SupplierID,
		CreatedBy:         in.CreatedBy,
		TotalAmount:       q.TotalAmount,
		PaymentTerms:      q.PaymentTerms,
		DeliveryAddress:   in.DeliveryAddress,
		DeliveryDate:      in.DeliveryDate,
		Note:              in.Note,
		Status:            StatusPending,
		Items:             make([]PurchaseOrderItem, len(q.Items)),
	}
	po.VATAmount = q.TotalAmount.Mul(rate).Round(2)
	po.GrandTotal = q.TotalAmount.Add(po.VATAmount)
	for i, item := range q.Items {
		po.Items[i] = PurchaseOrderItem{
			ID:           uuid.New(),
			OrderID:      po.ID,
			MaterialID:   item.MaterialID,
			MaterialName: item.MaterialName,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Amount:       item.Amount,
		}
	}

	levels := in.ApprovalLevels
	if levels == 0 {
		levels = approval.DefaultLevels
	}
	chain, err := approval.Initialize(approval.OwnerPurchaseOrder, po.ID, levels)
	if err != nil {
		return nil, err
	}
	po.Approvals = chain

	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

// Act records a decision on the next pending approval level and syncs
// the PO status with the chain outcome
func (po *PurchaseOrder) Act(in approval.ActInput, policy approval.LevelPolicy, now time.Time) (*approval.Approval, approval.Outcome, error) {
	acted, err := po.Approvals.Act(in, policy, now)
	if err != nil {
		return nil, approval.OutcomePending, err
	}
	outcome := po.Approvals.Outcome()
	switch outcome {
	case approval.OutcomeApproved:
		if err := po.transition(StatusApproved); err != nil {
			return nil, outcome, err
		}
		po.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(po, StatusPending))
	case approval.OutcomeRejected:
		if err := po.transition(StatusRejected); err != nil {
			return nil, outcome, err
		}
		po.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(po, StatusPending))
	default:
		po.Touch()
	}
	return acted, outcome, nil
}

// Send marks the PO as sent to the supplier
func (po *PurchaseOrder) Send(now time.Time) error {
	if err := po.transition(StatusSent); err != nil {
		return err
	}
	po.SentAt = &now
	return nil
}

// Cancel is the administrative override available before completion
func (po *PurchaseOrder) Cancel(reason string, now time.Time) error {
	from := po.Status
	if err := po.transition(StatusCancelled); err != nil {
		return err
	}
	po.CancelledAt = &now
	po.CancelReason = reason
	po.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(po, from))
	return nil
}

// MarkDelivered forces the PO to delivered and stamps the actual delivery
// time. Already-delivered POs are left as they are.
func (po *PurchaseOrder) MarkDelivered(now time.Time) error {
	if po.Status == StatusDelivered {
		return nil
	}
	from := po.Status
	if err := po.transition(StatusDelivered); err != nil {
		return err
	}
	po.ActualDelivery = &now
	po.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(po, from))
	return nil
}

// MarkInTransit moves a shipped PO to in_transit; repeated calls are no-ops
func (po *PurchaseOrder) MarkInTransit() error {
	if po.Status == StatusInTransit {
		return nil
	}
	return po.transition(StatusInTransit)
}

// Complete closes the PO once it is paid
func (po *PurchaseOrder) Complete() error {
	from := po.Status
	if err := po.transition(StatusCompleted); err != nil {
		return err
	}
	po.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(po, from))
	return nil
}

// IsOverdue reports whether goods are still expected after the delivery date
func (po *PurchaseOrder) IsOverdue(now time.Time) bool {
	return po.Status.IsAwaitingDelivery() && po.DeliveryDate != nil && po.DeliveryDate.Before(now)
}

// DaysLate returns whole days elapsed since the delivery date
func (po *PurchaseOrder) DaysLate(now time.Time) int {
	if po.DeliveryDate == nil || !po.DeliveryDate.Before(now) {
		return 0
	}
	return int(now.Sub(*po.DeliveryDate) / (24 * time.Hour))
}

// AcceptsDelivery reports whether goods can be received against the PO
func (po *PurchaseOrder) AcceptsDelivery() bool {
	return po.Status.IsAwaitingDelivery() || po.Status == StatusDelivered
}

func (po *PurchaseOrder) transition(target Status) error {
	if !po.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot move PO %s from %s to %s", po.Code, po.Status, target)).
			WithDetail("status", string(po.Status))
	}
	po.Status = target
	po.Touch()
	return nil
}
