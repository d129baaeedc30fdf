package purchase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the supplier is paid
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	return m == MethodBankTransfer || m == MethodCash || m == MethodCheck
}

// PaymentType says whether payment precedes or follows delivery
type PaymentType string

const (
	TypePrepay  PaymentType = "prepay"
	TypePostpay PaymentType = "postpay"
)

// IsValid checks if the type is known
func (t PaymentType) IsValid() bool {
	return t == TypePrepay || t == TypePostpay
}

// PaymentStatus represents the status of a payment order
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Document names shown to accountants
const (
	DocPurchaseOrder = "Đơn đặt hàng (PO)"
	DocDeliveryNote  = "Biên bản giao nhận (chưa kiểm hàng)"
	DocVATInvoice    = "Hóa đơn VAT"

	DefaultDeliveryNote   = "Đã có biên bản giao nhận"
	DefaultAcceptanceNote = "Đã nghiệm thu đạt yêu cầu"
)

// Document is one entry of a payment checklist
type Document struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Exists   bool   `json:"exists"`
	Required bool   `json:"required"`
}

// DocumentChecklist tells whether a payment can be raised
type DocumentChecklist struct {
	CanProceed      bool       `json:"can_proceed"`
	Documents       []Document `json:"documents"`
	MissingRequired []string   `json:"missing_required"`
	Message         string     `json:"message"`
}

// CheckDocuments builds the checklist; postpay needs the delivery record
// and a VAT invoice
func CheckDocuments(paymentType PaymentType, hasDelivery bool, vatInvoiceRef string) DocumentChecklist {
	postpay := paymentType == TypePostpay
	docs := []Document{
		{Key: "po", Name: DocPurchaseOrder, Exists: true},
		{Key: "delivery", Name: DocDeliveryNote, Exists: hasDelivery, Required: postpay},
		{Key: "vat_invoice", Name: DocVATInvoice, Exists: strings.TrimSpace(vatInvoiceRef) != "", Required: postpay},
	}
	missing := make([]string, 0)
	for _, doc := range docs {
		if doc.Required && !doc.Exists {
			missing = append(missing, doc.Name)
		}
	}
	checklist := DocumentChecklist{
		CanProceed:      len(missing) == 0,
		Documents:       docs,
		MissingRequired: missing,
		Message:         "Đủ chứng từ để thanh toán",
	}
	if !checklist.CanProceed {
		checklist.Message = "Thiếu: " + strings.Join(missing, ", ")
	}
	return checklist
}

// Payment is the payment order (UNC) raised against a PO. At most one per PO.
type Payment struct {
	shared.BaseAggregateRoot
	POID           uuid.UUID
	UNCNumber      string
	Amount         decimal.Decimal
	Method         PaymentMethod
	Type           PaymentType
	Status         PaymentStatus
	InvoiceNumber  string
	VATInvoiceRef  string
	DeliveryNote   string
	AcceptanceNote string
	Note           string
	CreatedBy      uuid.UUID
	ApprovedBy     *uuid.UUID
	ApprovedAt     *time.Time
	PaidAt         *time.Time
}

// PaymentInput carries a payment request
type PaymentInput struct {
	UNCNumber      string
	Amount         decimal.Decimal
	Method         PaymentMethod
	Type           PaymentType
	InvoiceNumber  string
	VATInvoiceRef  string
	DeliveryNote   string
	AcceptanceNote string
	Note           string
	CreatedBy      uuid.UUID
}

// NewPayment creates a pending payment. A postpay payment fails with a
// validation error listing the missing documents.
func NewPayment(po *PurchaseOrder, hasDelivery bool, in PaymentInput) (*Payment, error) {
	if !in.Method.IsValid() {
		return nil, shared.NewValidationError("Payment method must be bank_transfer, cash or check")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("Payment type must be prepay or postpay")
	}
	if checklist := CheckDocuments(in.Type, hasDelivery, in.VATInvoiceRef); !checklist.CanProceed {
		return nil, shared.NewMissingDocumentsError(checklist.MissingRequired)
	}
	if po.Status == StatusRejected || po.Status == StatusCancelled || po.Status == StatusPending {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("PO %s is %s and cannot be paid", po.Code, po.Status)).
			WithDetail("status", string(po.Status))
	}
	amount := in.Amount
	if amount.IsZero() {
		amount = po.GrandTotal
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if in.DeliveryNote == "" {
		in.DeliveryNote = DefaultDeliveryNote
	}
	if in.AcceptanceNote == "" {
		in.AcceptanceNote = DefaultAcceptanceNote
	}
	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		POID:              po.ID,
		UNCNumber:         in.UNCNumber,
		Amount:            amount.Round(2),
		Method:            in.Method,
		Type:              in.Type,
		Status:            PaymentStatusPending,
		InvoiceNumber:     in.InvoiceNumber,
		VATInvoiceRef:     in.VATInvoiceRef,
		DeliveryNote:      in.DeliveryNote,
		AcceptanceNote:    in.AcceptanceNote,
		Note:              in.Note,
		CreatedBy:         in.CreatedBy,
	}
	return p, nil
}

// Approve signs off the payment and marks it paid in one step
func (p *Payment) Approve(approverID uuid.UUID, note string, now time.Time) error {
	if err := p.requirePending(); err != nil {
		return err
	}
	p.Status = PaymentStatusApproved
	p.ApprovedBy = &approverID
	p.ApprovedAt = &now
	if note != "" {
		p.Note = note
	}
	p.Status = PaymentStatusPaid
	p.PaidAt = &now
	p.Touch()
	return nil
}

// Reject cancels the payment request
func (p *Payment) Reject(approverID uuid.UUID, note string, now time.Time) error {
	if err := p.requirePending(); err != nil {
		return err
	}
	p.Status = PaymentStatusCancelled
	p.ApprovedBy = &approverID
	p.ApprovedAt = &now
	if note != "" {
		p.Note = note
	}
	p.Touch()
	return nil
}

func (p *Payment) requirePending() error {
	if p.Status != PaymentStatusPending {
		return shared.NewAlreadyProcessedError(fmt.Sprintf("Payment %s is already %s", p.UNCNumber, p.Status)).
			WithDetail("status", string(p.Status))
	}
	return nil
}
