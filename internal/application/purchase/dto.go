package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest turns the selected quotation into a PO
type CreatePurchaseOrderRequest struct {
	QuotationID     uuid.UUID  `json:"quotation_id" binding:"required"`
	DeliveryAddress string     `json:"delivery_address" binding:"max=500"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	Note            string     `json:"note"`
}

// ApprovePurchaseOrderRequest signs the next pending level of a PO
type ApprovePurchaseOrderRequest struct {
	Decision  approval.Decision `json:"decision" binding:"required,oneof=approved rejected"`
	Comment   string            `json:"comment" binding:"max=1000"`
	Signature string            `json:"signature"`
}

// CancelPurchaseOrderRequest represents a request to cancel a PO
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PurchaseOrderListFilter represents list filters
type PurchaseOrderListFilter struct {
	Status     *purchase.Status `form:"status"`
	SupplierID *uuid.UUID       `form:"supplier_id"`
	ProjectID  *uuid.UUID       `form:"project_id"`
	Search     string           `form:"search"`
	Page       int              `form:"page"`
	PageSize   int              `form:"page_size"`
}

// PurchaseOrderItemResponse represents a PO line
type PurchaseOrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
}

// ApprovalResponse represents one signed or pending level
type ApprovalResponse struct {
	ID         uuid.UUID       `json:"id"`
	Level      int             `json:"level"`
	Status     approval.Status `json:"status"`
	ApproverID *uuid.UUID      `json:"approver_id,omitempty"`
	Comment    string          `json:"comment,omitempty"`
	Signature  string          `json:"signature,omitempty"`
	ActedAt    *time.Time      `json:"acted_at,omitempty"`
}

// PurchaseOrderResponse represents a PO in API responses
type PurchaseOrderResponse struct {
	ID              uuid.UUID                   `json:"id"`
	Code            string                      `json:"code"`
	QuotationID     uuid.UUID                   `json:"quotation_id"`
	RequestID       uuid.UUID                   `json:"request_id"`
	ProjectID       uuid.UUID                   `json:"project_id"`
	SupplierID      uuid.UUID                   `json:"supplier_id"`
	CreatedBy       uuid.UUID                   `json:"created_by"`
	TotalAmount     decimal.Decimal             `json:"total_amount"`
	VATAmount       decimal.Decimal             `json:"vat_amount"`
	GrandTotal      decimal.Decimal             `json:"grand_total"`
	PaymentTerms    string                      `json:"payment_terms,omitempty"`
	DeliveryAddress string                      `json:"delivery_address,omitempty"`
	DeliveryDate    *time.Time                  `json:"delivery_date,omitempty"`
	ActualDelivery  *time.Time                  `json:"actual_delivery,omitempty"`
	Note            string                      `json:"note,omitempty"`
	Status          purchase.Status             `json:"status"`
	SentAt          *time.Time                  `json:"sent_at,omitempty"`
	CancelledAt     *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason    string                      `json:"cancel_reason,omitempty"`
	CurrentLevel    int                         `json:"current_level"`
	Items           []PurchaseOrderItemResponse `json:"items"`
	Approvals       []ApprovalResponse          `json:"approvals"`
	CreatedAt       time.Time                   `json:"created_at"`
	Version         int                         `json:"version"`
}

// ApprovePurchaseOrderResult carries the updated PO and the chain outcome
type ApprovePurchaseOrderResult struct {
	Order   PurchaseOrderResponse `json:"order"`
	Acted   ApprovalResponse      `json:"acted"`
	Outcome approval.Outcome      `json:"outcome"`
}

// SendPurchaseOrderResult carries the sent PO and whether the supplier was mailed
type SendPurchaseOrderResult struct {
	Order     PurchaseOrderResponse `json:"order"`
	EmailSent bool                  `json:"email_sent"`
}

// DeliveredQuantityInput is the counted quantity of one PO material
type DeliveredQuantityInput struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"decimal_nonnegative"`
}

// RecordDeliveryRequest records the site's receiving report
type RecordDeliveryRequest struct {
	POID           uuid.UUID                `json:"po_id" binding:"required"`
	DeliveryDate   *time.Time               `json:"delivery_date"`
	ReceivedBy     string                   `json:"received_by" binding:"required,max=200"`
	ActualQuantity []DeliveredQuantityInput `json:"actual_quantity" binding:"omitempty,dive"`
	QualityStatus  purchase.QualityStatus   `json:"quality_status" binding:"omitempty,oneof=ok partial ng"`
	Note           string                   `json:"note"`
}

// DeliveryResponse represents a delivery in API responses
type DeliveryResponse struct {
	ID             uuid.UUID                    `json:"id"`
	POID           uuid.UUID                    `json:"po_id"`
	DeliveryDate   time.Time                    `json:"delivery_date"`
	ReceivedBy     string                       `json:"received_by"`
	RecordedBy     uuid.UUID                    `json:"recorded_by"`
	ActualQuantity []purchase.DeliveredQuantity `json:"actual_quantity"`
	QualityStatus  purchase.QualityStatus       `json:"quality_status"`
	Photos         []string                     `json:"photos"`
	Note           string                       `json:"note,omitempty"`
	CreatedAt      time.Time                    `json:"created_at"`
}

// PhotoUploadResult carries the stored key and a download link
type PhotoUploadResult struct {
	StorageKey  string    `json:"storage_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreatePaymentRequest raises a payment order (UNC) against a PO.
// A zero amount defaults to the PO grand total.
type CreatePaymentRequest struct {
	POID           uuid.UUID              `json:"po_id" binding:"required"`
	Amount         decimal.Decimal        `json:"amount"`
	Method         purchase.PaymentMethod `json:"method" binding:"required,oneof=bank_transfer cash check"`
	Type           purchase.PaymentType   `json:"type" binding:"required,oneof=prepay postpay"`
	InvoiceNumber  string                 `json:"invoice_number" binding:"max=100"`
	VATInvoiceRef  string                 `json:"vat_invoice_ref" binding:"max=500"`
	DeliveryNote   string                 `json:"delivery_note"`
	AcceptanceNote string                 `json:"acceptance_note"`
	Note           string                 `json:"note"`
}

// CheckDocumentsRequest asks which payment documents are present
type CheckDocumentsRequest struct {
	POID          uuid.UUID            `json:"po_id" binding:"required"`
	Type          purchase.PaymentType `json:"type" binding:"required,oneof=prepay postpay"`
	VATInvoiceRef string               `json:"vat_invoice_ref"`
}

// ApprovePaymentRequest approves or rejects a pending payment
type ApprovePaymentRequest struct {
	Approved bool   `json:"approved"`
	Note     string `json:"note" binding:"max=1000"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID             uuid.UUID              `json:"id"`
	POID           uuid.UUID              `json:"po_id"`
	UNCNumber      string                 `json:"unc_number"`
	Amount         decimal.Decimal        `json:"amount"`
	Method         purchase.PaymentMethod `json:"method"`
	Type           purchase.PaymentType   `json:"type"`
	Status         purchase.PaymentStatus `json:"status"`
	InvoiceNumber  string                 `json:"invoice_number,omitempty"`
	VATInvoiceRef  string                 `json:"vat_invoice_ref,omitempty"`
	DeliveryNote   string                 `json:"delivery_note,omitempty"`
	AcceptanceNote string                 `json:"acceptance_note,omitempty"`
	Note           string                 `json:"note,omitempty"`
	CreatedBy      uuid.UUID              `json:"created_by"`
	ApprovedBy     *uuid.UUID             `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time             `json:"approved_at,omitempty"`
	PaidAt         *time.Time             `json:"paid_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ApprovePaymentResult carries the payment and the PO status afterwards
type ApprovePaymentResult struct {
	Payment     PaymentResponse `json:"payment"`
	OrderStatus purchase.Status `json:"order_status"`
}

// RecordTrackingRequest appends a tracking event to a PO
type RecordTrackingRequest struct {
	POID        uuid.UUID `json:"po_id" binding:"required"`
	Status      string    `json:"status" binding:"required,max=50"`
	Location    string    `json:"location" binding:"max=255"`
	Note        string    `json:"note"`
	IsDelayed   bool      `json:"is_delayed"`
	DelayReason string    `json:"delay_reason"`
}

// TrackingResponse represents a tracking event
type TrackingResponse struct {
	ID          uuid.UUID  `json:"id"`
	POID        uuid.UUID  `json:"po_id"`
	Status      string     `json:"status"`
	Location    string     `json:"location,omitempty"`
	Note        string     `json:"note,omitempty"`
	IsDelayed   bool       `json:"is_delayed"`
	DelayReason string     `json:"delay_reason,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RecordTrackingResult carries the event and the PO status afterwards
type RecordTrackingResult struct {
	Tracking    TrackingResponse `json:"tracking"`
	OrderStatus purchase.Status  `json:"order_status"`
}

// ScanItem describes one PO visited by the overdue scan
type ScanItem struct {
	POID     uuid.UUID `json:"po_id"`
	Code     string    `json:"code"`
	DaysLate int       `json:"days_late"`
	Outcome  string    `json:"outcome"`
	Error    string    `json:"error,omitempty"`
}

// Scan outcomes
const (
	ScanFlagged = "flagged"
	ScanSkipped = "skipped"
	ScanFailed  = "failed"
)

// ScanResult summarizes one overdue scan run
type ScanResult struct {
	Checked int        `json:"checked"`
	Flagged int        `json:"flagged"`
	Skipped int        `json:"skipped"`
	Failed  int        `json:"failed"`
	Items   []ScanItem `json:"items"`
}

// ToPurchaseOrderResponse converts a domain PO to a response
func ToPurchaseOrderResponse(po *purchase.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(po.Items))
	for i, item := range po.Items {
		items[i] = PurchaseOrderItemResponse{
			ID:           item.ID,
			MaterialID:   item.MaterialID,
			MaterialName: item.MaterialName,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Amount:       item.Amount,
		}
	}
	sorted := po.Approvals.Sorted()
	approvals := make([]ApprovalResponse, len(sorted))
	for i := range sorted {
		approvals[i] = ToApprovalResponse(&sorted[i])
	}
	return PurchaseOrderResponse{
		ID:              po.ID,
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
		CurrentLevel:    po.Approvals.CurrentLevel(),
		Items:           items,
		Approvals:       approvals,
		CreatedAt:       po.CreatedAt,
		Version:         po.Version,
	}
}

// ToPurchaseOrderResponses converts a slice of POs
func ToPurchaseOrderResponses(orders []purchase.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out
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

// ToDeliveryResponse converts a delivery
func ToDeliveryResponse(d *purchase.Delivery) DeliveryResponse {
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	return DeliveryResponse{
		ID:             d.ID,
		POID:           d.POID,
		DeliveryDate:   d.DeliveryDate,
		ReceivedBy:     d.ReceivedBy,
		RecordedBy:     d.RecordedBy,
		ActualQuantity: d.ActualQuantity,
		QualityStatus:  d.QualityStatus,
		Photos:         photos,
		Note:           d.Note,
		CreatedAt:      d.CreatedAt,
	}
}

// ToPaymentResponse converts a payment
func ToPaymentResponse(p *purchase.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
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
		CreatedAt:      p.CreatedAt,
	}
}

// ToTrackingResponse converts a tracking event
func ToTrackingResponse(t *purchase.DeliveryTracking) TrackingResponse {
	return TrackingResponse{
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
