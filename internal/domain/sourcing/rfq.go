package sourcing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// MinInvitedSuppliers is the smallest field that makes a price comparison meaningful
const MinInvitedSuppliers = 2

// RFQStatus represents the status of a request for quotation
type RFQStatus string

const (
	RFQStatusSent   RFQStatus = "sent"
	RFQStatusClosed RFQStatus = "closed"
)

// IsValid checks if the status is a valid RFQStatus
func (s RFQStatus) IsValid() bool {
	return s == RFQStatusSent || s == RFQStatusClosed
}

// RFQItem is a material to be quoted. Quantity is the shortfall only.
type RFQItem struct {
	ID           uuid.UUID
	RFQID        uuid.UUID
	MaterialID   uuid.UUID
	MaterialName string
	Unit         string
	Quantity     decimal.Decimal
	Note         string
}

// RFQ is a competitive bid invitation for the purchase part of a request (RFQ#####)
type RFQ struct {
	shared.BaseAggregateRoot
	Code        string
	RequestID   uuid.UUID
	Title       string
	Description string
	Deadline    time.Time
	Status      RFQStatus
	CreatedBy   uuid.UUID
	SupplierIDs []uuid.UUID
	Items       []RFQItem
}

// NewRFQInput carries everything needed to open an RFQ
type NewRFQInput struct {
	Code        string
	RequestID   uuid.UUID
	ProjectName string
	CreatedBy   uuid.UUID
	Deadline    time.Time
	Description string
	SupplierIDs []uuid.UUID
	Shortfall   []stock.ItemAnalysis
}

// ComputeNeedPurchase keeps only the lines with something to buy.
// It fails with AllFulfillableFromStock when nothing needs purchasing.
func ComputeNeedPurchase(analysis stock.FulfillmentAnalysis) ([]stock.ItemAnalysis, error) {
	shortfall := analysis.Shortfall()
	if len(shortfall) == 0 {
		return nil, shared.ErrAllFulfillableFromStock.WithDetail("request_id", analysis.RequestID.String())
	}
	return shortfall, nil
}

// ValidateSuppliers requires at least minimum distinct suppliers and returns
// them de-duplicated in input order. The floor never drops below
// MinInvitedSuppliers.
func ValidateSuppliers(ids []uuid.UUID, minimum int) ([]uuid.UUID, error) {
	if minimum < MinInvitedSuppliers {
		minimum = MinInvitedSuppliers
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) < minimum {
		return nil, shared.NewValidationError(fmt.Sprintf("At least %d suppliers must be invited", minimum)).
			WithDetail("supplier_count", len(out))
	}
	return out, nil
}

// NewRFQ opens an RFQ in status sent with one item per shortfall line
func NewRFQ(in NewRFQInput) (*RFQ, error) {
	suppliers, err := ValidateSuppliers(in.SupplierIDs, MinInvitedSuppliers)
	if err != nil {
		return nil, err
	}
	if len(in.Shortfall) == 0 {
		return nil, shared.ErrAllFulfillableFromStock
	}
	if in.Code == "" {
		return nil, shared.NewValidationError("RFQ code cannot be empty")
	}
	if in.Deadline.IsZero() {
		return nil, shared.NewValidationError("RFQ deadline is required")
	}

	rfq := &RFQ{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              in.Code,
		RequestID:         in.RequestID,
		Title:             "Yêu cầu báo giá - " + in.ProjectName,
		Description:       DescribeShortfall(in.Description, in.Shortfall),
		Deadline:          in.Deadline,
		Status:            RFQStatusSent,
		CreatedBy:         in.CreatedBy,
		SupplierIDs:       suppliers,
		Items:             make([]RFQItem, 0, len(in.Shortfall)),
	}
	for _, line := range in.Shortfall {
		if !line.NeedToBuy.IsPositive() {
			continue
		}
		rfq.Items = append(rfq.Items, RFQItem{
			ID:           uuid.New(),
			RFQID:        rfq.ID,
			MaterialID:   line.MaterialID,
			MaterialName: line.MaterialName,
			Unit:         line.Unit,
			Quantity:     line.NeedToBuy,
			Note:         fmt.Sprintf("Yêu cầu: %s, Tồn kho: %s", line.Requested, line.Stock),
		})
	}
	rfq.AddDomainEvent(NewRFQCreatedEvent(rfq))
	return rfq, nil
}

// DescribeShortfall appends the stock analysis to a free-text description
func DescribeShortfall(description string, shortfall []stock.ItemAnalysis) string {
	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\n\nPhân tích tồn kho:\n")
	for _, line := range shortfall {
		fmt.Fprintf(&b, "- %s: Yêu cầu %s, Tồn kho %s → Cần mua %s\n",
			line.MaterialName, line.Requested, line.Stock, line.NeedToBuy)
	}
	return b.String()
}

// IsOpen reports whether quotations are still accepted
func (r *RFQ) IsOpen() bool {
	return r.Status == RFQStatusSent
}

// Invited reports whether a supplier was invited to quote
func (r *RFQ) Invited(supplierID uuid.UUID) bool {
	for _, id := range r.SupplierIDs {
		if id == supplierID {
			return true
		}
	}
	return false
}

// ItemFor returns the RFQ line for a material
func (r *RFQ) ItemFor(materialID uuid.UUID) (RFQItem, bool) {
	for _, item := range r.Items {
		if item.MaterialID == materialID {
			return item, true
		}
	}
	return RFQItem{}, false
}

// Close stops accepting quotations
func (r *RFQ) Close() error {
	if r.Status == RFQStatusClosed {
		return shared.NewInvalidStateError(fmt.Sprintf("RFQ %s is already closed", r.Code))
	}
	r.Status = RFQStatusClosed
	r.Touch()
	return nil
}
