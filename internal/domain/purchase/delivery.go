package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QualityStatus is the outcome of the goods inspection
type QualityStatus string

const (
	QualityOK      QualityStatus = "ok"
	QualityPartial QualityStatus = "partial"
	QualityNG      QualityStatus = "ng"
)

// IsValid checks if the quality status is known
func (q QualityStatus) IsValid() bool {
	return q == QualityOK || q == QualityPartial || q == QualityNG
}

// DeliveredQuantity is the counted quantity of one material
type DeliveredQuantity struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Delivery is the goods-received record of a PO. At most one per PO.
type Delivery struct {
	ID             uuid.UUID
	POID           uuid.UUID
	DeliveryDate   time.Time
	ReceivedBy     string
	RecordedBy     uuid.UUID
	ActualQuantity []DeliveredQuantity
	QualityStatus  QualityStatus
	Photos         []string
	Note           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DeliveryInput carries the site's delivery report
type DeliveryInput struct {
	DeliveryDate   time.Time
	ReceivedBy     string
	RecordedBy     uuid.UUID
	ActualQuantity []DeliveredQuantity
	QualityStatus  QualityStatus
	Photos         []string
	Note           string
}

// NewDelivery validates the report against the PO lines
func NewDelivery(po *PurchaseOrder, in DeliveryInput, now time.Time) (*Delivery, error) {
	if in.ReceivedBy == "" {
		return nil, shared.NewValidationError("Receiver name is required")
	}
	if in.QualityStatus == "" {
		in.QualityStatus = QualityOK
	}
	if !in.QualityStatus.IsValid() {
		return nil, shared.NewValidationError("Quality status must be ok, partial or ng")
	}
	ordered := make(map[uuid.UUID]struct{}, len(po.Items))
	for _, item := range po.Items {
		ordered[item.MaterialID] = struct{}{}
	}
	for _, q := range in.ActualQuantity {
		if _, ok := ordered[q.MaterialID]; !ok {
			return nil, shared.NewValidationError("Delivered material is not on the purchase order").
				WithDetail("material_id", q.MaterialID.String())
		}
		if q.Quantity.IsNegative() {
			return nil, shared.NewValidationError("Delivered quantity cannot be negative")
		}
	}
	deliveryDate := in.DeliveryDate
	if deliveryDate.IsZero() {
		deliveryDate = now
	}
	return &Delivery{
		ID:             uuid.New(),
		POID:           po.ID,
		DeliveryDate:   deliveryDate,
		ReceivedBy:     in.ReceivedBy,
		RecordedBy:     in.RecordedBy,
		ActualQuantity: in.ActualQuantity,
		QualityStatus:  in.QualityStatus,
		Photos:         in.Photos,
		Note:           in.Note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AddPhoto attaches a stored photo key
func (d *Delivery) AddPhoto(key string) {
	d.Photos = append(d.Photos, key)
	d.UpdatedAt = time.Now()
}
