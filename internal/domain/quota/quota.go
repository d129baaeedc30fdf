package quota

import (
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaterialQuota caps how much of one material a project may consume (BOQ).
// UsedQuantity never decreases.
type MaterialQuota struct {
	shared.BaseAggregateRoot
	ProjectID    uuid.UUID
	MaterialID   uuid.UUID
	MaxQuantity  decimal.Decimal
	UsedQuantity decimal.Decimal
	CreatedBy    uuid.UUID
}

// NewMaterialQuota creates a quota with nothing used yet
func NewMaterialQuota(projectID, materialID uuid.UUID, maxQuantity decimal.Decimal, createdBy uuid.UUID) (*MaterialQuota, error) {
	if projectID == uuid.Nil || materialID == uuid.Nil {
		return nil, shared.NewValidationError("Project and material are required")
	}
	if err := validateMax(maxQuantity); err != nil {
		return nil, err
	}
	return &MaterialQuota{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		MaterialID:        materialID,
		MaxQuantity:       maxQuantity,
		UsedQuantity:      decimal.Zero,
		CreatedBy:         createdBy,
	}, nil
}

// SetMaxQuantity changes the cap; used quantity is left alone
func (q *MaterialQuota) SetMaxQuantity(maxQuantity decimal.Decimal) error {
	if err := validateMax(maxQuantity); err != nil {
		return err
	}
	q.MaxQuantity = maxQuantity
	q.Touch()
	return nil
}

// AddUsage commits an approved quantity
func (q *MaterialQuota) AddUsage(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewValidationError("Quota usage cannot decrease")
	}
	q.UsedQuantity = q.UsedQuantity.Add(quantity)
	q.Touch()
	return nil
}

// Remaining returns max minus used, floored at zero
func (q *MaterialQuota) Remaining() decimal.Decimal {
	rem := q.MaxQuantity.Sub(q.UsedQuantity)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

func validateMax(maxQuantity decimal.Decimal) error {
	if !maxQuantity.IsPositive() {
		return shared.NewValidationError("Max quantity must be positive")
	}
	return nil
}
