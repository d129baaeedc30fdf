package quota

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Violation describes a requested quantity that would overrun a quota
type Violation struct {
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	MaterialUnit string          `json:"material_unit"`
	Requested    decimal.Decimal `json:"requested"`
	Total        decimal.Decimal `json:"total"`
	Max          decimal.Decimal `json:"max"`
	Exceeded     decimal.Decimal `json:"exceeded"`
}

// Check compares a new requested quantity against a quota.
// uncommitted is the quantity held by other in-flight requests that is not
// yet part of the quota's used quantity. The total is used + uncommitted +
// requested. It returns nil when the total fits.
func Check(q *MaterialQuota, materialName, unit string, requested, uncommitted decimal.Decimal) *Violation {
	total := q.UsedQuantity.Add(uncommitted).Add(requested)
	if total.LessThanOrEqual(q.MaxQuantity) {
		return nil
	}
	return &Violation{
		MaterialID:   q.MaterialID,
		MaterialName: materialName,
		MaterialUnit: unit,
		Requested:    requested,
		Total:        total,
		Max:          q.MaxQuantity,
		Exceeded:     total.Sub(q.MaxQuantity),
	}
}
