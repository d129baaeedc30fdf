package evaluation

import (
	"context"

	"github.com/google/uuid"
)

// EvaluationRepository defines the interface for supplier evaluation persistence
type EvaluationRepository interface {
	// FindBySupplier returns evaluations newest first
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]SupplierEvaluation, error)

	// ExistsForEvaluator reports whether the evaluator already rated this PO
	ExistsForEvaluator(ctx context.Context, poID, evaluatorID uuid.UUID) (bool, error)

	Create(ctx context.Context, eval *SupplierEvaluation) error
}
