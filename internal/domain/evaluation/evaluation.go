package evaluation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Score bounds for every criterion
const (
	MinScore = 1
	MaxScore = 5
)

// Scores are the four criteria rated after a PO is delivered
type Scores struct {
	Price    int `json:"price_score"`
	Quality  int `json:"quality_score"`
	Delivery int `json:"delivery_score"`
	Support  int `json:"support_score"`
}

// Validate checks every score is within 1..5
func (s Scores) Validate() error {
	for name, v := range map[string]int{
		"price_score":    s.Price,
		"quality_score":  s.Quality,
		"delivery_score": s.Delivery,
		"support_score":  s.Support,
	} {
		if v < MinScore || v > MaxScore {
			return shared.NewValidationError(fmt.Sprintf("%s must be between %d and %d", name, MinScore, MaxScore)).
				WithDetail("field", name).
				WithDetail("value", v)
		}
	}
	return nil
}

// Average is the mean of the four scores rounded to 2 places
func (s Scores) Average() decimal.Decimal {
	sum := decimal.NewFromInt(int64(s.Price + s.Quality + s.Delivery + s.Support))
	return sum.Div(decimal.NewFromInt(4)).Round(2)
}

// SupplierEvaluation is one evaluator's rating of a supplier on a PO
type SupplierEvaluation struct {
	ID           uuid.UUID
	SupplierID   uuid.UUID
	POID         uuid.UUID
	EvaluatorID  uuid.UUID
	Scores       Scores
	AverageScore decimal.Decimal
	Comment      string
	CreatedAt    time.Time
}

// NewSupplierEvaluation validates the scores and computes the average
func NewSupplierEvaluation(supplierID, poID, evaluatorID uuid.UUID, scores Scores, comment string) (*SupplierEvaluation, error) {
	if supplierID == uuid.Nil || poID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier and purchase order are required")
	}
	if err := scores.Validate(); err != nil {
		return nil, err
	}
	return &SupplierEvaluation{
		ID:           uuid.New(),
		SupplierID:   supplierID,
		POID:         poID,
		EvaluatorID:  evaluatorID,
		Scores:       scores,
		AverageScore: scores.Average(),
		Comment:      comment,
		CreatedAt:    time.Now(),
	}, nil
}

// Rating is the mean of evaluation averages rounded to 2 places, zero
// when there are none
func Rating(evals []SupplierEvaluation) decimal.Decimal {
	if len(evals) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, e := range evals {
		sum = sum.Add(e.AverageScore)
	}
	return sum.Div(decimal.NewFromInt(int64(len(evals)))).Round(2)
}
