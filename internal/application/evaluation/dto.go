package evaluation

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/evaluation"
	"github.com/shopspring/decimal"
)

// EvaluateSupplierRequest rates a supplier on a delivered PO
type EvaluateSupplierRequest struct {
	SupplierID    uuid.UUID `json:"supplier_id" binding:"required"`
	POID          uuid.UUID `json:"po_id" binding:"required"`
	PriceScore    int       `json:"price_score" binding:"required,min=1,max=5"`
	QualityScore  int       `json:"quality_score" binding:"required,min=1,max=5"`
	DeliveryScore int       `json:"delivery_score" binding:"required,min=1,max=5"`
	SupportScore  int       `json:"support_score" binding:"required,min=1,max=5"`
	Comment       string    `json:"comment" binding:"max=2000"`
}

// EvaluationResponse represents an evaluation in API responses
type EvaluationResponse struct {
	ID            uuid.UUID       `json:"id"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	POID          uuid.UUID       `json:"po_id"`
	EvaluatorID   uuid.UUID       `json:"evaluator_id"`
	PriceScore    int             `json:"price_score"`
	QualityScore  int             `json:"quality_score"`
	DeliveryScore int             `json:"delivery_score"`
	SupportScore  int             `json:"support_score"`
	AverageScore  decimal.Decimal `json:"average_score"`
	Comment       string          `json:"comment,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EvaluateResult carries the new evaluation and the supplier's updated rating
type EvaluateResult struct {
	Evaluation     EvaluationResponse `json:"evaluation"`
	SupplierRating decimal.Decimal    `json:"supplier_rating"`
}

// SupplierEvaluationsResponse lists a supplier's evaluations with the rating
type SupplierEvaluationsResponse struct {
	SupplierID  uuid.UUID            `json:"supplier_id"`
	Rating      decimal.Decimal      `json:"rating"`
	Evaluations []EvaluationResponse `json:"evaluations"`
}

// ToEvaluationResponse converts a domain evaluation to a response
func ToEvaluationResponse(e *evaluation.SupplierEvaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:            e.ID,
		SupplierID:    e.SupplierID,
		POID:          e.POID,
		EvaluatorID:   e.EvaluatorID,
		PriceScore:    e.Scores.Price,
		QualityScore:  e.Scores.Quality,
		DeliveryScore: e.Scores.Delivery,
		SupportScore:  e.Scores.Support,
		AverageScore:  e.AverageScore,
		Comment:       e.Comment,
		CreatedAt:     e.CreatedAt,
	}
}
