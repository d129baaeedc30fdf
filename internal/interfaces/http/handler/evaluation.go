package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appevaluation "github.com/procurement/backend/internal/application/evaluation"
	"github.com/procurement/backend/internal/domain/identity"
)

// EvaluationService is the supplier rating surface used by EvaluationHandler
type EvaluationService interface {
	Evaluate(ctx context.Context, actor identity.Actor, in appevaluation.EvaluateSupplierRequest) (*appevaluation.EvaluateResult, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) (*appevaluation.SupplierEvaluationsResponse, error)
}

// EvaluationHandler serves supplier evaluations
type EvaluationHandler struct {
	BaseHandler
	evaluations EvaluationService
}

// NewEvaluationHandler creates a new EvaluationHandler
func NewEvaluationHandler(evaluations EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// Evaluate godoc
// @ID           evaluateSupplier
// @Summary      Score a supplier on a completed PO
// @Description  Four 1-5 scores; the supplier rating is recomputed from every evaluation
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Param        request body appevaluation.EvaluateSupplierRequest true "Scores"
// @Success      201 {object} Envelope[appevaluation.EvaluateResult]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Security     BearerAuth
// @Router       /evaluations [post]
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appevaluation.EvaluateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.evaluations.Evaluate(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListBySupplier godoc
// @ID           listSupplierEvaluations
// @Summary      Evaluations and rating of a supplier
// @Tags         evaluations
// @Produce      json
// @Param        supplierId path string true "Supplier ID" format(uuid)
// @Success      200 {object} Envelope[appevaluation.SupplierEvaluationsResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /evaluations/supplier/{supplierId} [get]
func (h *EvaluationHandler) ListBySupplier(c *gin.Context) {
	supplierID, ok := h.pathUUID(c, "supplierId")
	if !ok {
		return
	}
	result, err := h.evaluations.ListBySupplier(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
