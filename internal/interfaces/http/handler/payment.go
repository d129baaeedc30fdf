package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppurchase "github.com/procurement/backend/internal/application/purchase"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/purchase"
)

// PaymentService is the payment (UNC) surface used by PaymentHandler
type PaymentService interface {
	CheckDocuments(ctx context.Context, in apppurchase.CheckDocumentsRequest) (*purchase.DocumentChecklist, error)
	CreatePayment(ctx context.Context, actor identity.Actor, in apppurchase.CreatePaymentRequest) (*apppurchase.PaymentResponse, error)
	ApprovePayment(ctx context.Context, actor identity.Actor, paymentID uuid.UUID, in apppurchase.ApprovePaymentRequest) (*apppurchase.ApprovePaymentResult, error)
	GetByPO(ctx context.Context, poID uuid.UUID) (*apppurchase.PaymentResponse, error)
}

// PaymentHandler serves supplier payments
type PaymentHandler struct {
	BaseHandler
	payments PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CheckDocuments godoc
// @ID           checkPaymentDocuments
// @Summary      Document checklist for paying a PO
// @Description  Postpay needs the delivery record and a VAT invoice
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body apppurchase.CheckDocumentsRequest true "PO and payment type"
// @Success      200 {object} Envelope[purchase.DocumentChecklist]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /payments/check-documents [post]
func (h *PaymentHandler) CheckDocuments(c *gin.Context) {
	var req apppurchase.CheckDocumentsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.payments.CheckDocuments(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create godoc
// @ID           createPayment
// @Summary      Raise a payment order (UNC) for a PO
// @Description  Missing documents are listed in error.details.missing_documents
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body apppurchase.CreatePaymentRequest true "Payment"
// @Success      201 {object} Envelope[apppurchase.PaymentResponse]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apppurchase.CreatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.payments.CreatePayment(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Approve godoc
// @ID           approvePayment
// @Summary      Approve or reject a pending payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body apppurchase.ApprovePaymentRequest true "Decision"
// @Success      200 {object} Envelope[apppurchase.ApprovePaymentResult]
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Security     BearerAuth
// @Router       /payments/{id}/approve [post]
func (h *PaymentHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req apppurchase.ApprovePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.payments.ApprovePayment(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByPO godoc
// @ID           getPaymentByPO
// @Summary      Payment of a PO
// @Tags         payments
// @Produce      json
// @Param        poId path string true "PO ID" format(uuid)
// @Success      200 {object} Envelope[apppurchase.PaymentResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /payments/po/{poId} [get]
func (h *PaymentHandler) GetByPO(c *gin.Context) {
	poID, ok := h.pathUUID(c, "poId")
	if !ok {
		return
	}
	result, err := h.payments.GetByPO(c.Request.Context(), poID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
