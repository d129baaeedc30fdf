package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppurchase "github.com/procurement/backend/internal/application/purchase"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/interfaces/http/dto"
)

// PurchaseOrderService is the PO surface used by PurchaseOrderHandler
type PurchaseOrderService interface {
	CreateFromQuotation(ctx context.Context, actor identity.Actor, in apppurchase.CreatePurchaseOrderRequest) (*apppurchase.PurchaseOrderResponse, error)
	ActOnApproval(ctx context.Context, actor identity.Actor, poID uuid.UUID, req apppurchase.ApprovePurchaseOrderRequest) (*apppurchase.ApprovePurchaseOrderResult, error)
	Send(ctx context.Context, actor identity.Actor, poID uuid.UUID) (*apppurchase.SendPurchaseOrderResult, error)
	Cancel(ctx context.Context, actor identity.Actor, poID uuid.UUID, req apppurchase.CancelPurchaseOrderRequest) (*apppurchase.PurchaseOrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*apppurchase.PurchaseOrderResponse, error)
	List(ctx context.Context, filter apppurchase.PurchaseOrderListFilter) ([]apppurchase.PurchaseOrderResponse, int64, error)
	Export(ctx context.Context, filter apppurchase.PurchaseOrderListFilter) ([]byte, error)
}

// PurchaseOrderHandler serves purchase orders (PO)
type PurchaseOrderHandler struct {
	BaseHandler
	orders PurchaseOrderService
	now    func() time.Time
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, now: time.Now}
}

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a PO from the selected quotation
// @Description  Totals carry 10% VAT; the PO starts pending with its approval chain
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body apppurchase.CreatePurchaseOrderRequest true "PO"
// @Success      201 {object} Envelope[apppurchase.PurchaseOrderResponse]
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apppurchase.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.orders.CreateFromQuotation(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Approve godoc
// @ID           approvePurchaseOrder
// @Summary      Act on the current PO approval level
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "PO ID" format(uuid)
// @Param        request body apppurchase.ApprovePurchaseOrderRequest true "Decision"
// @Success      200 {object} Envelope[apppurchase.ApprovePurchaseOrderResult]
// @Failure      403 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req apppurchase.ApprovePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.orders.ActOnApproval(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Send godoc
// @ID           sendPurchaseOrder
// @Summary      Send an approved PO to the supplier
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "PO ID" format(uuid)
// @Success      200 {object} Envelope[apppurchase.SendPurchaseOrderResult]
// @Failure      403 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/send [post]
func (h *PurchaseOrderHandler) Send(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.orders.Send(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelPurchaseOrder
// @Summary      Cancel a PO that has not shipped
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "PO ID" format(uuid)
// @Param        request body apppurchase.CancelPurchaseOrderRequest true "Reason"
// @Success      200 {object} Envelope[apppurchase.PurchaseOrderResponse]
// @Failure      403 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req apppurchase.CancelPurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.orders.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get godoc
// @ID           getPurchaseOrder
// @Summary      Get a PO
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "PO ID" format(uuid)
// @Success      200 {object} Envelope[apppurchase.PurchaseOrderResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List POs
// @Tags         purchase-orders
// @Produce      json
// @Param        status query string false "Status" Enums(pending, approved, rejected, sent, in_transit, delivered, completed, cancelled)
// @Param        supplier_id query string false "Supplier" format(uuid)
// @Param        project_id query string false "Project" format(uuid)
// @Param        search query string false "PO code"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} Envelope[[]apppurchase.PurchaseOrderResponse]
// @Security     BearerAuth
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	items, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, items, total, dto.PageQuery{Page: filter.Page, PageSize: filter.PageSize})
}

// Export godoc
// @ID           exportPurchaseOrders
// @Summary      Export POs as xlsx
// @Description  Takes the list filters; paging is ignored
// @Tags         purchase-orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status query string false "Status"
// @Param        supplier_id query string false "Supplier" format(uuid)
// @Param        project_id query string false "Project" format(uuid)
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /purchase-orders/export.xlsx [get]
func (h *PurchaseOrderHandler) Export(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	data, err := h.orders.Export(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, fmt.Sprintf("don-dat-hang-%s.xlsx", h.now().Format("20060102")), xlsxContentType, data)
}

func (h *PurchaseOrderHandler) listFilter(c *gin.Context) (apppurchase.PurchaseOrderListFilter, bool) {
	supplierID, ok := h.queryUUID(c, "supplier_id")
	if !ok {
		return apppurchase.PurchaseOrderListFilter{}, false
	}
	projectID, ok := h.queryUUID(c, "project_id")
	if !ok {
		return apppurchase.PurchaseOrderListFilter{}, false
	}
	page := paging(c)
	return apppurchase.PurchaseOrderListFilter{
		Status:     queryString[purchase.Status](c, "status"),
		SupplierID: supplierID,
		ProjectID:  projectID,
		Search:     page.Search,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}, true
}
