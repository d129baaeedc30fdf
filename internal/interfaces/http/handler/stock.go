package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appstock "github.com/procurement/backend/internal/application/stock"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/stock"
)

// StockService is the stock ledger surface used by StockHandler
type StockService interface {
	Analyze(ctx context.Context, requestID uuid.UUID) (*stock.FulfillmentAnalysis, error)
	Issue(ctx context.Context, actor identity.Actor, in appstock.IssueStockRequest) (*appstock.StockIssueResponse, error)
	ConfirmReceipt(ctx context.Context, actor identity.Actor, issueID uuid.UUID, in appstock.ReceiveStockRequest) (*appstock.StockIssueResponse, error)
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*appstock.StockIssueResponse, error)
	List(ctx context.Context, filter appstock.StockIssueListFilter) ([]appstock.StockIssueResponse, int64, error)
	Restock(ctx context.Context, actor identity.Actor, materialID uuid.UUID, in appstock.RestockRequest) (*appstock.MaterialStockResponse, error)
	ListMaterials(ctx context.Context, page, pageSize int, search string) ([]appstock.MaterialStockResponse, int64, error)
}

// StockHandler serves warehouse stock checks, issues (XK) and restocking
type StockHandler struct {
	BaseHandler
	stock StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stock StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// Check godoc
// @ID           checkStock
// @Summary      Analyze how much of a request the warehouse can cover
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body appstock.StockCheckRequest true "Request to analyze"
// @Success      200 {object} Envelope[stock.FulfillmentAnalysis]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /stock/check [post]
func (h *StockHandler) Check(c *gin.Context) {
	var req appstock.StockCheckRequest
	if !h.bindJSON(c, &req) {
		return
	}
	analysis, err := h.stock.Analyze(c.Request.Context(), req.RequestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analysis)
}

// Issue godoc
// @ID           issueStock
// @Summary      Issue stock against an approved request
// @Description  Creates a pending XK issue and deducts stock; omitted items default to what stock can cover
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body appstock.IssueStockRequest true "Issue"
// @Success      201 {object} Envelope[appstock.StockIssueResponse]
// @Failure      403 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /stock [post]
func (h *StockHandler) Issue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appstock.IssueStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.stock.Issue(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ConfirmReceipt godoc
// @ID           receiveStock
// @Summary      Confirm the site received an issue
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock issue ID" format(uuid)
// @Param        request body appstock.ReceiveStockRequest false "Receipt note"
// @Success      200 {object} Envelope[appstock.StockIssueResponse]
// @Failure      403 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /stock/{id}/receive [post]
func (h *StockHandler) ConfirmReceipt(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appstock.ReceiveStockRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.stock.ConfirmReceipt(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByRequest godoc
// @ID           getStockIssueByRequest
// @Summary      Stock issue of a request
// @Tags         stock
// @Produce      json
// @Param        requestId path string true "Request ID" format(uuid)
// @Success      200 {object} Envelope[appstock.StockIssueResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /stock/request/{requestId} [get]
func (h *StockHandler) GetByRequest(c *gin.Context) {
	requestID, ok := h.pathUUID(c, "requestId")
	if !ok {
		return
	}
	result, err := h.stock.GetByRequest(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @ID           listStockIssues
// @Summary      List stock issues
// @Tags         stock
// @Produce      json
// @Param        status query string false "Status" Enums(pending, completed, cancelled)
// @Param        request_id query string false "Request" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} Envelope[[]appstock.StockIssueResponse]
// @Security     BearerAuth
// @Router       /stock [get]
func (h *StockHandler) List(c *gin.Context) {
	requestID, ok := h.queryUUID(c, "request_id")
	if !ok {
		return
	}
	page := paging(c)
	items, total, err := h.stock.List(c.Request.Context(), appstock.StockIssueListFilter{
		Status:    queryString[stock.IssueStatus](c, "status"),
		RequestID: requestID,
		Page:      page.Page,
		PageSize:  page.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, items, total, page)
}

// Restock godoc
// @ID           restockMaterial
// @Summary      Add stock to a material
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Param        request body appstock.RestockRequest true "Quantity"
// @Success      200 {object} Envelope[appstock.MaterialStockResponse]
// @Failure      403 {object} Failure
// @Security     BearerAuth
// @Router       /materials/{id}/restock [post]
func (h *StockHandler) Restock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appstock.RestockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.stock.Restock(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListMaterials godoc
// @ID           listMaterials
// @Summary      Material catalogue with stock on hand
// @Tags         materials
// @Produce      json
// @Param        search query string false "Code or name"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} Envelope[[]appstock.MaterialStockResponse]
// @Security     BearerAuth
// @Router       /materials [get]
func (h *StockHandler) ListMaterials(c *gin.Context) {
	page := paging(c)
	items, total, err := h.stock.ListMaterials(c.Request.Context(), page.Page, page.PageSize, page.Search)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, items, total, page)
}
