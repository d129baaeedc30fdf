package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsourcing "github.com/procurement/backend/internal/application/sourcing"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/sourcing"
)

// SourcingService is the RFQ and quotation surface used by SourcingHandler
type SourcingService interface {
	ComputeNeedPurchase(ctx context.Context, requestID uuid.UUID) (*appsourcing.NeedPurchaseResponse, error)
	CreateRFQ(ctx context.Context, actor identity.Actor, in appsourcing.CreateRFQRequest) (*appsourcing.CreateRFQResult, error)
	SubmitQuotation(ctx context.Context, actor identity.Actor, in appsourcing.SubmitQuotationRequest) (*appsourcing.QuotationResponse, error)
	SelectQuotation(ctx context.Context, actor identity.Actor, quotationID uuid.UUID) (*appsourcing.QuotationResponse, error)
	GetRFQ(ctx context.Context, id uuid.UUID) (*appsourcing.RFQResponse, error)
	ListRFQs(ctx context.Context, filter appsourcing.RFQListFilter) ([]appsourcing.RFQResponse, int64, error)
	ListQuotations(ctx context.Context, filter appsourcing.QuotationListFilter) ([]appsourcing.QuotationResponse, int64, error)
	ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]appsourcing.QuotationResponse, error)
	ExportComparison(ctx context.Context, rfqID uuid.UUID) ([]byte, string, error)
}

// SourcingHandler serves RFQs and supplier quotations (BG)
type SourcingHandler struct {
	BaseHandler
	sourcing SourcingService
}

// NewSourcingHandler creates a new SourcingHandler
func NewSourcingHandler(sourcing SourcingService) *SourcingHandler {
	return &SourcingHandler{sourcing: sourcing}
}

// CheckStock godoc
// @ID           rfqCheckStock
// @Summary      Quantities of a request that must be bought
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Param        request body appsourcing.CheckStockRequest true "Request"
// @Success      200 {object} Envelope[appsourcing.NeedPurchaseResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /rfqs/check-stock [post]
func (h *SourcingHandler) CheckStock(c *gin.Context) {
	var req appsourcing.CheckStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.sourcing.ComputeNeedPurchase(c.Request.Context(), req.RequestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreateRFQ godoc
// @ID           createRFQ
// @Summary      Create an RFQ for the uncovered part of a request
// @Description  Needs at least two suppliers. Fails with ALL_FULFILLABLE_FROM_STOCK when stock covers everything.
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Param        request body appsourcing.CreateRFQRequest true "RFQ"
// @Success      201 {object} Envelope[appsourcing.CreateRFQResult]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /rfqs [post]
func (h *SourcingHandler) CreateRFQ(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsourcing.CreateRFQRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.sourcing.CreateRFQ(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetRFQ godoc
// @ID           getRFQ
// @Summary      Get an RFQ
// @Tags         rfqs
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Success      200 {object} Envelope[appsourcing.RFQResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /rfqs/{id} [get]
func (h *SourcingHandler) GetRFQ(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.sourcing.GetRFQ(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListRFQs godoc
// @ID           listRFQs
// @Summary      List RFQs
// @Tags         rfqs
// @Produce      json
// @Param        status query string false "Status" Enums(sent, closed)
// @Param        request_id query string false "Request" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} Envelope[[]appsourcing.RFQResponse]
// @Security     BearerAuth
// @Router       /rfqs [get]
func (h *SourcingHandler) ListRFQs(c *gin.Context) {
	requestID, ok := h.queryUUID(c, "request_id")
	if !ok {
		return
	}
	page := paging(c)
	items, total, err := h.sourcing.ListRFQs(c.Request.Context(), appsourcing.RFQListFilter{
		Status:    queryString[sourcing.RFQStatus](c, "status"),
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

// ExportComparison godoc
// @ID           exportRFQComparison
// @Summary      Quotation comparison workbook
// @Tags         rfqs
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "RFQ ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /rfqs/{id}/comparison.xlsx [get]
func (h *SourcingHandler) ExportComparison(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	data, filename, err := h.sourcing.ExportComparison(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, filename, xlsxContentType, data)
}

// SubmitQuotation godoc
// @ID           submitQuotation
// @Summary      Submit a supplier quotation
// @Description  Suppliers quote for themselves; other roles must name supplier_id
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        request body appsourcing.SubmitQuotationRequest true "Quotation"
// @Success      201 {object} Envelope[appsourcing.QuotationResponse]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /quotations [post]
func (h *SourcingHandler) SubmitQuotation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsourcing.SubmitQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.sourcing.SubmitQuotation(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// SelectQuotation godoc
// @ID           selectQuotation
// @Summary      Select the winning quotation of an RFQ
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} Envelope[appsourcing.QuotationResponse]
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Security     BearerAuth
// @Router       /quotations/{id}/select [post]
func (h *SourcingHandler) SelectQuotation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.sourcing.SelectQuotation(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListQuotations godoc
// @ID           listQuotations
// @Summary      List quotations
// @Tags         quotations
// @Produce      json
// @Param        status query string false "Status" Enums(pending, selected, rejected)
// @Param        supplier_id query string false "Supplier" format(uuid)
// @Param        rfq_id query string false "RFQ" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} Envelope[[]appsourcing.QuotationResponse]
// @Security     BearerAuth
// @Router       /quotations [get]
func (h *SourcingHandler) ListQuotations(c *gin.Context) {
	supplierID, ok := h.queryUUID(c, "supplier_id")
	if !ok {
		return
	}
	rfqID, ok := h.queryUUID(c, "rfq_id")
	if !ok {
		return
	}
	page := paging(c)
	items, total, err := h.sourcing.ListQuotations(c.Request.Context(), appsourcing.QuotationListFilter{
		Status:     queryString[sourcing.QuotationStatus](c, "status"),
		SupplierID: supplierID,
		RFQID:      rfqID,
		Page:       page.Page,
		PageSize:   page.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, items, total, page)
}

// ListByRFQ godoc
// @ID           listRFQQuotations
// @Summary      Quotations received for an RFQ
// @Tags         quotations
// @Produce      json
// @Param        rfqId path string true "RFQ ID" format(uuid)
// @Success      200 {object} Envelope[[]appsourcing.QuotationResponse]
// @Security     BearerAuth
// @Router       /quotations/rfq/{rfqId} [get]
func (h *SourcingHandler) ListByRFQ(c *gin.Context) {
	rfqID, ok := h.pathUUID(c, "rfqId")
	if !ok {
		return
	}
	items, err := h.sourcing.ListByRFQ(c.Request.Context(), rfqID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
