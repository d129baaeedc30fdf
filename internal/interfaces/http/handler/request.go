package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apprequest "github.com/procurement/backend/internal/application/request"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/request"
)

// RequestService is the material request surface used by RequestHandler
type RequestService interface {
	Create(ctx context.Context, actor identity.Actor, req apprequest.CreateRequestRequest) (*apprequest.CreateRequestResult, error)
	Approve(ctx context.Context, actor identity.Actor, requestID uuid.UUID, req apprequest.ApproveRequest) (*apprequest.ApproveResult, error)
	Get(ctx context.Context, id uuid.UUID) (*apprequest.RequestResponse, error)
	List(ctx context.Context, filter apprequest.RequestListFilter) ([]apprequest.RequestResponse, int64, error)
}

// RequestHandler serves material requests (YC) and their approval chain
type RequestHandler struct {
	BaseHandler
	requests RequestService
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(requests RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create godoc
// @ID           createRequest
// @Summary      Create material request
// @Description  Creates a YC request with its approval chain. Quota overruns are returned as warnings, not errors.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request body apprequest.CreateRequestRequest true "Request payload"
// @Success      201 {object} Envelope[apprequest.CreateRequestResult]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Security     BearerAuth
// @Router       /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apprequest.CreateRequestRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.requests.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Approve godoc
// @ID           approveRequest
// @Summary      Act on the current approval level
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Param        request body apprequest.ApproveRequest true "Decision"
// @Success      200 {object} Envelope[apprequest.ApproveResult]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Failure      404 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req apprequest.ApproveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.requests.Approve(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get godoc
// @ID           getRequest
// @Summary      Get material request
// @Tags         requests
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Success      200 {object} Envelope[apprequest.RequestResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @ID           listRequests
// @Summary      List material requests
// @Tags         requests
// @Produce      json
// @Param        project_id query string false "Project" format(uuid)
// @Param        status query string false "Status" Enums(pending, approved, rejected, processing, completed)
// @Param        created_by query string false "Creator" format(uuid)
// @Param        search query string false "Code or description"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} Envelope[[]apprequest.RequestResponse]
// @Security     BearerAuth
// @Router       /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	projectID, ok := h.queryUUID(c, "project_id")
	if !ok {
		return
	}
	createdBy, ok := h.queryUUID(c, "created_by")
	if !ok {
		return
	}
	page := paging(c)
	filter := apprequest.RequestListFilter{
		ProjectID: projectID,
		Status:    queryString[request.Status](c, "status"),
		CreatedBy: createdBy,
		Search:    page.Search,
		Page:      page.Page,
		PageSize:  page.PageSize,
	}
	items, total, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, items, total, page)
}
