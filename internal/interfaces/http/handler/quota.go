package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appquota "github.com/procurement/backend/internal/application/quota"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/interfaces/http/dto"
)

// QuotaService is the BOQ quota surface used by QuotaHandler
type QuotaService interface {
	CheckViolations(ctx context.Context, projectID uuid.UUID, items []request.ItemInput, excludeID *uuid.UUID) ([]quota.Violation, error)
	Upsert(ctx context.Context, actor identity.Actor, req appquota.UpsertQuotaRequest) (*appquota.QuotaResponse, error)
	List(ctx context.Context, filter appquota.QuotaListFilter) ([]appquota.QuotaResponse, int64, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]appquota.QuotaResponse, error)
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
}

// QuotaHandler serves project material quotas
type QuotaHandler struct {
	BaseHandler
	quotas QuotaService
}

// NewQuotaHandler creates a new QuotaHandler
func NewQuotaHandler(quotas QuotaService) *QuotaHandler {
	return &QuotaHandler{quotas: quotas}
}

// QuotaCheckResponse lists the quota overruns of a prospective request
type QuotaCheckResponse struct {
	WithinQuota bool              `json:"within_quota"`
	Violations  []quota.Violation `json:"violations"`
}

// Check godoc
// @ID           checkQuota
// @Summary      Check a prospective request against project quotas
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request body appquota.CheckQuotaRequest true "Items to check"
// @Success      200 {object} Envelope[QuotaCheckResponse]
// @Failure      400 {object} Failure
// @Security     BearerAuth
// @Router       /requests/check-quota [post]
func (h *QuotaHandler) Check(c *gin.Context) {
	var req appquota.CheckQuotaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	items := make([]request.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = request.ItemInput{MaterialID: item.MaterialID, Quantity: item.Quantity}
	}
	violations, err := h.quotas.CheckViolations(c.Request.Context(), req.ProjectID, items, nil)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if violations == nil {
		violations = []quota.Violation{}
	}
	h.Success(c, QuotaCheckResponse{WithinQuota: len(violations) == 0, Violations: violations})
}

// Upsert godoc
// @ID           upsertQuota
// @Summary      Create or replace a project material quota
// @Tags         quotas
// @Accept       json
// @Produce      json
// @Param        request body appquota.UpsertQuotaRequest true "Quota"
// @Success      200 {object} Envelope[appquota.QuotaResponse]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Security     BearerAuth
// @Router       /quotas [post]
func (h *QuotaHandler) Upsert(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appquota.UpsertQuotaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.quotas.Upsert(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @ID           listQuotas
// @Summary      List quotas
// @Tags         quotas
// @Produce      json
// @Param        project_id query string false "Project" format(uuid)
// @Param        material_id query string false "Material" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} Envelope[[]appquota.QuotaResponse]
// @Security     BearerAuth
// @Router       /quotas [get]
func (h *QuotaHandler) List(c *gin.Context) {
	projectID, ok := h.queryUUID(c, "project_id")
	if !ok {
		return
	}
	materialID, ok := h.queryUUID(c, "material_id")
	if !ok {
		return
	}
	page := paging(c)
	items, total, err := h.quotas.List(c.Request.Context(), appquota.QuotaListFilter{
		ProjectID:  projectID,
		MaterialID: materialID,
		Page:       page.Page,
		PageSize:   page.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, items, total, page)
}

// ListByProject godoc
// @ID           listProjectQuotas
// @Summary      Quotas of one project
// @Tags         quotas
// @Produce      json
// @Param        projectId path string true "Project ID" format(uuid)
// @Success      200 {object} Envelope[[]appquota.QuotaResponse]
// @Security     BearerAuth
// @Router       /quotas/project/{projectId} [get]
func (h *QuotaHandler) ListByProject(c *gin.Context) {
	projectID, ok := h.pathUUID(c, "projectId")
	if !ok {
		return
	}
	items, err := h.quotas.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Delete godoc
// @ID           deleteQuota
// @Summary      Delete a quota
// @Tags         quotas
// @Produce      json
// @Param        id path string true "Quota ID" format(uuid)
// @Success      200 {object} Ack
// @Failure      403 {object} Failure
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /quotas/{id} [delete]
func (h *QuotaHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.quotas.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(nil))
}
