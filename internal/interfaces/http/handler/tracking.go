package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppurchase "github.com/procurement/backend/internal/application/purchase"
	"github.com/procurement/backend/internal/domain/identity"
)

// TrackingService is the delivery tracking surface used by TrackingHandler
type TrackingService interface {
	RecordEvent(ctx context.Context, actor identity.Actor, in apppurchase.RecordTrackingRequest) (*apppurchase.RecordTrackingResult, error)
	ScanForOverdue(ctx context.Context, now time.Time) (*apppurchase.ScanResult, error)
	History(ctx context.Context, poID uuid.UUID) ([]apppurchase.TrackingResponse, error)
}

// TrackingHandler serves the shipment tracking log
type TrackingHandler struct {
	BaseHandler
	tracking TrackingService
	now      func() time.Time
}

// NewTrackingHandler creates a new TrackingHandler
func NewTrackingHandler(tracking TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking, now: time.Now}
}

// Record godoc
// @ID           recordTracking
// @Summary      Append a tracking event to a PO
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        request body apppurchase.RecordTrackingRequest true "Event"
// @Success      201 {object} Envelope[apppurchase.RecordTrackingResult]
// @Failure      403 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /tracking [post]
func (h *TrackingHandler) Record(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apppurchase.RecordTrackingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.tracking.RecordEvent(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// History godoc
// @ID           trackingHistory
// @Summary      Tracking events of a PO, oldest first
// @Tags         tracking
// @Produce      json
// @Param        poId path string true "PO ID" format(uuid)
// @Success      200 {object} Envelope[[]apppurchase.TrackingResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /tracking/po/{poId} [get]
func (h *TrackingHandler) History(c *gin.Context) {
	poID, ok := h.pathUUID(c, "poId")
	if !ok {
		return
	}
	result, err := h.tracking.History(c.Request.Context(), poID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CheckDelays godoc
// @ID           checkDelays
// @Summary      Flag overdue POs now
// @Description  Runs the same idempotent scan as the scheduled job
// @Tags         tracking
// @Produce      json
// @Success      200 {object} Envelope[apppurchase.ScanResult]
// @Failure      403 {object} Failure
// @Security     BearerAuth
// @Router       /tracking/check-delays [post]
func (h *TrackingHandler) CheckDelays(c *gin.Context) {
	result, err := h.tracking.ScanForOverdue(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
