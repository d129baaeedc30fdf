package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppurchase "github.com/procurement/backend/internal/application/purchase"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/interfaces/http/dto"
)

// DeliveryService is the goods receipt surface used by DeliveryHandler
type DeliveryService interface {
	RecordDelivery(ctx context.Context, actor identity.Actor, in apppurchase.RecordDeliveryRequest) (*apppurchase.DeliveryResponse, error)
	GetByPO(ctx context.Context, poID uuid.UUID) (*apppurchase.DeliveryResponse, error)
	UploadPhoto(ctx context.Context, actor identity.Actor, poID uuid.UUID, fileName, contentType string, data []byte) (*apppurchase.PhotoUploadResult, error)
}

// DeliveryHandler serves delivery checks at the site
type DeliveryHandler struct {
	BaseHandler
	deliveries DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveries DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries}
}

// Record godoc
// @ID           recordDelivery
// @Summary      Record the goods received for a PO
// @Description  Marks the PO delivered; one record per PO
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        request body apppurchase.RecordDeliveryRequest true "Delivery"
// @Success      201 {object} Envelope[apppurchase.DeliveryResponse]
// @Failure      400 {object} Failure
// @Failure      403 {object} Failure
// @Failure      409 {object} Failure
// @Failure      422 {object} Failure
// @Security     BearerAuth
// @Router       /deliveries [post]
func (h *DeliveryHandler) Record(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apppurchase.RecordDeliveryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.deliveries.RecordDelivery(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByPO godoc
// @ID           getDeliveryByPO
// @Summary      Delivery record of a PO
// @Tags         deliveries
// @Produce      json
// @Param        poId path string true "PO ID" format(uuid)
// @Success      200 {object} Envelope[apppurchase.DeliveryResponse]
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /deliveries/po/{poId} [get]
func (h *DeliveryHandler) GetByPO(c *gin.Context) {
	poID, ok := h.pathUUID(c, "poId")
	if !ok {
		return
	}
	result, err := h.deliveries.GetByPO(c.Request.Context(), poID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UploadPhoto godoc
// @ID           uploadDeliveryPhoto
// @Summary      Attach a photo to a delivery record
// @Tags         deliveries
// @Accept       multipart/form-data
// @Produce      json
// @Param        poId path string true "PO ID" format(uuid)
// @Param        file formData file true "Image (jpeg, png or webp)"
// @Success      201 {object} Envelope[apppurchase.PhotoUploadResult]
// @Failure      400 {object} Failure
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /deliveries/{poId}/photos [post]
func (h *DeliveryHandler) UploadPhoto(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	poID, ok := h.pathUUID(c, "poId")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "file", Message: "This field is required"}})
		return
	}
	if header.Size > apppurchase.MaxPhotoSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "Photo exceeds the maximum size")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, apppurchase.MaxPhotoSize+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.deliveries.UploadPhoto(c.Request.Context(), actor, poID,
		header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
