package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appnotification "github.com/procurement/backend/internal/application/notification"
	"github.com/procurement/backend/internal/interfaces/http/dto"
)

// NotificationService is the inbox surface used by NotificationHandler
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) (*appnotification.InboxResponse, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// NotificationHandler serves the caller's in-app notifications
type NotificationHandler struct {
	BaseHandler
	notifications NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @ID           listNotifications
// @Summary      The caller's notifications, newest first
// @Tags         notifications
// @Produce      json
// @Success      200 {object} Envelope[appnotification.InboxResponse]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	inbox, err := h.notifications.List(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inbox)
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark one notification read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} Ack
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), actor.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(nil))
}

// MarkAllRead godoc
// @ID           markAllNotificationsRead
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} Ack
// @Security     BearerAuth
// @Router       /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkAllRead(c.Request.Context(), actor.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(nil))
}
