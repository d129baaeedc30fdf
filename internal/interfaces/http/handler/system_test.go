package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	appnotification "github.com/procurement/backend/internal/application/notification"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	healthy := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		router := newRouter(identity.Actor{})
		router.GET("/health", NewSystemHandler("1.2.0", map[string]HealthCheck{"database": healthy, "redis": healthy}).Health)

		w := doJSON(router, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got HealthResponse
		decodeData(t, w, &got)
		assert.Equal(t, "ok", got.Status)
		assert.Equal(t, "1.2.0", got.Version)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, got.Checks)
	})

	t.Run("failing dependency degrades the service", func(t *testing.T) {
		router := newRouter(identity.Actor{})
		router.GET("/health", NewSystemHandler("1.2.0", map[string]HealthCheck{
			"database": healthy,
			"redis":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
		}).Health)

		w := doJSON(router, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var got HealthResponse
		decodeData(t, w, &got)
		assert.Equal(t, "degraded", got.Status)
		assert.Equal(t, "dial tcp: connection refused", got.Checks["redis"])
	})

	t.Run("no checks configured", func(t *testing.T) {
		router := newRouter(identity.Actor{})
		router.GET("/health", NewSystemHandler("dev", nil).Health)

		w := doJSON(router, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"checks"`)
	})
}

func TestNotificationHandler(t *testing.T) {
	user := identity.NewActor(uuid.New(), identity.RoleSiteSupervisor)

	t.Run("inbox", func(t *testing.T) {
		svc := new(mockNotificationService)
		router := newRouter(user)
		router.GET("/notifications", NewNotificationHandler(svc).List)
		svc.On("List", mock.Anything, user.UserID).Return(&appnotification.InboxResponse{
			Items:  []appnotification.NotificationResponse{{Title: "Đơn hàng giao trễ", Type: notification.TypeWarning}},
			Unread: 1,
		}, nil)

		w := doJSON(router, http.MethodGet, "/notifications", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got appnotification.InboxResponse
		decodeData(t, w, &got)
		assert.Equal(t, 1, got.Unread)
		assert.Equal(t, notification.TypeWarning, got.Items[0].Type)
	})

	t.Run("mark one and all read", func(t *testing.T) {
		svc := new(mockNotificationService)
		h := NewNotificationHandler(svc)
		router := newRouter(user)
		router.PATCH("/notifications/read-all", h.MarkAllRead)
		router.PATCH("/notifications/:id/read", h.MarkRead)
		id := uuid.New()
		svc.On("MarkRead", mock.Anything, user.UserID, id).Return(nil)
		svc.On("MarkAllRead", mock.Anything, user.UserID).Return(nil)

		w := doJSON(router, http.MethodPatch, "/notifications/"+id.String()+"/read", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w = doJSON(router, http.MethodPatch, "/notifications/read-all", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("someone else's notification is not found", func(t *testing.T) {
		svc := new(mockNotificationService)
		router := newRouter(user)
		router.PATCH("/notifications/:id/read", NewNotificationHandler(svc).MarkRead)
		id := uuid.New()
		svc.On("MarkRead", mock.Anything, user.UserID, id).Return(shared.NewNotFoundError("Notification", id))

		w := doJSON(router, http.MethodPatch, "/notifications/"+id.String()+"/read", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
