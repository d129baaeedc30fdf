package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/procurement/backend/internal/application/identity"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns tokens and the user's role", func(t *testing.T) {
		svc := new(mockAuthService)
		h := NewAuthHandler(svc)
		router := newRouter(identity.Actor{})
		router.POST("/auth/login", h.Login)

		userID := uuid.New()
		svc.On("Login", mock.Anything, appidentity.LoginInput{Email: "mh@congty.vn", Password: "matkhau123"}).
			Return(&appidentity.LoginResult{
				AccessToken: "access",
				TokenType:   "Bearer",
				User:        appidentity.UserInfo{ID: userID, Email: "mh@congty.vn", Role: identity.RolePurchasingManager},
			}, nil)

		w := doJSON(router, http.MethodPost, "/auth/login", map[string]string{"email": "mh@congty.vn", "password": "matkhau123"})
		require.Equal(t, http.StatusOK, w.Code)
		var got appidentity.LoginResult
		decodeData(t, w, &got)
		assert.Equal(t, "access", got.AccessToken)
		assert.Equal(t, identity.RolePurchasingManager, got.User.Role)
	})

	t.Run("bad credentials map to 401", func(t *testing.T) {
		svc := new(mockAuthService)
		router := newRouter(identity.Actor{})
		router.POST("/auth/login", NewAuthHandler(svc).Login)
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, appidentity.ErrInvalidCredentials)

		w := doJSON(router, http.MethodPost, "/auth/login", map[string]string{"email": "x@y.vn", "password": "sai"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decode(t, w).Error.Code)
	})

	t.Run("deactivated account maps to 403", func(t *testing.T) {
		svc := new(mockAuthService)
		router := newRouter(identity.Actor{})
		router.POST("/auth/login", NewAuthHandler(svc).Login)
		svc.On("Login", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated"))

		w := doJSON(router, http.MethodPost, "/auth/login", map[string]string{"email": "x@y.vn", "password": "p"})
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeAccountDisabled, decode(t, w).Error.Code)
	})

	t.Run("malformed email is a validation error", func(t *testing.T) {
		svc := new(mockAuthService)
		router := newRouter(identity.Actor{})
		router.POST("/auth/login", NewAuthHandler(svc).Login)

		w := doJSON(router, http.MethodPost, "/auth/login", map[string]string{"email": "khong-phai-email", "password": "p"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Fields, 1)
		assert.Equal(t, "email", resp.Error.Fields[0].Field)
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("invalid json", func(t *testing.T) {
		router := newRouter(identity.Actor{})
		router.POST("/auth/login", NewAuthHandler(new(mockAuthService)).Login)

		w := doJSON(router, http.MethodPost, "/auth/login", "{oops")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	svc := new(mockAuthService)
	router := newRouter(identity.Actor{})
	router.POST("/auth/refresh", NewAuthHandler(svc).RefreshToken)
	svc.On("RefreshToken", mock.Anything, appidentity.RefreshTokenInput{RefreshToken: "old"}).
		Return(nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired"))

	w := doJSON(router, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": "old"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, decode(t, w).Error.Code)
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	actor := identity.NewActor(uuid.New(), identity.RoleChiefAccountant)

	t.Run("me", func(t *testing.T) {
		svc := new(mockAuthService)
		router := newRouter(actor)
		router.GET("/auth/me", NewAuthHandler(svc).Me)
		svc.On("GetCurrentUser", mock.Anything, actor.UserID).
			Return(&appidentity.UserInfo{ID: actor.UserID, Name: "Lê Thu Hà", Role: actor.Role}, nil)

		w := doJSON(router, http.MethodGet, "/auth/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got appidentity.UserInfo
		decodeData(t, w, &got)
		assert.Equal(t, "Lê Thu Hà", got.Name)
	})

	t.Run("logout without claims still succeeds", func(t *testing.T) {
		svc := new(mockAuthService)
		router := newRouter(actor)
		router.POST("/auth/logout", NewAuthHandler(svc).Logout)
		svc.On("Logout", mock.Anything, appidentity.LogoutInput{UserID: actor.UserID, TokenTTL: time.Duration(0)}).Return(nil)

		w := doJSON(router, http.MethodPost, "/auth/logout", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("anonymous me is 401", func(t *testing.T) {
		router := newRouter(identity.Actor{})
		router.GET("/auth/me", NewAuthHandler(new(mockAuthService)).Me)

		w := doJSON(router, http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
