package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/procurement/backend/internal/application/identity"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/procurement/backend/internal/interfaces/http/middleware"
)

// AuthService is the authentication surface used by AuthHandler
type AuthService interface {
	Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error)
	RefreshToken(ctx context.Context, input appidentity.RefreshTokenInput) (*appidentity.RefreshTokenResult, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*appidentity.UserInfo, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Authenticate with email and password; the token carries the user id and role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.LoginInput true "Login credentials"
// @Success      200 {object} Envelope[appidentity.LoginResult]
// @Failure      400 {object} Failure
// @Failure      401 {object} Failure
// @Failure      403 {object} Failure
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RefreshTokenInput true "Refresh token"
// @Success      200 {object} Envelope[appidentity.RefreshTokenResult]
// @Failure      400 {object} Failure
// @Failure      401 {object} Failure
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req appidentity.RefreshTokenInput
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      Logout
// @Description  Revoke the presented access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} Ack
// @Failure      401 {object} Failure
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	input := appidentity.LogoutInput{UserID: actor.UserID}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		input.TokenJTI = claims.ID
		input.TokenTTL = claims.GetRemainingTTL()
	}
	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(nil))
}

// Me godoc
// @ID           getCurrentUser
// @Summary      Current user
// @Description  Profile of the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200 {object} Envelope[appidentity.UserInfo]
// @Failure      401 {object} Failure
// @Failure      404 {object} Failure
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	user, err := h.authService.GetCurrentUser(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
