package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequirePermission rejects callers whose role does not grant the
// permission. It must run after the JWT middleware.
func RequirePermission(permission identity.Permission) gin.HandlerFunc {
	return RequirePermissionWithConfig(permission, PermissionConfig{})
}

// RequirePermissionWithConfig creates middleware with custom config
func RequirePermissionWithConfig(permission identity.Permission, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			denyUnauthenticated(c)
			return
		}
		if !actor.Role.Can(permission) {
			handlePermissionDenied(c, cfg, actor, string(permission))
			return
		}
		c.Next()
	}
}

// RequireRole admits only the listed roles; admin is always admitted
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(PermissionConfig{}, roles...)
}

// RequireRoleWithConfig creates middleware with custom config
func RequireRoleWithConfig(cfg PermissionConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			denyUnauthenticated(c)
			return
		}
		if !actor.IsAdmin() && !slices.Contains(roles, actor.Role) {
			handlePermissionDenied(c, cfg, actor, "role")
			return
		}
		c.Next()
	}
}

func denyUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.Fail(dto.ErrCodeUnauthorized, "Authentication required", getRequestID(c)))
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, actor identity.Actor, required string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Permission denied",
			zap.String("user_id", actor.UserID.String()),
			zap.String("role", string(actor.Role)),
			zap.String("required", required),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method))
	}
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.Fail(dto.ErrCodePermissionDenied, "Access denied: insufficient permissions", getRequestID(c)))
}
