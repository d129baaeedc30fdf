package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog puts a request-scoped logger into the request context and
// writes one line per request after it is handled. The actor is read back
// from the context, where the auth middleware records it.
func AccessLog(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		reqLog := base.With(
			zap.String("request_id", GetRequestID(ctx)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
		)
		c.Request = c.Request.WithContext(WithContext(ctx, reqLog))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if userID := GetUserID(c.Request.Context()); userID != "" {
			fields = append(fields,
				zap.String("user_id", userID),
				zap.String("role", GetRole(c.Request.Context())))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			reqLog.Warn("request rejected", fields...)
		default:
			reqLog.Info("request handled", fields...)
		}
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				base.Error("panic recovered",
					zap.String("request_id", GetRequestID(c.Request.Context())),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", p),
					zap.Stack("stacktrace"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"code": "ERR_INTERNAL", "message": "Internal server error"},
				})
			}
		}()
		c.Next()
	}
}
