package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/procurement/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at jsonMax, or at uploadMax for multipart
// uploads such as delivery photos. An oversized Content-Length is refused
// before the handler runs; bodies of unknown length fail when read.
func BodyLimit(jsonMax, uploadMax int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := jsonMax
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadMax
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.Fail(
				dto.ErrCodeBadRequest, "Request body exceeds maximum allowed size", getRequestID(c)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
