package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/logger"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/procurement/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// actor returns the authenticated caller, answering 401 when there is none
func (h *BaseHandler) actor(c *gin.Context) (identity.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return identity.Actor{}, false
	}
	return actor, true
}

// pathUUID parses a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}})
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional UUID query parameter
func (h *BaseHandler) queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}})
		return nil, false
	}
	return &id, true
}

// queryString returns a pointer to a non-empty query value
func queryString[T ~string](c *gin.Context, name string) *T {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

// paging reads page, page_size and search; malformed numbers fall back
// to the defaults
func paging(c *gin.Context) dto.PageQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return dto.NewPageQuery(page, size, c.Query("search"))
}

// bindJSON binds the body and answers 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if middleware.IsValidationError(err) {
			middleware.HandleValidationError(c, err)
			return false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return false
	}
	return true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

// SuccessPage sends one page of a list with its meta
func (h *BaseHandler) SuccessPage(c *gin.Context, items any, total int64, page dto.PageQuery) {
	c.JSON(http.StatusOK, dto.Paged(items, total, page))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.Fail(code, message, getRequestID(c)))
}

// ValidationError sends a 400 with per-field details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.Invalid(getRequestID(c), details))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Attachment streams a generated file as a download
func (h *BaseHandler) Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and reported as an internal error without leaking its text.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.Fail(code, domainErr.Message, requestID).WithDetails(domainErr.Details))
		return
	}

	logger.FromContext(c.Request.Context()).Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.Fail(
		dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}
