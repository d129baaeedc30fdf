package dto

import (
	"net/http"

	"github.com/procurement/backend/internal/domain/shared"
)

// API error codes. Format: ERR_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized     = "ERR_UNAUTHORIZED"
	ErrCodeForbidden        = "ERR_FORBIDDEN"
	ErrCodeTokenExpired     = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked     = "ERR_TOKEN_REVOKED"
	ErrCodeAccountDisabled  = "ERR_ACCOUNT_DEACTIVATED"
	ErrCodePermissionDenied = "ERR_PERMISSION_DENIED"
)

// Resource error codes
const (
	ErrCodeNotFound               = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists          = "ERR_ALREADY_EXISTS"
	ErrCodeConflict               = "ERR_CONFLICT"
	ErrCodeConcurrentModification = "ERR_CONCURRENT_MODIFICATION"
)

// Workflow rule error codes
const (
	ErrCodeInvalidState            = "ERR_INVALID_STATE"
	ErrCodeNoPendingApproval       = "ERR_NO_PENDING_APPROVAL"
	ErrCodeAlreadyProcessed        = "ERR_ALREADY_PROCESSED"
	ErrCodeInsufficientStock       = "ERR_INSUFFICIENT_STOCK"
	ErrCodeAllFulfillableFromStock = "ERR_ALL_FULFILLABLE_FROM_STOCK"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	ErrCodeAccountDisabled:  http.StatusForbidden,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodePermissionDenied: http.StatusForbidden,

	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeConflict:               http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,

	// Workflow rule violations -> 422 Unprocessable Entity
	ErrCodeInvalidState:            http.StatusUnprocessableEntity,
	ErrCodeNoPendingApproval:       http.StatusUnprocessableEntity,
	ErrCodeAlreadyProcessed:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:       http.StatusUnprocessableEntity,
	ErrCodeAllFulfillableFromStock: http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodes maps domain error codes onto API codes
var domainErrorCodes = map[string]string{
	shared.CodeNotFound:                ErrCodeNotFound,
	shared.CodeAlreadyExists:           ErrCodeAlreadyExists,
	shared.CodeAlreadyProcessed:        ErrCodeAlreadyProcessed,
	shared.CodeInvalidInput:            ErrCodeInvalidInput,
	shared.CodeInvalidState:            ErrCodeInvalidState,
	shared.CodeNoPendingApproval:       ErrCodeNoPendingApproval,
	shared.CodeInsufficientStock:       ErrCodeInsufficientStock,
	shared.CodeAllFulfillableFromStock: ErrCodeAllFulfillableFromStock,
	shared.CodeValidation:              ErrCodeValidation,
	shared.CodePermissionDenied:        ErrCodePermissionDenied,
	shared.CodeUnauthorized:            ErrCodeUnauthorized,
	shared.CodeConcurrentModification:  ErrCodeConcurrentModification,
	"ACCOUNT_DEACTIVATED":              ErrCodeAccountDisabled,
	"INTERNAL_ERROR":                   ErrCodeInternal,
	"TOKEN_EXPIRED":                    ErrCodeTokenExpired,
	"TOKEN_INVALID":                    ErrCodeTokenInvalid,
	"TOKEN_MAX_REFRESH":                ErrCodeTokenInvalid,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Codes already in API form or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodes[code]; ok {
		return apiCode
	}
	return code
}
