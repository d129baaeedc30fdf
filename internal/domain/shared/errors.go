package shared

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes shared by every workflow
const (
	CodeNotFound                = "NOT_FOUND"
	CodeAlreadyExists           = "ALREADY_EXISTS"
	CodeAlreadyProcessed        = "ALREADY_PROCESSED"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidState            = "INVALID_STATE"
	CodeNoPendingApproval       = "NO_PENDING_APPROVAL"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeAllFulfillableFromStock = "ALL_FULFILLABLE_FROM_STOCK"
	CodeValidation              = "VALIDATION_ERROR"
	CodePermissionDenied        = "PERMISSION_DENIED"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeConcurrentModification  = "CONCURRENT_MODIFICATION"
)

// DomainError represents a domain-level error.
// Details carries structured context (material names, missing documents,
// exceeded quantities) for the caller to render.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so
// errors.Is(err, ErrNotFound) matches every not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error carrying an extra detail entry
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	maps.Copy(details, e.Details)
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound                = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists           = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrAlreadyProcessed        = NewDomainError(CodeAlreadyProcessed, "Resource has already been processed")
	ErrInvalidInput            = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState            = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrNoPendingApproval       = NewDomainError(CodeNoPendingApproval, "No pending approval found")
	ErrAllFulfillableFromStock = NewDomainError(CodeAllFulfillableFromStock, "All materials can be fulfilled from stock, issue stock instead of creating an RFQ")
	ErrPermissionDenied        = NewDomainError(CodePermissionDenied, "Not permitted to perform this action")
	ErrUnauthorized            = NewDomainError(CodeUnauthorized, "Authentication required")
	ErrConcurrentModification  = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
)

// NewNotFoundError reports a missing entity of the given kind
func NewNotFoundError(entity string, id any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", entity)).
		WithDetail("entity", entity).
		WithDetail("id", fmt.Sprint(id))
}

// NewInvalidStateError reports an operation attempted in the wrong state
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewAlreadyExistsError reports a duplicate one-per-parent record
func NewAlreadyExistsError(message string) *DomainError {
	return NewDomainError(CodeAlreadyExists, message)
}

// NewAlreadyProcessedError reports a second attempt on a resolved record
func NewAlreadyProcessedError(message string) *DomainError {
	return NewDomainError(CodeAlreadyProcessed, message)
}

// NewInsufficientStockError reports an issue quantity above on-hand stock
func NewInsufficientStockError(materialID uuid.UUID, materialName string, available, requested decimal.Decimal) *DomainError {
	msg := fmt.Sprintf("Insufficient stock for %s. Available: %s, Requested: %s",
		materialName, available.String(), requested.String())
	return NewDomainError(CodeInsufficientStock, msg).
		WithDetail("material_id", materialID.String()).
		WithDetail("material_name", materialName).
		WithDetail("available", available.String()).
		WithDetail("requested", requested.String())
}

// NewValidationError reports a structural input problem
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewMissingDocumentsError reports required documents absent for a payment
func NewMissingDocumentsError(missing []string) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf("Missing required documents: %v", missing)).
		WithDetail("missing_documents", missing)
}

// NewPermissionDeniedError reports an actor without the required role
func NewPermissionDeniedError(message string) *DomainError {
	return NewDomainError(CodePermissionDenied, message)
}

// HasCode reports whether err is a DomainError with the given code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
