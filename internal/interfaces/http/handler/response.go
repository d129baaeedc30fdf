package handler

import "github.com/procurement/backend/internal/interfaces/http/dto"

// Envelope documents the success body for OpenAPI. Handlers render the
// untyped dto.Response; swag needs the typed form to describe data.
type Envelope[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// Ack is the body of endpoints that return no data
type Ack struct {
	Success bool `json:"success" example:"true"`
}

// Failure is the error body; error.code is one of the dto error codes
type Failure struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
