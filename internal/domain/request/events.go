package request

import (
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeMaterialRequest = "MaterialRequest"

// Event type constants
const (
	EventTypeRequestCreated   = "MaterialRequestCreated"
	EventTypeRequestApproved  = "MaterialRequestApproved"
	EventTypeRequestRejected  = "MaterialRequestRejected"
	EventTypeRequestCompleted = "MaterialRequestCompleted"
)

// RequestCreatedEvent is raised when a new material request is submitted
type RequestCreatedEvent struct {
	shared.EventMeta
	RequestID uuid.UUID `json:"request_id"`
	Code      string    `json:"code"`
	ProjectID uuid.UUID `json:"project_id"`
	CreatedBy uuid.UUID `json:"created_by"`
	Priority  Priority  `json:"priority"`
}

// NewRequestCreatedEvent creates a new RequestCreatedEvent
func NewRequestCreatedEvent(r *MaterialRequest) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		EventMeta: shared.NewEventMeta(EventTypeRequestCreated, AggregateTypeMaterialRequest, r.ID),
		RequestID: r.ID,
		Code:      r.Code,
		ProjectID: r.ProjectID,
		CreatedBy: r.CreatedBy,
		Priority:  r.Priority,
	}
}

// RequestApprovedEvent is raised when the last approval level signs off
type RequestApprovedEvent struct {
	shared.EventMeta
	RequestID uuid.UUID `json:"request_id"`
	Code      string    `json:"code"`
	ProjectID uuid.UUID `json:"project_id"`
	CreatedBy uuid.UUID `json:"created_by"`
}

// NewRequestApprovedEvent creates a new RequestApprovedEvent
func NewRequestApprovedEvent(r *MaterialRequest) *RequestApprovedEvent {
	return &RequestApprovedEvent{
		EventMeta: shared.NewEventMeta(EventTypeRequestApproved, AggregateTypeMaterialRequest, r.ID),
		RequestID: r.ID,
		Code:      r.Code,
		ProjectID: r.ProjectID,
		CreatedBy: r.CreatedBy,
	}
}

// RequestRejectedEvent is raised when any approval level rejects
type RequestRejectedEvent struct {
	shared.EventMeta
	RequestID  uuid.UUID `json:"request_id"`
	Code       string    `json:"code"`
	CreatedBy  uuid.UUID `json:"created_by"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason"`
}

// NewRequestRejectedEvent creates a new RequestRejectedEvent
func NewRequestRejectedEvent(r *MaterialRequest, actor identity.Actor, reason string) *RequestRejectedEvent {
	return &RequestRejectedEvent{
		EventMeta:  shared.NewEventMeta(EventTypeRequestRejected, AggregateTypeMaterialRequest, r.ID),
		RequestID:  r.ID,
		Code:       r.Code,
		CreatedBy:  r.CreatedBy,
		RejectedBy: actor.UserID,
		Reason:     reason,
	}
}

// RequestCompletedEvent is raised when issued stock is confirmed received
type RequestCompletedEvent struct {
	shared.EventMeta
	RequestID uuid.UUID `json:"request_id"`
	Code      string    `json:"code"`
	CreatedBy uuid.UUID `json:"created_by"`
}

// NewRequestCompletedEvent creates a new RequestCompletedEvent
func NewRequestCompletedEvent(r *MaterialRequest) *RequestCompletedEvent {
	return &RequestCompletedEvent{
		EventMeta: shared.NewEventMeta(EventTypeRequestCompleted, AggregateTypeMaterialRequest, r.ID),
		RequestID: r.ID,
		Code:      r.Code,
		CreatedBy: r.CreatedBy,
	}
}
