package stock

import (
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockIssue = "StockIssue"

// Event type constants
const (
	EventTypeStockIssued   = "StockIssued"
	EventTypeStockReceived = "StockReceived"
)

// StockIssuedEvent is raised when goods leave the warehouse
type StockIssuedEvent struct {
	shared.EventMeta
	IssueID   uuid.UUID `json:"issue_id"`
	Code      string    `json:"code"`
	RequestID uuid.UUID `json:"request_id"`
	IssuedBy  uuid.UUID `json:"issued_by"`
}

// NewStockIssuedEvent creates a new StockIssuedEvent
func NewStockIssuedEvent(s *StockIssue) *StockIssuedEvent {
	return &StockIssuedEvent{
		EventMeta: shared.NewEventMeta(EventTypeStockIssued, AggregateTypeStockIssue, s.ID),
		IssueID:   s.ID,
		Code:      s.Code,
		RequestID: s.RequestID,
		IssuedBy:  s.IssuedBy,
	}
}

// StockReceivedEvent is raised when the site confirms receipt
type StockReceivedEvent struct {
	shared.EventMeta
	IssueID    uuid.UUID `json:"issue_id"`
	Code       string    `json:"code"`
	RequestID  uuid.UUID `json:"request_id"`
	ReceivedBy uuid.UUID `json:"received_by"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(s *StockIssue) *StockReceivedEvent {
	e := &StockReceivedEvent{
		EventMeta: shared.NewEventMeta(EventTypeStockReceived, AggregateTypeStockIssue, s.ID),
		IssueID:   s.ID,
		Code:      s.Code,
		RequestID: s.RequestID,
	}
	if s.ReceivedBy != nil {
		e.ReceivedBy = *s.ReceivedBy
	}
	return e
}
