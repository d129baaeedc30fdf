package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// IssueStatus represents the status of a stock issue
type IssueStatus string

const (
	IssueStatusPending   IssueStatus = "pending"
	IssueStatusCompleted IssueStatus = "completed"
)

// IsValid checks if the status is a valid IssueStatus
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusPending, IssueStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of IssueStatus
func (s IssueStatus) String() string {
	return string(s)
}

// StockIssueItem is one material handed over from the warehouse
type StockIssueItem struct {
	ID           uuid.UUID
	IssueID      uuid.UUID
	MaterialID   uuid.UUID
	MaterialName string
	Unit         string
	Quantity     decimal.Decimal
}

// IssueLine is a (material, quantity) pair to issue
type IssueLine struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
}

// StockIssue records goods leaving the warehouse for a request (XK#####).
// Material stock is decremented only when the site confirms receipt.
type StockIssue struct {
	shared.BaseAggregateRoot
	Code        string
	RequestID   uuid.UUID
	IssuedBy    uuid.UUID
	Status      IssueStatus
	IssuedAt    time.Time
	ReceivedBy  *uuid.UUID
	ReceivedAt  *time.Time
	Note        string
	ReceiveNote string
	Items       []StockIssueItem
}

// NewStockIssue creates a pending issue. Every line must already be checked
// against on-hand stock by the caller.
func NewStockIssue(code string, requestID, issuedBy uuid.UUID, note string, items []StockIssueItem) (*StockIssue, error) {
	if code == "" {
		return nil, shared.NewValidationError("Stock issue code cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("Stock issue needs at least one item")
	}
	issue := &StockIssue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		RequestID:         requestID,
		IssuedBy:          issuedBy,
		Status:            IssueStatusPending,
		Note:              note,
		Items:             make([]StockIssueItem, len(items)),
	}
	issue.IssuedAt = issue.CreatedAt
	for i, item := range items {
		if !item.Quantity.IsPositive() {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: issue quantity must be positive", i+1))
		}
		item.ID = uuid.New()
		item.IssueID = issue.ID
		issue.Items[i] = item
	}
	issue.AddDomainEvent(NewStockIssuedEvent(issue))
	return issue, nil
}

// ConfirmReceipt completes the issue on the receiving side
func (s *StockIssue) ConfirmReceipt(receiverID uuid.UUID, note string, now time.Time) error {
	if s.Status != IssueStatusPending {
		return shared.NewAlreadyProcessedError(fmt.Sprintf("Stock issue %s is already %s", s.Code, s.Status)).
			WithDetail("status", string(s.Status))
	}
	s.Status = IssueStatusCompleted
	s.ReceivedBy = &receiverID
	s.ReceivedAt = &now
	s.ReceiveNote = note
	s.Touch()
	s.AddDomainEvent(NewStockReceivedEvent(s))
	return nil
}

// IsPending reports whether the issue awaits receipt
func (s *StockIssue) IsPending() bool {
	return s.Status == IssueStatusPending
}
