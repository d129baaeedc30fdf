package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the status of a material request
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// UncommittedStatuses are the statuses of requests that hold quota but are
// not yet part of its used quantity. Approval moves a request's items into
// used, so approved, processing and completed requests count through it.
var UncommittedStatuses = []Status{StatusPending}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusProcessing
	case StatusProcessing:
		return target == StatusProcessing || target == StatusCompleted
	case StatusRejected, StatusCompleted:
		return false
	}
	return false
}

// Priority tells purchasing how urgent a request is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RequestItem is one requested material line. Immutable after creation.
type RequestItem struct {
	ID         uuid.UUID
	RequestID  uuid.UUID
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
	Note       string
}

// ItemInput describes a line to add when creating a request
type ItemInput struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
	Note       string
}

// MaterialRequest is a site's request for materials (YC#####).
// It is the aggregate root for its items and approval chain.
type MaterialRequest struct {
	shared.BaseAggregateRoot
	Code        string
	ProjectID   uuid.UUID
	CreatedBy   uuid.UUID
	Description string
	Priority    Priority
	NeedByDate  *time.Time
	Status      Status
	Items       []RequestItem
	Approvals   approval.Chain
}

// NewMaterialRequest creates a pending request with levels pre-seeded approvals
func NewMaterialRequest(code string, projectID, createdBy uuid.UUID, description string, priority Priority, needBy *time.Time, items []ItemInput, levels int) (*MaterialRequest, error) {
	if code == "" {
		return nil, shared.NewValidationError("Request code cannot be empty")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewValidationError("Project is required")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("Creator is required")
	}
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid priority %q", priority))
	}

	req := &MaterialRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		ProjectID:         projectID,
		CreatedBy:         createdBy,
		Description:       description,
		Priority:          priority,
		NeedByDate:        needBy,
		Status:            StatusPending,
		Items:             make([]RequestItem, 0, len(items)),
	}
	for i, in := range items {
		if in.MaterialID == uuid.Nil {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: material is required", i+1))
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: quantity must be positive", i+1))
		}
		req.Items = append(req.Items, RequestItem{
			ID:         uuid.New(),
			RequestID:  req.ID,
			MaterialID: in.MaterialID,
			Quantity:   in.Quantity,
			Note:       in.Note,
		})
	}

	chain, err := approval.Initialize(approval.OwnerMaterialRequest, req.ID, levels)
	if err != nil {
		return nil, err
	}
	req.Approvals = chain

	req.AddDomainEvent(NewRequestCreatedEvent(req))
	return req, nil
}

// Act records a decision on the next pending approval level and syncs
// the request status with the chain outcome. The returned outcome lets the
// caller run side effects bound to full approval (quota commit).
func (r *MaterialRequest) Act(in approval.ActInput, policy approval.LevelPolicy, now time.Time) (*approval.Approval, approval.Outcome, error) {
	acted, err := r.Approvals.Act(in, policy, now)
	if err != nil {
		return nil, approval.OutcomePending, err
	}

	outcome := r.Approvals.Outcome()
	switch outcome {
	case approval.OutcomeApproved:
		if err := r.transition(StatusApproved); err != nil {
			return nil, outcome, err
		}
		r.AddDomainEvent(NewRequestApprovedEvent(r))
	case approval.OutcomeRejected:
		if err := r.transition(StatusRejected); err != nil {
			return nil, outcome, err
		}
		r.AddDomainEvent(NewRequestRejectedEvent(r, in.Actor, in.Comment))
	default:
		r.Touch()
	}
	return acted, outcome, nil
}

// StartProcessing marks the request as being fulfilled by stock or purchase
func (r *MaterialRequest) StartProcessing() error {
	return r.transition(StatusProcessing)
}

// Complete marks the request as fulfilled
func (r *MaterialRequest) Complete() error {
	if err := r.transition(StatusCompleted); err != nil {
		return err
	}
	r.AddDomainEvent(NewRequestCompletedEvent(r))
	return nil
}

// CanFulfill reports whether stock issue or RFQ creation may proceed
func (r *MaterialRequest) CanFulfill() bool {
	return r.Status == StatusApproved || r.Status == StatusProcessing
}

// ItemInputs returns the (material, quantity) pairs of the request
func (r *MaterialRequest) ItemInputs() []ItemInput {
	out := make([]ItemInput, len(r.Items))
	for i, item := range r.Items {
		out[i] = ItemInput{MaterialID: item.MaterialID, Quantity: item.Quantity, Note: item.Note}
	}
	return out
}

// MaterialIDs returns the distinct materials referenced by the items
func (r *MaterialRequest) MaterialIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.Items))
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, item := range r.Items {
		if _, ok := seen[item.MaterialID]; ok {
			continue
		}
		seen[item.MaterialID] = struct{}{}
		ids = append(ids, item.MaterialID)
	}
	return ids
}

func (r *MaterialRequest) transition(target Status) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot move request %s from %s to %s", r.Code, r.Status, target)).
			WithDetail("status", string(r.Status))
	}
	r.Status = target
	r.Touch()
	return nil
}
