// Package approval implements the sequential multi-level sign-off shared by
// material requests and purchase orders.
package approval

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/shared"
)

// DefaultLevels is the number of sign-off levels for requests and purchase orders
const DefaultLevels = 3

// Status represents the status of a single approval level
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Decision is what an approver records on a level
type Decision string

const (
	DecisionApprove Decision = "approved"
	DecisionReject  Decision = "rejected"
)

// IsValid checks if the decision is approve or reject
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Status maps the decision to the level status it produces
func (d Decision) Status() Status {
	return Status(d)
}

// OwnerType identifies the aggregate that owns an approval chain
type OwnerType string

const (
	OwnerMaterialRequest OwnerType = "material_request"
	OwnerPurchaseOrder   OwnerType = "purchase_order"
)

// Approval is one level of an approval chain
type Approval struct {
	ID         uuid.UUID
	OwnerType  OwnerType
	OwnerID    uuid.UUID
	Level      int
	Status     Status
	ApproverID *uuid.UUID
	Comment    string
	Signature  string
	ActedAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPending reports whether the level still awaits a decision
func (a *Approval) IsPending() bool {
	return a.Status == StatusPending
}

func (a *Approval) record(actor identity.Actor, decision Decision, comment, signature string, now time.Time) {
	approverID := actor.UserID
	a.ApproverID = &approverID
	a.Status = decision.Status()
	a.Comment = comment
	a.Signature = signature
	a.ActedAt = &now
	a.UpdatedAt = now
}

// LevelPolicy decides whether an actor may sign a given level.
// The chain never interprets roles itself.
type LevelPolicy interface {
	CanAct(actor identity.Actor, level int) bool
}

// LevelPolicyFunc adapts a function to LevelPolicy
type LevelPolicyFunc func(actor identity.Actor, level int) bool

// CanAct calls f(actor, level)
func (f LevelPolicyFunc) CanAct(actor identity.Actor, level int) bool {
	return f(actor, level)
}

// RolePolicy authorizes by the role-to-level table of the identity context
var RolePolicy LevelPolicy = LevelPolicyFunc(func(actor identity.Actor, level int) bool {
	return actor.Role.CanApproveLevel(level)
})

// ActInput carries an approver's decision
type ActInput struct {
	Actor     identity.Actor
	Decision  Decision
	Comment   string
	Signature string
}

// Validate checks the decision value
func (in ActInput) Validate() error {
	if !in.Decision.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Decision must be %q or %q", DecisionApprove, DecisionReject))
	}
	return nil
}
