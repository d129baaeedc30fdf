package approval

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// Outcome is the aggregate result of all levels of a chain
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Chain is the ordered set of approval levels of one owner.
// The next level to act on is always the lowest pending level.
type Chain []Approval

// Initialize creates levelCount pending levels numbered 1..levelCount
func Initialize(ownerType OwnerType, ownerID uuid.UUID, levelCount int) (Chain, error) {
	if levelCount < 1 {
		return nil, shared.NewValidationError("Approval chain needs at least one level")
	}
	now := time.Now()
	chain := make(Chain, levelCount)
	for i := range chain {
		chain[i] = Approval{
			ID:        uuid.New(),
			OwnerType: ownerType,
			OwnerID:   ownerID,
			Level:     i + 1,
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return chain, nil
}

// Sorted returns the chain ordered by ascending level
func (c Chain) Sorted() Chain {
	sorted := make(Chain, len(c))
	copy(sorted, c)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })
	return sorted
}

// NextPending returns the index of the lowest-level pending approval, or -1
func (c Chain) NextPending() int {
	idx := -1
	for i := range c {
		if !c[i].IsPending() {
			continue
		}
		if idx == -1 || c[i].Level < c[idx].Level {
			idx = i
		}
	}
	return idx
}

// CurrentLevel returns the level awaiting a decision, or 0 once the chain
// is resolved. A rejected chain is resolved even with higher levels pending.
func (c Chain) CurrentLevel() int {
	if c.Outcome() == OutcomeRejected {
		return 0
	}
	if idx := c.NextPending(); idx >= 0 {
		return c[idx].Level
	}
	return 0
}

// Act records a decision on the next pending level.
// It fails with NoPendingApproval when the chain is resolved (every level
// decided, or any level rejected) and with PermissionDenied when the policy
// refuses the actor for that level.
func (c Chain) Act(in ActInput, policy LevelPolicy, now time.Time) (*Approval, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if c.Outcome() == OutcomeRejected {
		return nil, shared.NewDomainError(shared.CodeNoPendingApproval, "Approval chain already resolved to rejected").
			WithDetail("outcome", string(OutcomeRejected))
	}
	idx := c.NextPending()
	if idx < 0 {
		return nil, shared.ErrNoPendingApproval.WithDetail("outcome", string(c.Outcome()))
	}
	level := c[idx].Level
	if policy != nil && !policy.CanAct(in.Actor, level) {
		return nil, shared.NewPermissionDeniedError(
			fmt.Sprintf("Role %s cannot sign approval level %d", in.Actor.Role, level)).
			WithDetail("level", level)
	}
	c[idx].record(in.Actor, in.Decision, in.Comment, in.Signature, now)
	return &c[idx], nil
}

// Outcome evaluates the chain: any rejection rejects, all approvals approve,
// anything else is still pending. An empty chain is pending.
func (c Chain) Outcome() Outcome {
	if len(c) == 0 {
		return OutcomePending
	}
	allApproved := true
	for i := range c {
		switch c[i].Status {
		case StatusRejected:
			return OutcomeRejected
		case StatusApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return OutcomeApproved
	}
	return OutcomePending
}

// PendingCount returns the number of levels still pending
func (c Chain) PendingCount() int {
	n := 0
	for i := range c {
		if c[i].IsPending() {
			n++
		}
	}
	return n
}

// ActOnNextPending is the functional form of Chain.Act
func ActOnNextPending(chain Chain, in ActInput, policy LevelPolicy, now time.Time) (*Approval, error) {
	return chain.Act(in, policy, now)
}

// EvaluateOutcome is the functional form of Chain.Outcome
func EvaluateOutcome(chain Chain) Outcome {
	return chain.Outcome()
}
