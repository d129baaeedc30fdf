package request

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T, quantities ...int64) *MaterialRequest {
	t.Helper()
	items := make([]ItemInput, len(quantities))
	for i, q := range quantities {
		items[i] = ItemInput{MaterialID: uuid.New(), Quantity: decimal.NewFromInt(q)}
	}
	req, err := NewMaterialRequest("YC00001", uuid.New(), uuid.New(), "Móng block A", PriorityHigh, nil, items, approval.DefaultLevels)
	require.NoError(t, err)
	return req
}

func approve(t *testing.T, req *MaterialRequest, decision approval.Decision) approval.Outcome {
	t.Helper()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	_, outcome, err := req.Act(approval.ActInput{Actor: admin, Decision: decision}, approval.RolePolicy, time.Now())
	require.NoError(t, err)
	return outcome
}

func TestNewMaterialRequest(t *testing.T) {
	t.Run("seeds pending approvals and raises created event", func(t *testing.T) {
		req := newTestRequest(t, 1000, 20)

		assert.Equal(t, StatusPending, req.Status)
		assert.Len(t, req.Items, 2)
		assert.Len(t, req.Approvals, 3)
		assert.Equal(t, 3, req.Approvals.PendingCount())
		for _, a := range req.Approvals {
			assert.Equal(t, req.ID, a.OwnerID)
			assert.Equal(t, approval.OwnerMaterialRequest, a.OwnerType)
		}
		for _, item := range req.Items {
			assert.Equal(t, req.ID, item.RequestID)
		}
		require.Len(t, req.DomainEvents(), 1)
		assert.Equal(t, EventTypeRequestCreated, req.DomainEvents()[0].EventType())
	})

	t.Run("defaults priority to normal", func(t *testing.T) {
		req, err := NewMaterialRequest("YC00002", uuid.New(), uuid.New(), "", "", nil, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, PriorityNormal, req.Priority)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		items := []ItemInput{{MaterialID: uuid.New(), Quantity: decimal.Zero}}
		_, err := NewMaterialRequest("YC00003", uuid.New(), uuid.New(), "", PriorityLow, nil, items, 3)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		_, err := NewMaterialRequest("YC00004", uuid.New(), uuid.New(), "", "asap", nil, nil, 3)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestMaterialRequest_Act(t *testing.T) {
	t.Run("stays pending until the last level approves", func(t *testing.T) {
		req := newTestRequest(t, 10)
		req.PullDomainEvents()

		assert.Equal(t, approval.OutcomePending, approve(t, req, approval.DecisionApprove))
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, approval.OutcomePending, approve(t, req, approval.DecisionApprove))
		assert.Equal(t, approval.OutcomeApproved, approve(t, req, approval.DecisionApprove))

		assert.Equal(t, StatusApproved, req.Status)
		require.Len(t, req.DomainEvents(), 1)
		assert.Equal(t, EventTypeRequestApproved, req.DomainEvents()[0].EventType())
	})

	t.Run("any rejection rejects the request", func(t *testing.T) {
		req := newTestRequest(t, 10)
		req.PullDomainEvents()

		approve(t, req, approval.DecisionApprove)
		assert.Equal(t, approval.OutcomeRejected, approve(t, req, approval.DecisionReject))
		assert.Equal(t, StatusRejected, req.Status)
		assert.Equal(t, EventTypeRequestRejected, req.DomainEvents()[0].EventType())

		admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
		_, _, err := req.Act(approval.ActInput{Actor: admin, Decision: approval.DecisionApprove}, nil, time.Now())
		assert.ErrorIs(t, err, shared.ErrNoPendingApproval)
	})

	t.Run("denied approver leaves request untouched", func(t *testing.T) {
		req := newTestRequest(t, 10)
		supervisor := identity.NewActor(uuid.New(), identity.RoleSiteSupervisor)

		_, _, err := req.Act(approval.ActInput{Actor: supervisor, Decision: approval.DecisionApprove}, approval.RolePolicy, time.Now())
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, 3, req.Approvals.PendingCount())
	})
}

func TestMaterialRequest_Lifecycle(t *testing.T) {
	req := newTestRequest(t, 10)
	assert.False(t, req.CanFulfill())
	assert.True(t, shared.HasCode(req.StartProcessing(), shared.CodeInvalidState))

	for range 3 {
		approve(t, req, approval.DecisionApprove)
	}
	assert.True(t, req.CanFulfill())

	require.NoError(t, req.StartProcessing())
	require.NoError(t, req.StartProcessing())
	require.NoError(t, req.Complete())
	assert.Equal(t, StatusCompleted, req.Status)
	assert.False(t, req.CanFulfill())
	assert.True(t, shared.HasCode(req.StartProcessing(), shared.CodeInvalidState))
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusProcessing, false},
		{StatusApproved, StatusProcessing, true},
		{StatusApproved, StatusCompleted, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusRejected, StatusApproved, false},
		{StatusCompleted, StatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMaterialRequest_MaterialIDs(t *testing.T) {
	id := uuid.New()
	items := []ItemInput{
		{MaterialID: id, Quantity: decimal.NewFromInt(1)},
		{MaterialID: id, Quantity: decimal.NewFromInt(2)},
		{MaterialID: uuid.New(), Quantity: decimal.NewFromInt(3)},
	}
	req, err := NewMaterialRequest("YC00005", uuid.New(), uuid.New(), "", PriorityNormal, nil, items, 3)
	require.NoError(t, err)
	assert.Len(t, req.MaterialIDs(), 2)
	assert.Len(t, req.ItemInputs(), 3)
}
