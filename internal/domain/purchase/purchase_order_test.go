package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var steelID = uuid.New()

func selectedQuotation(total string) *sourcing.Quotation {
	amount := decimal.RequireFromString(total)
	return &sourcing.Quotation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              "BG00001",
		SupplierID:        uuid.New(),
		TotalAmount:       amount,
		PaymentTerms:      "30 ngày",
		Status:            sourcing.QuotationStatusSelected,
		Items: []sourcing.QuotationItem{{
			ID:           uuid.New(),
			MaterialID:   steelID,
			MaterialName: "Thép D10",
			Unit:         "kg",
			Quantity:     decimal.NewFromInt(500),
			UnitPrice:    amount.Div(decimal.NewFromInt(500)),
			Amount:       amount,
		}},
	}
}

func newTestPO(t *testing.T) *PurchaseOrder {
	t.Helper()
	due := time.Now().Add(7 * 24 * time.Hour)
	po, err := NewFromQuotation(selectedQuotation("7500000"), FromQuotationInput{
		Code:            "PO00001",
		RequestID:       uuid.New(),
		ProjectID:       uuid.New(),
		CreatedBy:       uuid.New(),
		DeliveryAddress: "Công trường An Phú",
		DeliveryDate:    &due,
	})
	require.NoError(t, err)
	return po
}

func actAll(t *testing.T, po *PurchaseOrder, decisions ...approval.Decision) approval.Outcome {
	t.Helper()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	var outcome approval.Outcome
	for _, d := range decisions {
		var err error
		_, outcome, err = po.Act(approval.ActInput{Actor: admin, Decision: d}, approval.RolePolicy, time.Now())
		require.NoError(t, err)
	}
	return outcome
}

func approvedPO(t *testing.T) *PurchaseOrder {
	t.Helper()
	po := newTestPO(t)
	actAll(t, po, approval.DecisionApprove, approval.DecisionApprove, approval.DecisionApprove)
	require.Equal(t, StatusApproved, po.Status)
	return po
}

func TestNewFromQuotation(t *testing.T) {
	t.Run("copies lines and computes VAT", func(t *testing.T) {
		po := newTestPO(t)

		assert.Equal(t, StatusPending, po.Status)
		assert.Equal(t, "7500000", po.TotalAmount.String())
		assert.Equal(t, "750000", po.VATAmount.String())
		assert.Equal(t, "8250000", po.GrandTotal.String())
		assert.True(t, po.GrandTotal.Equal(po.TotalAmount.Mul(decimal.RequireFromString("1.10")).Round(2)))
		assert.Equal(t, "30 ngày", po.PaymentTerms)
		require.Len(t, po.Items, 1)
		assert.Equal(t, po.ID, po.Items[0].OrderID)
		assert.Len(t, po.Approvals, 3)
		assert.Equal(t, approval.OwnerPurchaseOrder, po.Approvals[0].OwnerType)
	})

	t.Run("rounds VAT to two places", func(t *testing.T) {
		po, err := NewFromQuotation(selectedQuotation("1234.57"), FromQuotationInput{Code: "PO00002"})
		require.NoError(t, err)
		assert.Equal(t, "123.46", po.VATAmount.String())
		assert.Equal(t, "1358.03", po.GrandTotal.String())
	})

	t.Run("items are detached from the quotation", func(t *testing.T) {
		q := selectedQuotation("100")
		po, err := NewFromQuotation(q, FromQuotationInput{Code: "PO00003"})
		require.NoError(t, err)
		q.Items[0].Quantity = decimal.NewFromInt(1)
		assert.True(t, po.Items[0].Quantity.Equal(decimal.NewFromInt(500)))
	})

	t.Run("requires a selected quotation", func(t *testing.T) {
		q := selectedQuotation("100")
		q.Status = sourcing.QuotationStatusPending
		_, err := NewFromQuotation(q, FromQuotationInput{Code: "PO00004"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestPurchaseOrder_Act(t *testing.T) {
	t.Run("all three levels approve", func(t *testing.T) {
		po := approvedPO(t)
		assert.Equal(t, approval.OutcomeApproved, po.Approvals.Outcome())
	})

	t.Run("level three rejection is terminal", func(t *testing.T) {
		po := newTestPO(t)
		outcome := actAll(t, po, approval.DecisionApprove, approval.DecisionApprove, approval.DecisionReject)

		assert.Equal(t, approval.OutcomeRejected, outcome)
		assert.Equal(t, StatusRejected, po.Status)
		assert.True(t, po.Status.IsTerminal())

		admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
		_, _, err := po.Act(approval.ActInput{Actor: admin, Decision: approval.DecisionApprove}, nil, time.Now())
		assert.ErrorIs(t, err, shared.ErrNoPendingApproval)
		assert.Equal(t, StatusRejected, po.Status)
	})

	t.Run("director cannot sign level one", func(t *testing.T) {
		po := newTestPO(t)
		director := identity.NewActor(uuid.New(), identity.RoleDirector)
		_, _, err := po.Act(approval.ActInput{Actor: director, Decision: approval.DecisionApprove}, approval.RolePolicy, time.Now())
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	})
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
		StatusApproved:  {StatusSent, StatusInTransit, StatusDelivered, StatusCancelled},
		StatusSent:      {StatusInTransit, StatusDelivered, StatusCancelled},
		StatusInTransit: {StatusDelivered, StatusCancelled},
		StatusDelivered: {StatusCompleted, StatusCancelled},
	}
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusSent, StatusInTransit, StatusDelivered, StatusCompleted, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	po := approvedPO(t)
	now := time.Now()

	require.NoError(t, po.Send(now))
	assert.Equal(t, StatusSent, po.Status)
	assert.NotNil(t, po.SentAt)

	require.NoError(t, po.MarkInTransit())
	require.NoError(t, po.MarkInTransit())
	require.NoError(t, po.MarkDelivered(now))
	assert.Equal(t, now, *po.ActualDelivery)
	require.NoError(t, po.MarkDelivered(now.Add(time.Hour)))
	assert.Equal(t, now, *po.ActualDelivery)

	require.NoError(t, po.Complete())
	assert.ErrorIs(t, po.Cancel("late", now), shared.ErrInvalidState)
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	po := newTestPO(t)
	require.NoError(t, po.Cancel("Nhà cung cấp hết hàng", time.Now()))
	assert.Equal(t, StatusCancelled, po.Status)
	assert.Equal(t, "Nhà cung cấp hết hàng", po.CancelReason)
	assert.ErrorIs(t, po.Send(time.Now()), shared.ErrInvalidState)
}

func TestPurchaseOrder_Overdue(t *testing.T) {
	po := approvedPO(t)
	due := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	po.DeliveryDate = &due

	now := due.Add(3*24*time.Hour + 2*time.Hour)
	assert.True(t, po.IsOverdue(now))
	assert.Equal(t, 3, po.DaysLate(now))
	assert.False(t, po.IsOverdue(due.Add(-time.Hour)))
	assert.Equal(t, 0, po.DaysLate(due.Add(-time.Hour)))

	require.NoError(t, po.MarkDelivered(now))
	assert.False(t, po.IsOverdue(now))
}
