package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/procurement/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stockFixture struct {
	requests  *testutil.MockMaterialRequestRepository
	materials *testutil.MockMaterialRepository
	issues    *testutil.MockStockIssueRepository
	notifier  *testutil.RecordingNotifier
	publisher *testutil.RecordingPublisher
	svc       *StockService
}

func newStockFixture() *stockFixture {
	f := &stockFixture{
		requests:  new(testutil.MockMaterialRequestRepository),
		materials: new(testutil.MockMaterialRepository),
		issues:    new(testutil.MockStockIssueRepository),
		notifier:  testutil.NewRecordingNotifier(),
		publisher: new(testutil.RecordingPublisher),
	}
	repos := &txn.Repositories{
		Requests:    f.requests,
		Materials:   f.materials,
		StockIssues: f.issues,
		CodeGen:     testutil.NewSequentialCodes(),
	}
	f.svc = NewStockService(txn.NewNoOpTransactionScope(repos), f.requests, f.materials, f.issues, f.notifier, zap.NewNop())
	f.svc.SetEventPublisher(f.publisher)
	return f
}

// trackStock applies AdjustStock deltas to the material like the database would
func (f *stockFixture) trackStock(m *catalog.Material) {
	f.materials.On("AdjustStock", mock.Anything, m.ID, mock.AnythingOfType("decimal.Decimal")).
		Run(func(args mock.Arguments) {
			m.Stock = m.Stock.Add(args.Get(2).(decimal.Decimal))
		}).Return(nil)
}

func steel(t *testing.T, stockQty int64) *catalog.Material {
	t.Helper()
	m, err := catalog.NewMaterial("VT001", "Thép D10", "kg")
	require.NoError(t, err)
	m.Stock = decimal.NewFromInt(stockQty)
	return m
}

func approvedRequest(t *testing.T, materialID uuid.UUID, qty int64) *request.MaterialRequest {
	t.Helper()
	r, err := request.NewMaterialRequest("YC00001", uuid.New(), uuid.New(), "Thép sàn tầng 2", request.PriorityHigh, nil,
		[]request.ItemInput{{MaterialID: materialID, Quantity: decimal.NewFromInt(qty)}}, approval.DefaultLevels)
	require.NoError(t, err)
	r.Status = request.StatusApproved
	r.PullDomainEvents()
	return r
}

func TestAnalyzeRequest(t *testing.T) {
	f := newStockFixture()
	m := steel(t, 1500)
	r := approvedRequest(t, m.ID, 2000)
	f.materials.On("FindByIDs", mock.Anything, []uuid.UUID{m.ID}).Return(map[uuid.UUID]*catalog.Material{m.ID: m}, nil)

	analysis, err := AnalyzeRequest(context.Background(), f.materials, r)
	require.NoError(t, err)
	require.Len(t, analysis.Items, 1)
	assert.Equal(t, "1500", analysis.Items[0].FulfillQuantity.String())
	assert.Equal(t, "500", analysis.Items[0].NeedToBuy.String())
	assert.False(t, analysis.CanFulfillFully)
	assert.True(t, analysis.CanFulfillPartially)
	f.materials.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockService_IssueAndReceive(t *testing.T) {
	ctx := context.Background()
	staff := identity.NewActor(uuid.New(), identity.RolePurchasingStaff)
	supervisor := identity.NewActor(uuid.New(), identity.RoleSiteSupervisor)

	f := newStockFixture()
	m := steel(t, 1500)
	r := approvedRequest(t, m.ID, 1000)
	f.trackStock(m)

	f.requests.On("FindByIDForUpdate", mock.Anything, r.ID).Return(r, nil)
	f.requests.On("SaveWithLock", mock.Anything, r).Return(nil)
	f.issues.On("ExistsForRequest", mock.Anything, r.ID).Return(false, nil)
	f.materials.On("FindByIDForUpdate", mock.Anything, m.ID).Return(m, nil)

	var created *stock.StockIssue
	f.issues.On("Create", mock.Anything, mock.AnythingOfType("*stock.StockIssue")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*stock.StockIssue) }).Return(nil)

	issued, err := f.svc.Issue(ctx, staff, IssueStockRequest{
		RequestID: r.ID,
		Items:     []IssueStockItemInput{{MaterialID: m.ID, Quantity: decimal.NewFromInt(1000)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "XK00001", issued.Code)
	assert.Equal(t, stock.IssueStatusPending, issued.Status)
	require.Len(t, issued.Items, 1)
	assert.Equal(t, "1000", issued.Items[0].Quantity.String())
	assert.Equal(t, request.StatusProcessing, r.Status)
	assert.Equal(t, "1500", m.Stock.String(), "stock is untouched until receipt")
	assert.Equal(t, []string{stock.EventTypeStockIssued}, f.publisher.EventTypes())

	f.issues.On("FindByIDForUpdate", mock.Anything, created.ID).Return(created, nil)
	f.issues.On("SaveWithLock", mock.Anything, created).Return(nil)

	received, err := f.svc.ConfirmReceipt(ctx, supervisor, created.ID, ReceiveStockRequest{Note: "Đủ hàng"})
	require.NoError(t, err)
	assert.Equal(t, stock.IssueStatusCompleted, received.Status)
	require.NotNil(t, received.ReceivedBy)
	assert.Equal(t, supervisor.UserID, *received.ReceivedBy)
	assert.Equal(t, "500", m.Stock.String())
	assert.Equal(t, request.StatusCompleted, r.Status)
	assert.Contains(t, f.publisher.EventTypes(), stock.EventTypeStockReceived)
	assert.Contains(t, f.publisher.EventTypes(), request.EventTypeRequestCompleted)

	t.Run("second confirmation is already processed", func(t *testing.T) {
		_, err := f.svc.ConfirmReceipt(ctx, supervisor, created.ID, ReceiveStockRequest{})
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyProcessed))
		assert.Equal(t, "500", m.Stock.String())
		f.materials.AssertNumberOfCalls(t, "AdjustStock", 1)
	})
}

func TestStockService_Issue(t *testing.T) {
	ctx := context.Background()
	staff := identity.NewActor(uuid.New(), identity.RolePurchasingStaff)

	t.Run("quantity above stock is insufficient", func(t *testing.T) {
		f := newStockFixture()
		m := steel(t, 500)
		r := approvedRequest(t, m.ID, 1000)
		f.requests.On("FindByIDForUpdate", mock.Anything, r.ID).Return(r, nil)
		f.issues.On("ExistsForRequest", mock.Anything, r.ID).Return(false, nil)
		f.materials.On("FindByIDForUpdate", mock.Anything, m.ID).Return(m, nil)

		_, err := f.svc.Issue(ctx, staff, IssueStockRequest{
			RequestID: r.ID,
			Items:     []IssueStockItemInput{{MaterialID: m.ID, Quantity: decimal.NewFromInt(1000)}},
		})
		assert.True(t, shared.HasCode(err, shared.CodeInsufficientStock))
		f.issues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Equal(t, request.StatusApproved, r.Status)
	})

	t.Run("second issue for the same request already exists", func(t *testing.T) {
		f := newStockFixture()
		m := steel(t, 1500)
		r := approvedRequest(t, m.ID, 1000)
		f.requests.On("FindByIDForUpdate", mock.Anything, r.ID).Return(r, nil)
		f.issues.On("ExistsForRequest", mock.Anything, r.ID).Return(true, nil)

		_, err := f.svc.Issue(ctx, staff, IssueStockRequest{RequestID: r.ID})
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
	})

	t.Run("pending request cannot be issued", func(t *testing.T) {
		f := newStockFixture()
		m := steel(t, 1500)
		r := approvedRequest(t, m.ID, 1000)
		r.Status = request.StatusPending
		f.requests.On("FindByIDForUpdate", mock.Anything, r.ID).Return(r, nil)

		_, err := f.svc.Issue(ctx, staff, IssueStockRequest{RequestID: r.ID})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
		f.issues.AssertNotCalled(t, "ExistsForRequest", mock.Anything, mock.Anything)
	})

	t.Run("empty items issue what stock can serve", func(t *testing.T) {
		f := newStockFixture()
		m := steel(t, 1500)
		r := approvedRequest(t, m.ID, 2000)
		f.requests.On("FindByIDForUpdate", mock.Anything, r.ID).Return(r, nil)
		f.requests.On("SaveWithLock", mock.Anything, r).Return(nil)
		f.issues.On("ExistsForRequest", mock.Anything, r.ID).Return(false, nil)
		f.issues.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.materials.On("FindByIDs", mock.Anything, []uuid.UUID{m.ID}).Return(map[uuid.UUID]*catalog.Material{m.ID: m}, nil)
		f.materials.On("FindByIDForUpdate", mock.Anything, m.ID).Return(m, nil)

		issued, err := f.svc.Issue(ctx, staff, IssueStockRequest{RequestID: r.ID})
		require.NoError(t, err)
		require.Len(t, issued.Items, 1)
		assert.Equal(t, "1500", issued.Items[0].Quantity.String())
	})

	t.Run("material outside the request is rejected", func(t *testing.T) {
		f := newStockFixture()
		m := steel(t, 1500)
		r := approvedRequest(t, m.ID, 1000)
		f.requests.On("FindByIDForUpdate", mock.Anything, r.ID).Return(r, nil)
		f.issues.On("ExistsForRequest", mock.Anything, r.ID).Return(false, nil)

		_, err := f.svc.Issue(ctx, staff, IssueStockRequest{
			RequestID: r.ID,
			Items:     []IssueStockItemInput{{MaterialID: uuid.New(), Quantity: decimal.NewFromInt(1)}},
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("supplier cannot issue stock", func(t *testing.T) {
		f := newStockFixture()
		_, err := f.svc.Issue(ctx, identity.NewActor(uuid.New(), identity.RoleSupplier), IssueStockRequest{RequestID: uuid.New()})
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
		f.requests.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})
}

func TestStockService_ConfirmReceiptUsesClock(t *testing.T) {
	f := newStockFixture()
	fixed := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	m := steel(t, 100)
	r := approvedRequest(t, m.ID, 40)
	r.Status = request.StatusProcessing
	issue, err := stock.NewStockIssue("XK00007", r.ID, uuid.New(), "", []stock.StockIssueItem{
		{MaterialID: m.ID, MaterialName: m.Name, Unit: m.Unit, Quantity: decimal.NewFromInt(40)},
	})
	require.NoError(t, err)
	f.trackStock(m)
	f.issues.On("FindByIDForUpdate", mock.Anything, issue.ID).Return(issue, nil)
	f.issues.On("SaveWithLock", mock.Anything, issue).Return(nil)
	f.requests.On("FindByIDForUpdate", mock.Anything, r.ID).Return(r, nil)
	f.requests.On("SaveWithLock", mock.Anything, r).Return(nil)

	res, err := f.svc.ConfirmReceipt(context.Background(), identity.NewActor(uuid.New(), identity.RoleSiteSupervisor), issue.ID, ReceiveStockRequest{})
	require.NoError(t, err)
	require.NotNil(t, res.ReceivedAt)
	assert.True(t, fixed.Equal(*res.ReceivedAt))
	assert.Equal(t, "60", m.Stock.String())

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, issue.IssuedBy, sent[0].UserID)
}

func TestStockService_Restock(t *testing.T) {
	ctx := context.Background()

	t.Run("admin adds stock", func(t *testing.T) {
		f := newStockFixture()
		m := steel(t, 100)
		f.trackStock(m)
		f.materials.On("FindByID", mock.Anything, m.ID).Return(m, nil)

		res, err := f.svc.Restock(ctx, identity.NewActor(uuid.New(), identity.RoleAdmin), m.ID, RestockRequest{Quantity: decimal.NewFromInt(250)})
		require.NoError(t, err)
		assert.Equal(t, "350", res.Stock.String())
	})

	t.Run("non-positive quantity is invalid", func(t *testing.T) {
		f := newStockFixture()
		_, err := f.svc.Restock(ctx, identity.NewActor(uuid.New(), identity.RoleAdmin), uuid.New(), RestockRequest{Quantity: decimal.Zero})
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("purchasing manager cannot restock", func(t *testing.T) {
		f := newStockFixture()
		_, err := f.svc.Restock(ctx, identity.NewActor(uuid.New(), identity.RolePurchasingManager), uuid.New(), RestockRequest{Quantity: decimal.NewFromInt(1)})
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
	})
}
