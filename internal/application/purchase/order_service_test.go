package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type purchaseFixture struct {
	requests   *testutil.MockMaterialRequestRepository
	suppliers  *testutil.MockSupplierRepository
	rfqs       *testutil.MockRFQRepository
	quotations *testutil.MockQuotationRepository
	orders     *testutil.MockPurchaseOrderRepository
	deliveries *testutil.MockDeliveryRepository
	payments   *testutil.MockPaymentRepository
	tracking   *testutil.MockTrackingRepository
	users      *testutil.MockUserRepository
	mailer     *testutil.MockMailer
	exporter   *testutil.MockExporter
	storage    *testutil.MockObjectStorage
	notifier   *testutil.RecordingNotifier
	publisher  *testutil.RecordingPublisher
	txScope    txn.TransactionScope
}

func newPurchaseFixture() *purchaseFixture {
	f := &purchaseFixture{
		requests:   new(testutil.MockMaterialRequestRepository),
		suppliers:  new(testutil.MockSupplierRepository),
		rfqs:       new(testutil.MockRFQRepository),
		quotations: new(testutil.MockQuotationRepository),
		orders:     new(testutil.MockPurchaseOrderRepository),
		deliveries: new(testutil.MockDeliveryRepository),
		payments:   new(testutil.MockPaymentRepository),
		tracking:   new(testutil.MockTrackingRepository),
		users:      new(testutil.MockUserRepository),
		mailer:     new(testutil.MockMailer),
		exporter:   new(testutil.MockExporter),
		storage:    new(testutil.MockObjectStorage),
		notifier:   testutil.NewRecordingNotifier(),
		publisher:  new(testutil.RecordingPublisher),
	}
	f.txScope = txn.NewNoOpTransactionScope(&txn.Repositories{
		Requests:   f.requests,
		Suppliers:  f.suppliers,
		RFQs:       f.rfqs,
		Quotations: f.quotations,
		Orders:     f.orders,
		Deliveries: f.deliveries,
		Payments:   f.payments,
		Tracking:   f.tracking,
		CodeGen:    testutil.NewSequentialCodes(),
	})
	return f
}

func (f *purchaseFixture) orderService() *PurchaseOrderService {
	svc := NewPurchaseOrderService(f.txScope, f.orders, f.suppliers, f.mailer, f.exporter, f.notifier, zap.NewNop())
	svc.SetEventPublisher(f.publisher)
	return svc
}

func (f *purchaseFixture) deliveryService() *DeliveryService {
	svc := NewDeliveryService(f.txScope, f.deliveries, f.storage, f.notifier, zap.NewNop())
	svc.SetEventPublisher(f.publisher)
	return svc
}

func (f *purchaseFixture) paymentService() *PaymentService {
	svc := NewPaymentService(f.txScope, f.orders, f.deliveries, f.payments, f.notifier, zap.NewNop())
	svc.SetEventPublisher(f.publisher)
	return svc
}

func (f *purchaseFixture) trackingService() *TrackingService {
	svc := NewTrackingService(f.txScope, f.orders, f.tracking, f.requests, f.users, f.mailer, f.notifier, zap.NewNop())
	svc.SetEventPublisher(f.publisher)
	return svc
}

var steelID = uuid.New()

func selectedQuotation(total string) *sourcing.Quotation {
	amount := decimal.RequireFromString(total)
	return &sourcing.Quotation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              "BG00001",
		RFQID:             uuid.New(),
		SupplierID:        uuid.New(),
		TotalAmount:       amount,
		PaymentTerms:      "Thanh toán sau 30 ngày",
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

// newOrder builds a PO in the given status without going through the services
func newOrder(t *testing.T, status purchase.Status) *purchase.PurchaseOrder {
	t.Helper()
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	po, err := purchase.NewFromQuotation(selectedQuotation("7500000"), purchase.FromQuotationInput{
		Code:            "PO00001",
		RequestID:       uuid.New(),
		ProjectID:       uuid.New(),
		CreatedBy:       uuid.New(),
		DeliveryAddress: "Công trường An Phú",
		DeliveryDate:    &due,
	})
	require.NoError(t, err)
	po.Status = status
	po.PullDomainEvents()
	return po
}

func TestPurchaseOrderService_CreateFromQuotation(t *testing.T) {
	ctx := context.Background()
	manager := identity.NewActor(uuid.New(), identity.RolePurchasingManager)

	setup := func(f *purchaseFixture) (*sourcing.Quotation, *request.MaterialRequest) {
		q := selectedQuotation("7500000")
		req := &request.MaterialRequest{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Code:              "YC00001",
			ProjectID:         uuid.New(),
			CreatedBy:         uuid.New(),
			Status:            request.StatusProcessing,
		}
		rfq := &sourcing.RFQ{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Code: "RFQ00001", RequestID: req.ID}
		rfq.ID = q.RFQID
		f.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.rfqs.On("FindByID", mock.Anything, q.RFQID).Return(rfq, nil)
		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		return q, req
	}

	t.Run("adds 10 percent VAT and a 3-level chain", func(t *testing.T) {
		f := newPurchaseFixture()
		q, req := setup(f)
		f.orders.On("ExistsForQuotation", mock.Anything, q.ID).Return(false, nil)
		f.orders.On("Create", mock.Anything, mock.AnythingOfType("*purchase.PurchaseOrder")).Return(nil)

		res, err := f.orderService().CreateFromQuotation(ctx, manager, CreatePurchaseOrderRequest{
			QuotationID:     q.ID,
			DeliveryAddress: "Công trường An Phú",
		})
		require.NoError(t, err)
		assert.Equal(t, "PO00001", res.Code)
		assert.Equal(t, purchase.StatusPending, res.Status)
		assert.Equal(t, "7500000", res.TotalAmount.String())
		assert.Equal(t, "750000", res.VATAmount.String())
		assert.Equal(t, "8250000", res.GrandTotal.String())
		assert.Equal(t, req.ID, res.RequestID)
		assert.Equal(t, req.ProjectID, res.ProjectID)
		assert.Len(t, res.Approvals, approval.DefaultLevels)
		assert.Equal(t, 1, res.CurrentLevel)
		assert.Equal(t, []string{purchase.EventTypePurchaseOrderCreated}, f.publisher.EventTypes())

		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, identity.RolePurchasingManager, sent[0].Role)
	})

	t.Run("a quotation backs at most one PO", func(t *testing.T) {
		f := newPurchaseFixture()
		q, _ := setup(f)
		f.orders.On("ExistsForQuotation", mock.Anything, q.ID).Return(true, nil)

		_, err := f.orderService().CreateFromQuotation(ctx, manager, CreatePurchaseOrderRequest{QuotationID: q.ID})
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unselected quotation is rejected", func(t *testing.T) {
		f := newPurchaseFixture()
		q, _ := setup(f)
		q.Status = sourcing.QuotationStatusPending
		f.orders.On("ExistsForQuotation", mock.Anything, q.ID).Return(false, nil)

		_, err := f.orderService().CreateFromQuotation(ctx, manager, CreatePurchaseOrderRequest{QuotationID: q.ID})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
	})

	t.Run("supplier cannot create POs", func(t *testing.T) {
		f := newPurchaseFixture()
		supplier := identity.NewActor(uuid.New(), identity.RoleSupplier)

		_, err := f.orderService().CreateFromQuotation(ctx, supplier, CreatePurchaseOrderRequest{QuotationID: uuid.New()})
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
	})
}

func TestPurchaseOrderService_ActOnApproval(t *testing.T) {
	ctx := context.Background()
	manager := identity.NewActor(uuid.New(), identity.RolePurchasingManager)
	accountant := identity.NewActor(uuid.New(), identity.RoleChiefAccountant)
	director := identity.NewActor(uuid.New(), identity.RoleDirector)

	t.Run("three signatures approve the PO", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusPending)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)
		svc := f.orderService()

		res, err := svc.ActOnApproval(ctx, manager, po.ID, ApprovePurchaseOrderRequest{Decision: approval.DecisionApprove})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Acted.Level)
		assert.Equal(t, approval.OutcomePending, res.Outcome)
		assert.Equal(t, 2, res.Order.CurrentLevel)

		_, err = svc.ActOnApproval(ctx, accountant, po.ID, ApprovePurchaseOrderRequest{Decision: approval.DecisionApprove})
		require.NoError(t, err)
		res, err = svc.ActOnApproval(ctx, director, po.ID, ApprovePurchaseOrderRequest{Decision: approval.DecisionApprove, Signature: "GD"})
		require.NoError(t, err)

		assert.Equal(t, 3, res.Acted.Level)
		assert.Equal(t, approval.OutcomeApproved, res.Outcome)
		assert.Equal(t, purchase.StatusApproved, res.Order.Status)
		assert.Equal(t, 0, res.Order.CurrentLevel)
		assert.Equal(t, []string{purchase.EventTypePurchaseOrderStatusChanged}, f.publisher.EventTypes())

		sent := f.notifier.Sent()
		require.Len(t, sent, 3)
		assert.Equal(t, identity.RoleChiefAccountant, sent[0].Role)
		assert.Equal(t, identity.RoleDirector, sent[1].Role)
		assert.Equal(t, po.CreatedBy, sent[2].UserID)
	})

	t.Run("wrong role for the pending level is denied", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusPending)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)

		_, err := f.orderService().ActOnApproval(ctx, director, po.ID, ApprovePurchaseOrderRequest{Decision: approval.DecisionApprove})
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("rejection is terminal", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusPending)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)
		svc := f.orderService()

		res, err := svc.ActOnApproval(ctx, manager, po.ID, ApprovePurchaseOrderRequest{Decision: approval.DecisionReject, Comment: "Giá cao"})
		require.NoError(t, err)
		assert.Equal(t, approval.OutcomeRejected, res.Outcome)
		assert.Equal(t, purchase.StatusRejected, res.Order.Status)

		_, err = svc.ActOnApproval(ctx, accountant, po.ID, ApprovePurchaseOrderRequest{Decision: approval.DecisionApprove})
		assert.True(t, shared.HasCode(err, shared.CodeNoPendingApproval))

		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Message, "Giá cao")
	})
}

func TestPurchaseOrderService_Send(t *testing.T) {
	ctx := context.Background()
	manager := identity.NewActor(uuid.New(), identity.RolePurchasingManager)

	t.Run("mails the supplier after commit", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusApproved)
		supplier, err := catalog.NewSupplier("NCC01", "Công ty Thép Việt", "sales@thepviet.vn")
		require.NoError(t, err)
		supplier.ID = po.SupplierID
		now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)
		f.suppliers.On("FindByID", mock.Anything, po.SupplierID).Return(supplier, nil)
		f.mailer.On("SendPOConfirmation", mock.Anything, *supplier, po).Return(nil)
		svc := f.orderService()
		svc.now = func() time.Time { return now }

		res, err := svc.Send(ctx, manager, po.ID)
		require.NoError(t, err)
		assert.True(t, res.EmailSent)
		assert.Equal(t, purchase.StatusSent, res.Order.Status)
		require.NotNil(t, res.Order.SentAt)
		assert.Equal(t, now, *res.Order.SentAt)
	})

	t.Run("mail failure keeps the PO sent", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusApproved)
		supplier, err := catalog.NewSupplier("NCC01", "Công ty Thép Việt", "sales@thepviet.vn")
		require.NoError(t, err)

		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)
		f.suppliers.On("FindByID", mock.Anything, po.SupplierID).Return(supplier, nil)
		f.mailer.On("SendPOConfirmation", mock.Anything, mock.Anything, po).Return(errors.New("smtp down"))

		res, err := f.orderService().Send(ctx, manager, po.ID)
		require.NoError(t, err)
		assert.False(t, res.EmailSent)
		assert.Equal(t, purchase.StatusSent, res.Order.Status)
	})

	t.Run("pending PO cannot be sent", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusPending)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)

		_, err := f.orderService().Send(ctx, manager, po.ID)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
		f.mailer.AssertNotCalled(t, "SendPOConfirmation", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Cancel(t *testing.T) {
	ctx := context.Background()
	manager := identity.NewActor(uuid.New(), identity.RolePurchasingManager)

	f := newPurchaseFixture()
	po := newOrder(t, purchase.StatusSent)
	f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
	f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)

	res, err := f.orderService().Cancel(ctx, manager, po.ID, CancelPurchaseOrderRequest{Reason: "NCC hết hàng"})
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusCancelled, res.Status)
	assert.Equal(t, "NCC hết hàng", res.CancelReason)

	_, err = f.orderService().Cancel(ctx, manager, po.ID, CancelPurchaseOrderRequest{Reason: "again"})
	assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
}

func TestPurchaseOrderService_Export(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture()
	po := newOrder(t, purchase.StatusApproved)
	supplier, err := catalog.NewSupplier("NCC01", "Công ty Thép Việt", "")
	require.NoError(t, err)
	supplier.ID = po.SupplierID

	f.orders.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.PageSize == 1000 && filter.Filters["status"] == "approved"
	})).Return([]purchase.PurchaseOrder{*po}, int64(1), nil)
	f.suppliers.On("FindByIDs", mock.Anything, []uuid.UUID{po.SupplierID}).Return([]catalog.Supplier{*supplier}, nil)
	f.exporter.On("PurchaseOrders", mock.Anything, map[uuid.UUID]catalog.Supplier{po.SupplierID: *supplier}).Return([]byte("xlsx"), nil)

	status := purchase.StatusApproved
	data, err := f.orderService().Export(ctx, PurchaseOrderListFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
}
