package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestRequest(t *testing.T, code string, projectID, materialID uuid.UUID, qty int64) *request.MaterialRequest {
	t.Helper()
	req, err := request.NewMaterialRequest(code, projectID, uuid.New(), "Thép cho móng", request.PriorityNormal, nil,
		[]request.ItemInput{{MaterialID: materialID, Quantity: decimal.NewFromInt(qty)}}, 2)
	require.NoError(t, err)
	return req
}

func newTestOrder(t *testing.T, code string, status purchase.Status, deliveryDate *time.Time) *purchase.PurchaseOrder {
	t.Helper()
	po := &purchase.PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		QuotationID:       uuid.New(),
		RequestID:         uuid.New(),
		ProjectID:         uuid.New(),
		SupplierID:        uuid.New(),
		CreatedBy:         uuid.New(),
		TotalAmount:       decimal.NewFromInt(10000000),
		VATAmount:         decimal.NewFromInt(1000000),
		GrandTotal:        decimal.NewFromInt(11000000),
		DeliveryDate:      deliveryDate,
		Status:            status,
	}
	po.Items = []purchase.PurchaseOrderItem{{
		ID:           uuid.New(),
		OrderID:      po.ID,
		MaterialID:   uuid.New(),
		MaterialName: "Thép D16",
		Unit:         "kg",
		Quantity:     decimal.NewFromInt(500),
		UnitPrice:    decimal.NewFromInt(20000),
		Amount:       decimal.NewFromInt(10000000),
	}}
	chain, err := approval.Initialize(approval.OwnerPurchaseOrder, po.ID, 3)
	require.NoError(t, err)
	po.Approvals = chain
	return po
}

func TestMaterialRequestRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMaterialRequestRepository(db)
	ctx := context.Background()

	req := newTestRequest(t, "YC00001", uuid.New(), uuid.New(), 500)
	require.NoError(t, repo.Create(ctx, req))

	found, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "YC00001", found.Code)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].Quantity.Equal(decimal.NewFromInt(500)))
	require.Len(t, found.Approvals, 2)
	assert.Equal(t, 1, found.Approvals[0].Level)

	t.Run("approval decisions are saved with the request", func(t *testing.T) {
		actor := identity.NewActor(uuid.New(), identity.RolePurchasingManager)
		_, _, err := found.Act(approval.ActInput{Actor: actor, Decision: approval.DecisionApprove, Comment: "Đồng ý"}, nil, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, found))

		reloaded, err := repo.FindByIDForUpdate(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, approval.StatusApproved, reloaded.Approvals[0].Status)
		assert.Equal(t, "Đồng ý", reloaded.Approvals[0].Comment)
		assert.Equal(t, found.Version, reloaded.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, req.ID)
		require.NoError(t, err)
		stale.Version--
		err = repo.SaveWithLock(ctx, stale)
		assert.True(t, shared.HasCode(err, shared.CodeConcurrentModification))
	})

	t.Run("missing request", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("duplicate code", func(t *testing.T) {
		dup := newTestRequest(t, "YC00001", uuid.New(), uuid.New(), 1)
		err := repo.Create(ctx, dup)
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
	})
}

func TestMaterialRequestRepository_SumQuantityByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMaterialRequestRepository(db)
	ctx := context.Background()
	projectID, steel := uuid.New(), uuid.New()

	first := newTestRequest(t, "YC00001", projectID, steel, 300)
	second := newTestRequest(t, "YC00002", projectID, steel, 200)
	otherProject := newTestRequest(t, "YC00003", uuid.New(), steel, 900)
	for _, r := range []*request.MaterialRequest{first, second, otherProject} {
		require.NoError(t, repo.Create(ctx, r))
	}

	sum, err := repo.SumQuantityByStatus(ctx, projectID, steel, request.UncommittedStatuses, nil)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(500)), sum.String())

	sum, err = repo.SumQuantityByStatus(ctx, projectID, steel, request.UncommittedStatuses, &first.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(200)), sum.String())

	sum, err = repo.SumQuantityByStatus(ctx, projectID, steel, []request.Status{request.StatusCompleted}, nil)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestMaterialQuotaRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMaterialQuotaRepository(db)
	ctx := context.Background()
	projectID, cement := uuid.New(), uuid.New()

	q, err := quota.NewMaterialQuota(projectID, cement, decimal.NewFromInt(1000), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, q))
	require.NoError(t, repo.IncrementUsed(ctx, q.ID, decimal.NewFromInt(250)))

	t.Run("save keeps used quantity", func(t *testing.T) {
		require.NoError(t, q.SetMaxQuantity(decimal.NewFromInt(1500)))
		require.NoError(t, repo.Save(ctx, q))

		found, err := repo.FindByProjectAndMaterial(ctx, projectID, cement)
		require.NoError(t, err)
		assert.True(t, found.MaxQuantity.Equal(decimal.NewFromInt(1500)))
		assert.True(t, found.UsedQuantity.Equal(decimal.NewFromInt(250)))
	})

	t.Run("unknown quota", func(t *testing.T) {
		_, err := repo.FindByProjectAndMaterial(ctx, projectID, uuid.New())
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
		err = repo.IncrementUsed(ctx, uuid.New(), decimal.NewFromInt(1))
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, q.ID))
		list, err := repo.FindByProject(ctx, projectID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestGormCodeGenerator_Next(t *testing.T) {
	db := setupTestDB(t)
	gen := NewGormCodeGenerator(db)
	requests := NewGormMaterialRequestRepository(db)
	ctx := context.Background()

	code, err := gen.Next(ctx, port.PrefixMaterialRequest)
	require.NoError(t, err)
	assert.Equal(t, "YC00001", code)

	require.NoError(t, requests.Create(ctx, newTestRequest(t, "YC00007", uuid.New(), uuid.New(), 1)))
	code, err = gen.Next(ctx, port.PrefixMaterialRequest)
	require.NoError(t, err)
	assert.Equal(t, "YC00008", code)

	t.Run("wider numbers sort after five digits", func(t *testing.T) {
		require.NoError(t, requests.Create(ctx, newTestRequest(t, "YC99999", uuid.New(), uuid.New(), 1)))
		require.NoError(t, requests.Create(ctx, newTestRequest(t, "YC100000", uuid.New(), uuid.New(), 1)))
		code, err := gen.Next(ctx, port.PrefixMaterialRequest)
		require.NoError(t, err)
		assert.Equal(t, "YC100001", code)
	})

	t.Run("prefixes are independent", func(t *testing.T) {
		code, err := gen.Next(ctx, port.PrefixPayment)
		require.NoError(t, err)
		assert.Equal(t, "UNC00001", code)
	})

	t.Run("unknown prefix", func(t *testing.T) {
		_, err := gen.Next(ctx, port.CodePrefix("ZZ"))
		assert.True(t, shared.HasCode(err, shared.CodeInvalidInput))
	})
}

func TestPurchaseOrderRepository_FindOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -5)
	future := now.AddDate(0, 0, 3)

	late := newTestOrder(t, "PO00001", purchase.StatusSent, &past)
	onTime := newTestOrder(t, "PO00002", purchase.StatusSent, &future)
	delivered := newTestOrder(t, "PO00003", purchase.StatusDelivered, &past)
	undated := newTestOrder(t, "PO00004", purchase.StatusInTransit, nil)
	for _, po := range []*purchase.PurchaseOrder{late, onTime, delivered, undated} {
		require.NoError(t, repo.Create(ctx, po))
	}

	overdue, err := repo.FindOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.Len(t, overdue[0].Approvals, 3)
	assert.Len(t, overdue[0].Items, 1)

	exists, err := repo.ExistsForQuotation(ctx, late.QuotationID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTrackingRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTrackingRepository(db)
	ctx := context.Background()
	poID := uuid.New()

	latest, err := repo.FindLatest(ctx, poID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []purchase.DeliveryTracking{
		{ID: uuid.New(), POID: poID, Status: purchase.TrackingShipped, CreatedAt: base},
		{ID: uuid.New(), POID: poID, Status: purchase.TrackingDelayed, IsDelayed: true, DelayReason: "Mưa lớn", CreatedAt: base.Add(time.Hour)},
	}
	for i := range events {
		require.NoError(t, repo.Append(ctx, &events[i]))
	}

	latest, err = repo.FindLatest(ctx, poID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.IsDelayed)

	history, err := repo.FindByPOID(ctx, poID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, purchase.TrackingShipped, history[0].Status)
}

func TestDeliveryRepository_Photos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()
	d := &purchase.Delivery{
		ID:            uuid.New(),
		POID:          uuid.New(),
		DeliveryDate:  time.Now(),
		ReceivedBy:    "Nguyễn Văn Bảo",
		RecordedBy:    uuid.New(),
		QualityStatus: purchase.QualityOK,
		ActualQuantity: []purchase.DeliveredQuantity{
			{MaterialID: uuid.New(), Quantity: decimal.NewFromInt(500)},
		},
	}
	require.NoError(t, repo.Create(ctx, d))

	d.Photos = append(d.Photos, "deliveries/a.jpg")
	require.NoError(t, repo.Save(ctx, d))

	found, err := repo.FindByPOID(ctx, d.POID)
	require.NoError(t, err)
	assert.Equal(t, []string{"deliveries/a.jpg"}, found.Photos)
	require.Len(t, found.ActualQuantity, 1)
	assert.True(t, found.ActualQuantity[0].Quantity.Equal(decimal.NewFromInt(500)))

	err = repo.Create(ctx, &purchase.Delivery{ID: uuid.New(), POID: d.POID, ReceivedBy: "x", RecordedBy: uuid.New()})
	assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	n, err := notification.New(owner, "Đơn hàng giao trễ", "PO00001 bị trễ", notification.TypeWarning, "/purchase-orders/1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, n))

	err = repo.MarkRead(ctx, n.ID, uuid.New())
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))

	require.NoError(t, repo.MarkRead(ctx, n.ID, owner))
	list, err := repo.FindLatest(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

func newTestRFQ(code string, requestID uuid.UUID) *sourcing.RFQ {
	return &sourcing.RFQ{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		RequestID:         requestID,
		Title:             "Yêu cầu báo giá - Chung cư Hòa Bình",
		Deadline:          time.Now().Add(7 * 24 * time.Hour),
		Status:            sourcing.RFQStatusSent,
		CreatedBy:         uuid.New(),
		SupplierIDs:       []uuid.UUID{uuid.New(), uuid.New()},
	}
}

func TestRFQRepository_OnePerRequest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRFQRepository(db)
	ctx := context.Background()
	requestID := uuid.New()

	exists, err := repo.ExistsForRequest(ctx, requestID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, newTestRFQ("RFQ00001", requestID)))
	exists, err = repo.ExistsForRequest(ctx, requestID)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, newTestRFQ("RFQ00002", requestID))
	assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists), "unique index rejects a second RFQ")

	exists, err = repo.ExistsForRequest(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	req := newTestRequest(t, "YC00001", uuid.New(), uuid.New(), 10)
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		if err := repos.RequestRepo().Create(ctx, req); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormMaterialRequestRepository(db).FindByID(ctx, req.ID)
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))
}
