package purchase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeliveryService_RecordDelivery(t *testing.T) {
	ctx := context.Background()
	supervisor := identity.NewActor(uuid.New(), identity.RoleSiteSupervisor)
	now := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)

	record := func(po *purchase.PurchaseOrder) RecordDeliveryRequest {
		return RecordDeliveryRequest{
			POID:       po.ID,
			ReceivedBy: "Nguyễn Văn Bảo",
			ActualQuantity: []DeliveredQuantityInput{
				{MaterialID: steelID, Quantity: decimal.NewFromInt(500)},
			},
			QualityStatus: purchase.QualityOK,
		}
	}

	t.Run("forces the PO to delivered", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusSent)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)
		f.deliveries.On("ExistsForPO", mock.Anything, po.ID).Return(false, nil)
		f.deliveries.On("Create", mock.Anything, mock.AnythingOfType("*purchase.Delivery")).Return(nil)
		f.payments.On("ExistsForPO", mock.Anything, po.ID).Return(false, nil)
		svc := f.deliveryService()
		svc.now = func() time.Time { return now }

		res, err := svc.RecordDelivery(ctx, supervisor, record(po))
		require.NoError(t, err)
		assert.Equal(t, po.ID, res.POID)
		assert.Equal(t, now, res.DeliveryDate)
		assert.Equal(t, supervisor.UserID, res.RecordedBy)
		assert.Empty(t, res.Photos)
		assert.Equal(t, purchase.StatusDelivered, po.Status)
		require.NotNil(t, po.ActualDelivery)
		assert.Equal(t, now, *po.ActualDelivery)
		assert.Equal(t, []string{purchase.EventTypePurchaseOrderStatusChanged}, f.publisher.EventTypes())

		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, notification.TypeSuccess, sent[0].Type)
	})

	t.Run("prepaid PO completes on delivery", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusInTransit)
		paid := &purchase.Payment{BaseAggregateRoot: shared.NewBaseAggregateRoot(), POID: po.ID, Status: purchase.PaymentStatusPaid}
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)
		f.deliveries.On("ExistsForPO", mock.Anything, po.ID).Return(false, nil)
		f.deliveries.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("ExistsForPO", mock.Anything, po.ID).Return(true, nil)
		f.payments.On("FindByPOID", mock.Anything, po.ID).Return(paid, nil)

		_, err := f.deliveryService().RecordDelivery(ctx, supervisor, record(po))
		require.NoError(t, err)
		assert.Equal(t, purchase.StatusCompleted, po.Status)
	})

	t.Run("second delivery record is refused", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusDelivered)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.deliveries.On("ExistsForPO", mock.Anything, po.ID).Return(true, nil)

		_, err := f.deliveryService().RecordDelivery(ctx, supervisor, record(po))
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
		f.deliveries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("pending PO cannot receive goods", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusPending)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)

		_, err := f.deliveryService().RecordDelivery(ctx, supervisor, record(po))
		assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
	})

	t.Run("material outside the PO is rejected", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusSent)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.deliveries.On("ExistsForPO", mock.Anything, po.ID).Return(false, nil)
		in := record(po)
		in.ActualQuantity[0].MaterialID = uuid.New()

		_, err := f.deliveryService().RecordDelivery(ctx, supervisor, in)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
		assert.Equal(t, purchase.StatusSent, po.Status)
	})

	t.Run("ng quality warns the PO creator", func(t *testing.T) {
		f := newPurchaseFixture()
		po := newOrder(t, purchase.StatusSent)
		f.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", mock.Anything, po).Return(nil)
		f.deliveries.On("ExistsForPO", mock.Anything, po.ID).Return(false, nil)
		f.deliveries.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("ExistsForPO", mock.Anything, po.ID).Return(false, nil)
		in := record(po)
		in.QualityStatus = purchase.QualityNG

		_, err := f.deliveryService().RecordDelivery(ctx, supervisor, in)
		require.NoError(t, err)
		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, po.CreatedBy, sent[0].UserID)
		assert.Equal(t, notification.TypeWarning, sent[0].Type)
	})

	t.Run("accountant cannot record deliveries", func(t *testing.T) {
		f := newPurchaseFixture()
		accountant := identity.NewActor(uuid.New(), identity.RoleChiefAccountant)

		_, err := f.deliveryService().RecordDelivery(ctx, accountant, RecordDeliveryRequest{POID: uuid.New(), ReceivedBy: "x"})
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
	})
}

func TestDeliveryService_UploadPhoto(t *testing.T) {
	ctx := context.Background()
	supervisor := identity.NewActor(uuid.New(), identity.RoleSiteSupervisor)
	photo := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	t.Run("stores the photo under the PO prefix", func(t *testing.T) {
		f := newPurchaseFixture()
		poID := uuid.New()
		d := &purchase.Delivery{ID: uuid.New(), POID: poID}
		expires := time.Now().Add(15 * time.Minute)
		f.deliveries.On("FindByPOID", mock.Anything, poID).Return(d, nil)
		f.deliveries.On("Save", mock.Anything, d).Return(nil)
		f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "deliveries/"+poID.String()+"/") && strings.HasSuffix(key, ".jpg")
		}), photo, "image/jpeg").Return(nil)
		f.storage.On("GenerateDownloadURL", mock.Anything, mock.Anything, 15*time.Minute).
			Return("https://files.example/photo.jpg", expires, nil)

		res, err := f.deliveryService().UploadPhoto(ctx, supervisor, poID, "IMG_001.JPG", "image/jpeg", photo)
		require.NoError(t, err)
		assert.Equal(t, "https://files.example/photo.jpg", res.DownloadURL)
		assert.Equal(t, expires, res.ExpiresAt)
		require.Len(t, d.Photos, 1)
		assert.Equal(t, res.StorageKey, d.Photos[0])
	})

	t.Run("presign failure still returns the key", func(t *testing.T) {
		f := newPurchaseFixture()
		poID := uuid.New()
		d := &purchase.Delivery{ID: uuid.New(), POID: poID}
		f.deliveries.On("FindByPOID", mock.Anything, poID).Return(d, nil)
		f.deliveries.On("Save", mock.Anything, d).Return(nil)
		f.storage.On("Upload", mock.Anything, mock.Anything, photo, "image/png").Return(nil)
		f.storage.On("GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything).
			Return("", time.Time{}, errors.New("signer unavailable"))

		res, err := f.deliveryService().UploadPhoto(ctx, supervisor, poID, "a.png", "image/png", photo)
		require.NoError(t, err)
		assert.NotEmpty(t, res.StorageKey)
		assert.Empty(t, res.DownloadURL)
	})

	t.Run("rejects non-images and oversize files", func(t *testing.T) {
		f := newPurchaseFixture()
		svc := f.deliveryService()

		_, err := svc.UploadPhoto(ctx, supervisor, uuid.New(), "a.pdf", "application/pdf", photo)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))

		_, err = svc.UploadPhoto(ctx, supervisor, uuid.New(), "a.jpg", "image/jpeg", make([]byte, MaxPhotoSize+1))
		assert.True(t, shared.HasCode(err, shared.CodeValidation))

		_, err = svc.UploadPhoto(ctx, supervisor, uuid.New(), "a.jpg", "image/jpeg", nil)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
		f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no delivery record yet", func(t *testing.T) {
		f := newPurchaseFixture()
		poID := uuid.New()
		f.deliveries.On("FindByPOID", mock.Anything, poID).Return(nil, shared.NewNotFoundError("Delivery", poID))

		_, err := f.deliveryService().UploadPhoto(ctx, supervisor, poID, "a.jpg", "image/jpeg", photo)
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})
}
