package purchase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxPhotoSize is the largest accepted delivery photo
const MaxPhotoSize = 10 << 20

// DeliveryService records goods received on site against a PO
type DeliveryService struct {
	txScope        txn.TransactionScope
	deliveryRepo   purchase.DeliveryRepository
	storage        port.ObjectStorage
	notifier       port.Notifier
	eventPublisher shared.EventPublisher
	downloadExpiry time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	txScope txn.TransactionScope,
	deliveryRepo purchase.DeliveryRepository,
	storage port.ObjectStorage,
	notifier port.Notifier,
	logger *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		txScope:        txScope,
		deliveryRepo:   deliveryRepo,
		storage:        storage,
		notifier:       notifier,
		downloadExpiry: 15 * time.Minute,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DeliveryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordDelivery stores the receiving report of a PO and forces the PO to
// delivered. A PO that was already paid (prepay) is completed at once.
func (s *DeliveryService) RecordDelivery(ctx context.Context, actor identity.Actor, in RecordDeliveryRequest) (*DeliveryResponse, error) {
	if err := actor.Authorize(identity.PermCheckDelivery); err != nil {
		return nil, err
	}
	quantities := make([]purchase.DeliveredQuantity, len(in.ActualQuantity))
	for i, q := range in.ActualQuantity {
		quantities[i] = purchase.DeliveredQuantity{MaterialID: q.MaterialID, Quantity: q.Quantity}
	}

	var (
		delivery *purchase.Delivery
		po       *purchase.PurchaseOrder
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, in.POID)
		if err != nil {
			return err
		}
		if !po.AcceptsDelivery() {
			return shared.NewInvalidStateError(fmt.Sprintf("PO %s is %s and cannot receive goods", po.Code, po.Status)).
				WithDetail("status", string(po.Status))
		}
		exists, err := repos.DeliveryRepo().ExistsForPO(ctx, po.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewAlreadyExistsError(fmt.Sprintf("PO %s already has a delivery record", po.Code))
		}

		now := s.now()
		input := purchase.DeliveryInput{
			ReceivedBy:     in.ReceivedBy,
			RecordedBy:     actor.UserID,
			ActualQuantity: quantities,
			QualityStatus:  in.QualityStatus,
			Note:           in.Note,
		}
		if in.DeliveryDate != nil {
			input.DeliveryDate = *in.DeliveryDate
		}
		delivery, err = purchase.NewDelivery(po, input, now)
		if err != nil {
			return err
		}
		if err := repos.DeliveryRepo().Create(ctx, delivery); err != nil {
			return err
		}
		if err := po.MarkDelivered(now); err != nil {
			return err
		}
		if err := completeIfPaid(ctx, repos, po); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delivery recorded",
		zap.String("po_id", po.ID.String()),
		zap.String("delivery_id", delivery.ID.String()),
		zap.String("quality", string(delivery.QualityStatus)),
		zap.String("po_status", string(po.Status)))
	shared.PublishPending(ctx, s.eventPublisher, po)

	typ := notification.TypeSuccess
	if delivery.QualityStatus != purchase.QualityOK {
		typ = notification.TypeWarning
	}
	s.notifier.Notify(ctx, po.CreatedBy, "Đã nhận hàng",
		fmt.Sprintf("Đơn đặt hàng %s đã được nhận tại công trình (chất lượng: %s)", po.Code, delivery.QualityStatus),
		typ, "/purchase-orders/"+po.ID.String())

	response := ToDeliveryResponse(delivery)
	return &response, nil
}

// completeIfPaid closes a delivered PO whose payment already went through
func completeIfPaid(ctx context.Context, repos txn.TransactionalRepositories, po *purchase.PurchaseOrder) error {
	if po.Status != purchase.StatusDelivered {
		return nil
	}
	paid, err := repos.PaymentRepo().ExistsForPO(ctx, po.ID)
	if err != nil || !paid {
		return err
	}
	payment, err := repos.PaymentRepo().FindByPOID(ctx, po.ID)
	if err != nil {
		return err
	}
	if payment.Status != purchase.PaymentStatusPaid {
		return nil
	}
	return po.Complete()
}

// GetByPO returns the delivery record of a PO
func (s *DeliveryService) GetByPO(ctx context.Context, poID uuid.UUID) (*DeliveryResponse, error) {
	d, err := s.deliveryRepo.FindByPOID(ctx, poID)
	if err != nil {
		return nil, err
	}
	response := ToDeliveryResponse(d)
	return &response, nil
}

// UploadPhoto stores a delivery photo under deliveries/<poID>/ and attaches
// its key to the delivery record
func (s *DeliveryService) UploadPhoto(ctx context.Context, actor identity.Actor, poID uuid.UUID, fileName, contentType string, data []byte) (*PhotoUploadResult, error) {
	if err := actor.Authorize(identity.PermCheckDelivery); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, shared.NewInvalidStateError("Object storage is not configured")
	}
	if len(data) == 0 {
		return nil, shared.NewValidationError("Photo is empty")
	}
	if len(data) > MaxPhotoSize {
		return nil, shared.NewValidationError(fmt.Sprintf("Photo exceeds %d MB", MaxPhotoSize>>20))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, shared.NewValidationError("Only image uploads are accepted").WithDetail("content_type", contentType)
	}

	d, err := s.deliveryRepo.FindByPOID(ctx, poID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("deliveries/%s/%s%s", poID, uuid.New(), strings.ToLower(filepath.Ext(fileName)))
	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("upload delivery photo: %w", err)
	}
	d.AddPhoto(key)
	if err := s.deliveryRepo.Save(ctx, d); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.downloadExpiry)
	if err != nil {
		s.logger.Warn("Failed to presign delivery photo", zap.String("key", key), zap.Error(err))
	}
	s.logger.Info("Delivery photo uploaded",
		zap.String("po_id", poID.String()),
		zap.String("key", key),
		zap.Int("size", len(data)))
	return &PhotoUploadResult{StorageKey: key, DownloadURL: url, ExpiresAt: expiresAt}, nil
}
