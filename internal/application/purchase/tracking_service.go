package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// defaultDelayAlertTTL bounds duplicate delay notifications for one PO
const defaultDelayAlertTTL = 24 * time.Hour

// TrackingService keeps the delivery tracking log and flags overdue POs
type TrackingService struct {
	txScope         txn.TransactionScope
	orderRepo       purchase.PurchaseOrderRepository
	trackingRepo    purchase.TrackingRepository
	requestRepo     request.MaterialRequestRepository
	userRepo        identity.UserRepository
	mailer          port.Mailer
	notifier        port.Notifier
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	delayAlertTTL   time.Duration
	logger          *zap.Logger
	now             func() time.Time
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(
	txScope txn.TransactionScope,
	orderRepo purchase.PurchaseOrderRepository,
	trackingRepo purchase.TrackingRepository,
	requestRepo request.MaterialRequestRepository,
	userRepo identity.UserRepository,
	mailer port.Mailer,
	notifier port.Notifier,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		txScope:       txScope,
		orderRepo:     orderRepo,
		trackingRepo:  trackingRepo,
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		mailer:        mailer,
		notifier:      notifier,
		delayAlertTTL: defaultDelayAlertTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TrackingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *TrackingService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetDelayAlertTTL sets how long an overdue alert suppresses repeats.
// Non-positive values are ignored.
func (s *TrackingService) SetDelayAlertTTL(ttl time.Duration) {
	if ttl > 0 {
		s.delayAlertTTL = ttl
	}
}

// RecordEvent appends a tracking event and moves the PO along with it
func (s *TrackingService) RecordEvent(ctx context.Context, actor identity.Actor, in RecordTrackingRequest) (*RecordTrackingResult, error) {
	if err := actor.Authorize(identity.PermTrackDelivery); err != nil {
		return nil, err
	}

	var (
		po    *purchase.PurchaseOrder
		event *purchase.DeliveryTracking
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, in.POID)
		if err != nil {
			return err
		}
		createdBy := actor.UserID
		var changed bool
		event, changed, err = po.RecordTracking(purchase.TrackingInput{
			Status:      in.Status,
			Location:    in.Location,
			Note:        in.Note,
			IsDelayed:   in.IsDelayed,
			DelayReason: in.DelayReason,
			CreatedBy:   &createdBy,
		}, s.now())
		if err != nil {
			return err
		}
		if err := repos.TrackingRepo().Append(ctx, event); err != nil {
			return err
		}
		if !changed && in.Status != purchase.TrackingArrived {
			return nil
		}
		if err := completeIfPaid(ctx, repos, po); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tracking event recorded",
		zap.String("po_id", po.ID.String()),
		zap.String("status", event.Status),
		zap.Bool("delayed", event.IsDelayed),
		zap.String("po_status", string(po.Status)))
	shared.PublishPending(ctx, s.eventPublisher, po)

	switch {
	case event.IsDelayed:
		reason := event.DelayReason
		if reason == "" {
			reason = "Không rõ lý do"
		}
		s.alertDelay(ctx, po, reason, "")
	case event.Status == purchase.TrackingArrived:
		if creator, ok := s.requestCreator(ctx, po); ok {
			s.notifier.Notify(ctx, creator, "Hàng đã đến công trình",
				fmt.Sprintf("Đơn đặt hàng %s đã giao đến công trình", po.Code),
				notification.TypeSuccess, "/purchase-orders/"+po.ID.String())
		}
	}

	return &RecordTrackingResult{Tracking: ToTrackingResponse(event), OrderStatus: po.Status}, nil
}

// ScanForOverdue flags every PO still awaiting goods after its delivery
// date with a synthetic delayed event. A PO whose latest event is already
// delayed is skipped, so repeated runs do not duplicate events or alerts.
// Each PO is handled in its own transaction; one failure does not stop the scan.
func (s *TrackingService) ScanForOverdue(ctx context.Context, now time.Time) (*ScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tracking", "scan_overdue")
	defer span.End()

	orders, err := s.orderRepo.FindOverdue(ctx, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &ScanResult{Items: make([]ScanItem, 0, len(orders))}
	for _, candidate := range orders {
		result.Checked++
		item := ScanItem{POID: candidate.ID, Code: candidate.Code, DaysLate: candidate.DaysLate(now)}

		var flagged *purchase.PurchaseOrder
		err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
			po, err := repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if !po.IsOverdue(now) {
				return nil
			}
			latest, err := repos.TrackingRepo().FindLatest(ctx, po.ID)
			if err != nil {
				return err
			}
			if !purchase.NeedsDelayAlert(latest) {
				return nil
			}
			if err := repos.TrackingRepo().Append(ctx, purchase.NewOverdueTracking(po, now)); err != nil {
				return err
			}
			flagged = po
			return nil
		})

		switch {
		case err != nil:
			item.Outcome = ScanFailed
			item.Error = err.Error()
			result.Failed++
			s.logger.Warn("Overdue scan failed for purchase order",
				zap.String("po_id", candidate.ID.String()),
				zap.Error(err))
		case flagged != nil:
			item.Outcome = ScanFlagged
			result.Flagged++
			s.alertDelay(ctx, flagged,
				fmt.Sprintf("%s (trễ %d ngày)", purchase.OverdueDelayReason, item.DaysLate),
				fmt.Sprintf("overdue:%s", flagged.ID))
		default:
			item.Outcome = ScanSkipped
			result.Skipped++
		}
		result.Items = append(result.Items, item)
	}

	s.logger.Info("Overdue scan finished",
		zap.Int("checked", result.Checked),
		zap.Int("flagged", result.Flagged),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOverdueScan(ctx, result.Flagged, result.Skipped, result.Failed)
	}
	return result, nil
}

// History lists the tracking events of a PO oldest first
func (s *TrackingService) History(ctx context.Context, poID uuid.UUID) ([]TrackingResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, poID); err != nil {
		return nil, err
	}
	events, err := s.trackingRepo.FindByPOID(ctx, poID)
	if err != nil {
		return nil, err
	}
	out := make([]TrackingResponse, len(events))
	for i := range events {
		out[i] = ToTrackingResponse(&events[i])
	}
	return out, nil
}

// alertDelay notifies the request creator in-app and by email. With a
// dedup key the in-app notice is sent at most once per alert TTL.
func (s *TrackingService) alertDelay(ctx context.Context, po *purchase.PurchaseOrder, reason, dedupKey string) {
	creator, ok := s.requestCreator(ctx, po)
	if !ok {
		return
	}
	title := "Đơn hàng giao trễ"
	message := fmt.Sprintf("Đơn đặt hàng %s bị trễ: %s", po.Code, reason)
	link := "/purchase-orders/" + po.ID.String()
	if dedupKey != "" {
		s.notifier.NotifyOnce(ctx, dedupKey, s.delayAlertTTL, creator, title, message, notification.TypeWarning, link)
	} else {
		s.notifier.Notify(ctx, creator, title, message, notification.TypeWarning, link)
	}

	if s.mailer == nil || s.userRepo == nil {
		return
	}
	user, err := s.userRepo.FindByID(ctx, creator)
	if err != nil || user.Email == "" {
		return
	}
	if err := s.mailer.SendDelayAlert(ctx, user.Email, po, reason); err != nil {
		s.logger.Warn("Failed to send delay alert",
			zap.String("po_id", po.ID.String()),
			zap.Error(err))
	}
}

func (s *TrackingService) requestCreator(ctx context.Context, po *purchase.PurchaseOrder) (uuid.UUID, bool) {
	req, err := s.requestRepo.FindByID(ctx, po.RequestID)
	if err != nil {
		s.logger.Warn("Failed to load request for PO notification",
			zap.String("po_id", po.ID.String()),
			zap.Error(err))
		return uuid.Nil, false
	}
	return req.CreatedBy, true
}
