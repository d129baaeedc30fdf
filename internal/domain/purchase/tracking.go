package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// Well-known tracking labels. Other labels are recorded as-is.
const (
	TrackingPreparing = "preparing"
	TrackingShipped   = "shipped"
	TrackingInTransit = "in_transit"
	TrackingArrived   = "arrived"
	TrackingDelayed   = "delayed"

	OverdueDelayReason = "Quá hạn giao hàng dự kiến"
)

// DeliveryTracking is one append-only progress event of a PO
type DeliveryTracking struct {
	ID          uuid.UUID
	POID        uuid.UUID
	Status      string
	Location    string
	Note        string
	IsDelayed   bool
	DelayReason string
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
}

// TrackingInput carries a progress update
type TrackingInput struct {
	Status      string
	Location    string
	Note        string
	IsDelayed   bool
	DelayReason string
	CreatedBy   *uuid.UUID
}

// RecordTracking appends an event and re-derives the PO status from it:
// shipped and in_transit move the PO in transit, arrived delivers it.
// Labels that would move the PO backwards leave its status unchanged.
func (po *PurchaseOrder) RecordTracking(in TrackingInput, now time.Time) (*DeliveryTracking, bool, error) {
	if in.Status == "" {
		return nil, false, shared.NewValidationError("Tracking status is required")
	}
	switch po.Status {
	case StatusPending, StatusRejected, StatusCancelled:
		return nil, false, shared.NewInvalidStateError("PO "+po.Code+" is "+string(po.Status)+" and cannot be tracked").
			WithDetail("status", string(po.Status))
	}

	event := &DeliveryTracking{
		ID:          uuid.New(),
		POID:        po.ID,
		Status:      in.Status,
		Location:    in.Location,
		Note:        in.Note,
		IsDelayed:   in.IsDelayed || in.Status == TrackingDelayed,
		DelayReason: in.DelayReason,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
	}

	before := po.Status
	switch in.Status {
	case TrackingShipped, TrackingInTransit:
		if po.Status.CanTransitionTo(StatusInTransit) {
			_ = po.MarkInTransit()
		}
	case TrackingArrived:
		if po.Status.CanTransitionTo(StatusDelivered) {
			_ = po.MarkDelivered(now)
		} else if po.Status == StatusDelivered {
			po.ActualDelivery = &now
			po.Touch()
		}
	}
	return event, po.Status != before, nil
}

// NeedsDelayAlert reports whether an overdue PO must be flagged, given its
// latest tracking event. An already-delayed PO is not flagged again.
func NeedsDelayAlert(latest *DeliveryTracking) bool {
	return latest == nil || !latest.IsDelayed
}

// NewOverdueTracking builds the synthetic delayed event of the overdue scan
func NewOverdueTracking(po *PurchaseOrder, now time.Time) *DeliveryTracking {
	note := ""
	if po.DeliveryDate != nil {
		note = "Dự kiến: " + po.DeliveryDate.Format("02/01/2006")
	}
	return &DeliveryTracking{
		ID:          uuid.New(),
		POID:        po.ID,
		Status:      TrackingDelayed,
		Note:        note,
		IsDelayed:   true,
		DelayReason: OverdueDelayReason,
		CreatedAt:   now,
	}
}
