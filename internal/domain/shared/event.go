package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate and published after the
// transaction that produced it commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// EventMeta carries the identity every event shares. Concrete events embed
// it and add their payload.
type EventMeta struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	At            time.Time `json:"occurred_at"`
	Aggregate     uuid.UUID `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
}

func NewEventMeta(eventType, aggregateKind string, aggregateID uuid.UUID) EventMeta {
	return EventMeta{
		ID:            uuid.New(),
		Type:          eventType,
		At:            time.Now().UTC(),
		Aggregate:     aggregateID,
		AggregateKind: aggregateKind,
	}
}

func (m *EventMeta) EventID() uuid.UUID     { return m.ID }
func (m *EventMeta) EventType() string      { return m.Type }
func (m *EventMeta) OccurredAt() time.Time  { return m.At }
func (m *EventMeta) AggregateID() uuid.UUID { return m.Aggregate }
func (m *EventMeta) AggregateType() string  { return m.AggregateKind }
