package shared

import "context"

// EventHandler reacts to published domain events. EventTypes lists the
// types it wants; nil subscribes it to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is what application services depend on
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is the publisher plus its subscription and lifecycle side
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventSource is an aggregate holding events not yet published
type EventSource interface {
	PullDomainEvents() []DomainEvent
}

// PublishPending drains each source and publishes what it held. Call it
// only after the surrounding transaction has committed. Handler failures
// are logged by the bus and never undo the committed change.
func PublishPending(ctx context.Context, publisher EventPublisher, sources ...EventSource) {
	if publisher == nil {
		return
	}
	var events []DomainEvent
	for _, src := range sources {
		events = append(events, src.PullDomainEvents()...)
	}
	if len(events) > 0 {
		_ = publisher.Publish(ctx, events...)
	}
}
