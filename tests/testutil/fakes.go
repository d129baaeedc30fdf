// Package testutil holds the fakes and mocks shared by service tests and
// the JSON helpers used to drive the router in integration tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/shared"
)

// SequentialCodes is an in-memory CodeGenerator producing PREFIX00001, PREFIX00002...
type SequentialCodes struct {
	mu   sync.Mutex
	next map[port.CodePrefix]int
}

// NewSequentialCodes creates a new SequentialCodes
func NewSequentialCodes() *SequentialCodes {
	return &SequentialCodes{next: make(map[port.CodePrefix]int)}
}

// Next returns the next code for the prefix
func (g *SequentialCodes) Next(_ context.Context, prefix port.CodePrefix) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next[prefix]++
	return fmt.Sprintf("%s%05d", prefix, g.next[prefix]), nil
}

// SentNotification is a notification captured by RecordingNotifier
type SentNotification struct {
	UserID  uuid.UUID
	Role    identity.Role
	Title   string
	Message string
	Type    notification.Type
	Link    string
}

// RecordingNotifier captures notifications instead of storing them
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []SentNotification
	keys map[string]struct{}
}

// NewRecordingNotifier creates a new RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{keys: make(map[string]struct{})}
}

// Notify records a user notification
func (n *RecordingNotifier) Notify(_ context.Context, userID uuid.UUID, title, message string, typ notification.Type, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, SentNotification{UserID: userID, Title: title, Message: message, Type: typ, Link: link})
}

// NotifyRole records a role notification
func (n *RecordingNotifier) NotifyRole(_ context.Context, role identity.Role, title, message string, typ notification.Type, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, SentNotification{Role: role, Title: title, Message: message, Type: typ, Link: link})
}

// NotifyOnce records a notification unless the key was seen before
func (n *RecordingNotifier) NotifyOnce(ctx context.Context, key string, _ time.Duration, userID uuid.UUID, title, message string, typ notification.Type, link string) {
	n.mu.Lock()
	if _, ok := n.keys[key]; ok {
		n.mu.Unlock()
		return
	}
	n.keys[key] = struct{}{}
	n.mu.Unlock()
	n.Notify(ctx, userID, title, message, typ, link)
}

// Sent returns a copy of the captured notifications
func (n *RecordingNotifier) Sent() []SentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]SentNotification, len(n.sent))
	copy(out, n.sent)
	return out
}

// RecordingPublisher captures published domain events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// Publish records the events
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// EventTypes returns the types of the captured events in order
func (p *RecordingPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}
