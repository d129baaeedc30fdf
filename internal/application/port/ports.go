// Package port declares the collaborators the workflow services depend on
// but do not implement: code generation, notification, email and export.
package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/sourcing"
)

// CodePrefix scopes a sequential code per entity type
type CodePrefix string

const (
	PrefixMaterialRequest CodePrefix = "YC"
	PrefixRFQ             CodePrefix = "RFQ"
	PrefixQuotation       CodePrefix = "BG"
	PrefixPurchaseOrder   CodePrefix = "PO"
	PrefixStockIssue      CodePrefix = "XK"
	PrefixPayment         CodePrefix = "UNC"
)

// CodeGenerator produces human-readable codes such as PO00001.
// Codes are monotonic per prefix; gaps are allowed.
type CodeGenerator interface {
	Next(ctx context.Context, prefix CodePrefix) (string, error)
}

// Notifier is the fire-and-forget in-app notification sink.
// Implementations log their own failures and never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, typ notification.Type, link string)

	// NotifyRole notifies the first active user holding the role
	NotifyRole(ctx context.Context, role identity.Role, title, message string, typ notification.Type, link string)

	// NotifyOnce notifies unless key was already used within ttl
	NotifyOnce(ctx context.Context, key string, ttl time.Duration, userID uuid.UUID, title, message string, typ notification.Type, link string)
}

// Mailer sends workflow emails. Each call addresses a single recipient so a
// failure can be isolated by the caller.
type Mailer interface {
	SendRFQInvitation(ctx context.Context, supplier catalog.Supplier, rfq *sourcing.RFQ) error
	SendPOConfirmation(ctx context.Context, supplier catalog.Supplier, po *purchase.PurchaseOrder) error
	SendDelayAlert(ctx context.Context, to string, po *purchase.PurchaseOrder, reason string) error
}

// ObjectStorage stores delivery photos and scanned documents
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// QuotationComparison is the data behind the comparison workbook
type QuotationComparison struct {
	RFQ        *sourcing.RFQ
	Quotations []sourcing.Quotation
	Suppliers  map[uuid.UUID]catalog.Supplier
}

// Exporter renders spreadsheets
type Exporter interface {
	QuotationComparison(data QuotationComparison) ([]byte, error)
	PurchaseOrders(orders []purchase.PurchaseOrder, suppliers map[uuid.UUID]catalog.Supplier) ([]byte, error)
}

// NopNotifier discards notifications
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, uuid.UUID, string, string, notification.Type, string) {}
func (NopNotifier) NotifyRole(context.Context, identity.Role, string, string, notification.Type, string) {
}
func (NopNotifier) NotifyOnce(context.Context, string, time.Duration, uuid.UUID, string, string, notification.Type, string) {
}
