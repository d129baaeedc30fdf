// Package txn gives application services a unit of work spanning every
// workflow repository.
package txn

import (
	"context"

	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/evaluation"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the workflow repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all workflow repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Parent aggregates (MaterialRequest, PurchaseOrder, RFQ, StockIssue, Payment)
// are loaded with FindByIDForUpdate so that mutations on the same parent are
// serialized while independent parents proceed concurrently.
type TransactionalRepositories interface {
	RequestRepo() request.MaterialRequestRepository
	QuotaRepo() quota.MaterialQuotaRepository
	MaterialRepo() catalog.MaterialRepository
	SupplierRepo() catalog.SupplierRepository
	StockIssueRepo() stock.StockIssueRepository
	RFQRepo() sourcing.RFQRepository
	QuotationRepo() sourcing.QuotationRepository
	PurchaseOrderRepo() purchase.PurchaseOrderRepository
	DeliveryRepo() purchase.DeliveryRepository
	PaymentRepo() purchase.PaymentRepository
	TrackingRepo() purchase.TrackingRepository
	EvaluationRepo() evaluation.EvaluationRepository
	// Codes returns the sequential code generator bound to the transaction
	Codes() port.CodeGenerator
}

// Repositories is a plain bundle of repositories. It backs the no-op scope
// and lets the GORM scope hand out transaction-bound copies.
type Repositories struct {
	Requests    request.MaterialRequestRepository
	Quotas      quota.MaterialQuotaRepository
	Materials   catalog.MaterialRepository
	Suppliers   catalog.SupplierRepository
	StockIssues stock.StockIssueRepository
	RFQs        sourcing.RFQRepository
	Quotations  sourcing.QuotationRepository
	Orders      purchase.PurchaseOrderRepository
	Deliveries  purchase.DeliveryRepository
	Payments    purchase.PaymentRepository
	Tracking    purchase.TrackingRepository
	Evaluations evaluation.EvaluationRepository
	CodeGen     port.CodeGenerator
}

func (r *Repositories) RequestRepo() request.MaterialRequestRepository      { return r.Requests }
func (r *Repositories) QuotaRepo() quota.MaterialQuotaRepository            { return r.Quotas }
func (r *Repositories) MaterialRepo() catalog.MaterialRepository            { return r.Materials }
func (r *Repositories) SupplierRepo() catalog.SupplierRepository            { return r.Suppliers }
func (r *Repositories) StockIssueRepo() stock.StockIssueRepository          { return r.StockIssues }
func (r *Repositories) RFQRepo() sourcing.RFQRepository                     { return r.RFQs }
func (r *Repositories) QuotationRepo() sourcing.QuotationRepository         { return r.Quotations }
func (r *Repositories) PurchaseOrderRepo() purchase.PurchaseOrderRepository { return r.Orders }
func (r *Repositories) DeliveryRepo() purchase.DeliveryRepository           { return r.Deliveries }
func (r *Repositories) PaymentRepo() purchase.PaymentRepository             { return r.Payments }
func (r *Repositories) TrackingRepo() purchase.TrackingRepository           { return r.Tracking }
func (r *Repositories) EvaluationRepo() evaluation.EvaluationRepository     { return r.Evaluations }
func (r *Repositories) Codes() port.CodeGenerator                           { return r.CodeGen }

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	repos *Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos *Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

// Ensure the types implement the interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*Repositories)(nil)
