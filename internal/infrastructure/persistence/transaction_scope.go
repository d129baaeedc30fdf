package persistence

import (
	"context"

	"github.com/procurement/backend/internal/application/txn"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// NewRepositories binds every workflow repository to db, which may be a
// transaction handle.
func NewRepositories(db *gorm.DB) *txn.Repositories {
	return &txn.Repositories{
		Requests:    NewGormMaterialRequestRepository(db),
		Quotas:      NewGormMaterialQuotaRepository(db),
		Materials:   NewGormMaterialRepository(db),
		Suppliers:   NewGormSupplierRepository(db),
		StockIssues: NewGormStockIssueRepository(db),
		RFQs:        NewGormRFQRepository(db),
		Quotations:  NewGormQuotationRepository(db),
		Orders:      NewGormPurchaseOrderRepository(db),
		Deliveries:  NewGormDeliveryRepository(db),
		Payments:    NewGormPaymentRepository(db),
		Tracking:    NewGormTrackingRepository(db),
		Evaluations: NewGormEvaluationRepository(db),
		CodeGen:     NewGormCodeGenerator(db),
	}
}

// Ensure GormTransactionScope implements TransactionScope
var _ txn.TransactionScope = (*GormTransactionScope)(nil)
