// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: AggregateModel, the columns shared by aggregate tables
// - identity.go: users
// - catalog.go: materials, projects, suppliers
// - approval.go: approval levels shared by requests and purchase orders
// - request.go: material requests and quotas
// - stock.go: stock issues
// - sourcing.go: RFQs and quotations
// - purchase.go: purchase orders, deliveries, payments, tracking
// - feedback.go: supplier evaluations and notifications
package models

// All returns every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&UserModel{},
		&MaterialModel{},
		&ProjectModel{},
		&SupplierModel{},
		&ApprovalModel{},
		&MaterialQuotaModel{},
		&MaterialRequestModel{},
		&RequestItemModel{},
		&StockIssueModel{},
		&StockIssueItemModel{},
		&RFQModel{},
		&RFQItemModel{},
		&RFQSupplierModel{},
		&QuotationModel{},
		&QuotationItemModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&DeliveryModel{},
		&PaymentModel{},
		&DeliveryTrackingModel{},
		&SupplierEvaluationModel{},
		&NotificationModel{},
	}
}
