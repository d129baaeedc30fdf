package router

import (
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/interfaces/http/handler"
	"github.com/procurement/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers mounted under the API prefix
type Handlers struct {
	Auth          *handler.AuthHandler
	Request       *handler.RequestHandler
	Quota         *handler.QuotaHandler
	Stock         *handler.StockHandler
	Sourcing      *handler.SourcingHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Delivery      *handler.DeliveryHandler
	Payment       *handler.PaymentHandler
	Tracking      *handler.TrackingHandler
	Evaluation    *handler.EvaluationHandler
	Notification  *handler.NotificationHandler
	System        *handler.SystemHandler
}

// PublicPaths are reachable without a bearer token
var PublicPaths = []string{
	"/auth/login",
	"/auth/refresh",
	"/health",
}

// ProcurementGroups builds the route groups of the procurement workflow.
// Mutations carry a route-level permission guard; reads only need a
// signed-in caller.
func ProcurementGroups(h Handlers) []*Group {
	can := middleware.RequirePermission

	auth := NewGroup("auth", "/auth")
	auth.POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	requests := NewGroup("request", "/requests")
	requests.POST("", can(identity.PermCreateRequest), h.Request.Create).
		GET("", h.Request.List).
		POST("/check-quota", h.Quota.Check).
		GET("/:id", h.Request.Get).
		POST("/:id/approve", h.Request.Approve)

	quotas := NewGroup("quota", "/quotas")
	quotas.POST("", can(identity.PermManageQuota), h.Quota.Upsert).
		GET("", h.Quota.List).
		GET("/project/:projectId", h.Quota.ListByProject).
		DELETE("/:id", can(identity.PermManageQuota), h.Quota.Delete)

	stock := NewGroup("stock", "/stock")
	stock.POST("/check", h.Stock.Check).
		GET("", h.Stock.List).
		POST("", can(identity.PermIssueStock), h.Stock.Issue).
		GET("/request/:requestId", h.Stock.GetByRequest).
		POST("/:id/receive", can(identity.PermReceiveStock), h.Stock.ConfirmReceipt)

	materials := NewGroup("material", "/materials")
	materials.GET("", h.Stock.ListMaterials).
		POST("/:id/restock", can(identity.PermRestock), h.Stock.Restock)

	rfqs := NewGroup("rfq", "/rfqs")
	rfqs.POST("/check-stock", can(identity.PermCreateRFQ), h.Sourcing.CheckStock).
		POST("", can(identity.PermCreateRFQ), h.Sourcing.CreateRFQ).
		GET("", h.Sourcing.ListRFQs).
		GET("/:id", h.Sourcing.GetRFQ).
		GET("/:id/comparison.xlsx", h.Sourcing.ExportComparison)

	quotations := NewGroup("quotation", "/quotations")
	quotations.POST("", can(identity.PermSubmitQuotation), h.Sourcing.SubmitQuotation).
		GET("", h.Sourcing.ListQuotations).
		GET("/rfq/:rfqId", h.Sourcing.ListByRFQ).
		POST("/:id/select", can(identity.PermSelectQuotation), h.Sourcing.SelectQuotation)

	orders := NewGroup("purchase-order", "/purchase-orders")
	orders.POST("", can(identity.PermCreatePO), h.PurchaseOrder.Create).
		GET("", h.PurchaseOrder.List).
		GET("/export.xlsx", h.PurchaseOrder.Export).
		GET("/:id", h.PurchaseOrder.Get).
		POST("/:id/approve", h.PurchaseOrder.Approve).
		POST("/:id/send", can(identity.PermSendPO), h.PurchaseOrder.Send).
		POST("/:id/cancel", can(identity.PermCreatePO), h.PurchaseOrder.Cancel)

	deliveries := NewGroup("delivery", "/deliveries")
	deliveries.POST("", can(identity.PermCheckDelivery), h.Delivery.Record).
		GET("/po/:poId", h.Delivery.GetByPO).
		POST("/:poId/photos", can(identity.PermCheckDelivery), h.Delivery.UploadPhoto)

	payments := NewGroup("payment", "/payments")
	payments.POST("", can(identity.PermManagePayment), h.Payment.Create).
		POST("/check-documents", can(identity.PermManagePayment), h.Payment.CheckDocuments).
		POST("/:id/approve", can(identity.PermManagePayment), h.Payment.Approve).
		GET("/po/:poId", h.Payment.GetByPO)

	tracking := NewGroup("tracking", "/tracking")
	tracking.POST("", can(identity.PermTrackDelivery), h.Tracking.Record).
		GET("/po/:poId", h.Tracking.History).
		POST("/check-delays", can(identity.PermTrackDelivery), h.Tracking.CheckDelays)

	evaluations := NewGroup("evaluation", "/evaluations")
	evaluations.POST("", can(identity.PermEvaluate), h.Evaluation.Evaluate).
		GET("/supplier/:supplierId", h.Evaluation.ListBySupplier)

	notifications := NewGroup("notification", "/notifications")
	notifications.GET("", h.Notification.List).
		PATCH("/read-all", h.Notification.MarkAllRead).
		PATCH("/:id/read", h.Notification.MarkRead)

	system := NewGroup("system", "")
	system.GET("/health", h.System.Health)

	return []*Group{
		auth, requests, quotas, stock, materials, rfqs, quotations,
		orders, deliveries, payments, tracking, evaluations, notifications, system,
	}
}
