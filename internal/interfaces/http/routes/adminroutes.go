package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/zlpay/internal/interfaces/http/handlers/admin"
	"github.com/orris-inc/zlpay/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for merchant routes.
type AdminRouteConfig struct {
	OrderHandler   *admin.OrderHandler
	RefundHandler  *admin.RefundHandler
	ProductHandler *admin.ProductHandler
	AuthMiddleware *middleware.AdminAuthMiddleware
}

// SetupAdminRoutes configures the bearer-protected merchant routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	adminGroup := engine.Group(AdminPrefix)
	adminGroup.Use(cfg.AuthMiddleware.RequireAdmin())

	orders := adminGroup.Group("/orders")
	{
		orders.GET("", cfg.OrderHandler.ListOrders)
		orders.POST("", cfg.OrderHandler.CreateOrder)
		orders.GET("/:id/payment", cfg.OrderHandler.GetPaymentState)
		orders.GET("/:id/notifications", cfg.OrderHandler.ListNotifications)
		orders.POST("/:id/cancel", cfg.OrderHandler.CancelOrder)
		orders.POST("/:id/refunds", cfg.RefundHandler.CreateRefund)
		orders.GET("/:id/refund-status", cfg.RefundHandler.GetRefundStatus)
	}

	products := adminGroup.Group("/products")
	{
		products.GET("", cfg.ProductHandler.ListProducts)
		products.POST("", cfg.ProductHandler.CreateProduct)
	}
}
