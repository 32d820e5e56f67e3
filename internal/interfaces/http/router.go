package http

import (
	"github.com/orris-inc/zlpay/internal/interfaces/http/middleware"
	"github.com/orris-inc/zlpay/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log, routes.CallbackPath))
	c.engine.Use(middleware.Recovery(c.log))

	c.engine.GET(routes.HealthPath, c.hdlrs.healthHandler.HealthCheck)

	routes.SetupPaymentRoutes(c.engine, &routes.PaymentRouteConfig{
		CheckoutHandler:      c.hdlrs.checkoutHandler,
		CallbackHandler:      c.hdlrs.callbackHandler,
		OrderReceivedHandler: c.hdlrs.orderReceivedHandler,
		CheckoutRateLimiter:  c.checkoutRateLimiter,
	})

	routes.SetupAdminRoutes(c.engine, &routes.AdminRouteConfig{
		OrderHandler:   c.hdlrs.orderHandler,
		RefundHandler:  c.hdlrs.refundHandler,
		ProductHandler: c.hdlrs.productHandler,
		AuthMiddleware: c.adminAuth,
	})
}
