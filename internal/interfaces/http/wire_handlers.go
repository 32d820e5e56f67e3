package http

import (
	"context"

	"github.com/orris-inc/zlpay/internal/interfaces/http/handlers"
	"github.com/orris-inc/zlpay/internal/interfaces/http/handlers/admin"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler        *handlers.HealthHandler
	checkoutHandler      *handlers.CheckoutHandler
	callbackHandler      *handlers.ZaloPayCallbackHandler
	orderReceivedHandler *handlers.OrderReceivedHandler

	// Admin
	orderHandler   *admin.OrderHandler
	refundHandler  *admin.RefundHandler
	productHandler *admin.ProductHandler
}

func (c *Container) initHandlers() {
	ucs := c.ucs

	checks := map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if c.redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}

	c.hdlrs = &allHandlers{
		healthHandler:   handlers.NewHealthHandler(checks),
		checkoutHandler: handlers.NewCheckoutHandler(ucs.initiatePaymentUC, c.log),
		callbackHandler: handlers.NewZaloPayCallbackHandler(ucs.handleCallbackUC, c.log),
		orderReceivedHandler: handlers.NewOrderReceivedHandler(
			ucs.redirectReturnUC,
			c.cfg.Server.PublicURL(c.cfg.Server.CheckoutPath),
			c.log,
		),
		orderHandler: admin.NewOrderHandler(
			ucs.listOrdersUC,
			ucs.createOrderUC,
			ucs.cancelOrderUC,
			ucs.getPaymentStateUC,
			c.repos.notificationLogRepo,
			c.log,
		),
		refundHandler:  admin.NewRefundHandler(ucs.refundUC, ucs.refundStatusUC, c.log),
		productHandler: admin.NewProductHandler(ucs.listProductsUC, ucs.createProductUC, c.log),
	}
}
