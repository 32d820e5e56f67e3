package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/zlpay/internal/interfaces/http/handlers"
	"github.com/orris-inc/zlpay/internal/interfaces/http/middleware"
)

// PaymentRouteConfig holds dependencies for buyer and provider facing routes.
type PaymentRouteConfig struct {
	CheckoutHandler      *handlers.CheckoutHandler
	CallbackHandler      *handlers.ZaloPayCallbackHandler
	OrderReceivedHandler *handlers.OrderReceivedHandler
	CheckoutRateLimiter  *middleware.RateLimiter
}

// SetupPaymentRoutes configures checkout, provider callback and return routes.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	engine.POST(CheckoutPath, cfg.CheckoutRateLimiter.Limit(), cfg.CheckoutHandler.Checkout)

	// Any method reaches the handler so non-POST requests get the provider-style 401.
	engine.Any(CallbackPath, cfg.CallbackHandler.HandleCallback)

	engine.GET(OrderReceivedPrefix+"/:id", cfg.OrderReceivedHandler.OrderReceived)
}
