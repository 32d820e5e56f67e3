package http

import (
	orderUsecases "github.com/orris-inc/zlpay/internal/application/order/usecases"
	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/interfaces/http/routes"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Orders
	createOrderUC   *orderUsecases.CreateOrderUseCase
	listOrdersUC    *orderUsecases.ListOrdersUseCase
	createProductUC *orderUsecases.CreateProductUseCase
	listProductsUC  *orderUsecases.ListProductsUseCase

	// Payment
	settleUC          *paymentUsecases.SettlePaymentUseCase
	initiatePaymentUC *paymentUsecases.InitiatePaymentUseCase
	handleCallbackUC  *paymentUsecases.HandlePaymentCallbackUseCase
	redirectReturnUC  *paymentUsecases.HandleRedirectReturnUseCase
	pollStatusUC      *paymentUsecases.PollPaymentStatusUseCase
	restorePollsUC    *paymentUsecases.RestorePaymentPollsUseCase
	getPaymentStateUC *paymentUsecases.GetPaymentStateUseCase

	// Refunds
	refundUC       *paymentUsecases.RefundPaymentUseCase
	adminRefundUC  *paymentUsecases.AdminCancelRefundUseCase
	cancelOrderUC  *paymentUsecases.CancelOrderUseCase
	refundStatusUC *paymentUsecases.QueryRefundStatusUseCase
}

func (c *Container) initUseCases() {
	cfg := c.cfg
	repos := c.repos
	orderRepo := repos.orderRepo
	log := c.log.Named("payment")

	ucs := &allUseCases{}

	ucs.createOrderUC = orderUsecases.NewCreateOrderUseCase(orderRepo, repos.productRepo, c.log)
	ucs.listOrdersUC = orderUsecases.NewListOrdersUseCase(orderRepo, c.log)
	ucs.createProductUC = orderUsecases.NewCreateProductUseCase(repos.productRepo, c.log)
	ucs.listProductsUC = orderUsecases.NewListProductsUseCase(repos.productRepo)

	ucs.settleUC = paymentUsecases.NewSettlePaymentUseCase(orderRepo, c.txManager, c.locker, c.schedulerManager, log)

	ucs.initiatePaymentUC = paymentUsecases.NewInitiatePaymentUseCase(
		orderRepo,
		c.gateway,
		c.schedulerManager,
		paymentUsecases.InitiatePaymentConfig{
			Currency:     cfg.ZaloPay.Currency,
			PollInterval: cfg.Reconcile.PollInterval,
			ReturnURL: func(orderID uint, orderKey string) string {
				return cfg.Server.PublicURL(routes.OrderReceivedPath(orderID, orderKey))
			},
		},
		log,
	)

	ucs.handleCallbackUC = paymentUsecases.NewHandlePaymentCallbackUseCase(orderRepo, c.gateway, ucs.settleUC, log)
	ucs.handleCallbackUC.SetRecorder(repos.notificationLogRepo)

	ucs.redirectReturnUC = paymentUsecases.NewHandleRedirectReturnUseCase(
		orderRepo, c.gateway, ucs.settleUC, c.locker, c.schedulerManager, log,
	)

	ucs.pollStatusUC = paymentUsecases.NewPollPaymentStatusUseCase(
		orderRepo, c.gateway, ucs.settleUC, c.schedulerManager, cfg.Reconcile.MaxPollAttempts, log,
	)
	c.schedulerManager.RegisterOrderTask(paymentUsecases.PollTaskKey, ucs.pollStatusUC)

	ucs.restorePollsUC = paymentUsecases.NewRestorePaymentPollsUseCase(
		orderRepo, c.schedulerManager, cfg.Reconcile.PollInterval, cfg.Reconcile.MaxPollAttempts, log,
	)
	ucs.getPaymentStateUC = paymentUsecases.NewGetPaymentStateUseCase(orderRepo, c.schedulerManager)

	refundCfg := paymentUsecases.RefundPaymentConfig{
		Currency:  cfg.ZaloPay.Currency,
		MinAmount: cfg.Refund.MinAmount,
	}
	ucs.refundUC = paymentUsecases.NewRefundPaymentUseCase(orderRepo, c.gateway, refundCfg, log)
	ucs.adminRefundUC = paymentUsecases.NewAdminCancelRefundUseCase(orderRepo, ucs.refundUC, refundCfg, log)
	ucs.cancelOrderUC = paymentUsecases.NewCancelOrderUseCase(orderRepo, ucs.adminRefundUC, c.schedulerManager, log)
	ucs.refundStatusUC = paymentUsecases.NewQueryRefundStatusUseCase(orderRepo, c.gateway, log)

	if c.notifier != nil {
		ucs.settleUC.SetNotifier(c.notifier)
		ucs.refundUC.SetNotifier(c.notifier)
	}

	c.ucs = ucs
}
