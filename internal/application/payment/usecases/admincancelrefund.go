package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// AdminCancelRefundUseCase refunds whatever is still refundable on an order
// the merchant cancels.
type AdminCancelRefundUseCase struct {
	orderRepo order.Repository
	refundUC  *RefundPaymentUseCase
	config    RefundPaymentConfig
	logger    logger.Interface
}

func NewAdminCancelRefundUseCase(
	orderRepo order.Repository,
	refundUC *RefundPaymentUseCase,
	config RefundPaymentConfig,
	logger logger.Interface,
) *AdminCancelRefundUseCase {
	if config.MinAmount <= 0 {
		config.MinAmount = DefaultMinRefundAmount
	}
	return &AdminCancelRefundUseCase{
		orderRepo: orderRepo,
		refundUC:  refundUC,
		config:    config,
		logger:    logger,
	}
}

// Execute reports whether a refund was sent. Nothing is sent when the
// refundable total is under the minimum or the currency is not supported.
func (uc *AdminCancelRefundUseCase) Execute(ctx context.Context, orderID uint) (bool, error) {
	o, err := uc.orderRepo.Get(ctx, orderID)
	if err != nil {
		return false, err
	}

	refunds, err := uc.orderRepo.GetRefunds(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to load refunds: %w", err)
	}
	refundable := o.RefundableTotal(refunds)

	if refundable < uc.config.MinAmount || o.Currency() != uc.config.Currency {
		uc.logger.Infow("nothing to refund on cancellation",
			"order_id", orderID,
			"refundable", refundable,
			"currency", o.Currency(),
		)
		return false, nil
	}

	_, err = uc.refundUC.Execute(ctx, RefundPaymentCommand{
		OrderID:     orderID,
		Amount:      refundable,
		Reason:      "Order cancelled",
		Description: fmt.Sprintf("Admin refund for order %d amount: %d", orderID, refundable),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

type CancelOrderResult struct {
	OrderID  uint   `json:"order_id"`
	Status   string `json:"status"`
	Refunded bool   `json:"refunded"`
}

// CancelOrderUseCase is the merchant cancelling an order. Paid ZaloPay orders
// are refunded automatically.
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	adminRefund *AdminCancelRefundUseCase
	scheduler   PollScheduler
	logger      logger.Interface
}

func NewCancelOrderUseCase(
	orderRepo order.Repository,
	adminRefund *AdminCancelRefundUseCase,
	scheduler PollScheduler,
	logger logger.Interface,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		adminRefund: adminRefund,
		scheduler:   scheduler,
		logger:      logger,
	}
}

func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID uint) (*CancelOrderResult, error) {
	o, err := uc.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status().In(order.StatusCancelled, order.StatusRefunded) {
		return nil, apperrors.NewAlreadyTerminalError("order already cancelled", o.Status().String())
	}

	wasPaid := o.Status().IsPaid()

	if err := uc.orderRepo.UpdateStatus(ctx, orderID, order.StatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	_ = uc.orderRepo.AddNote(ctx, orderID, fmt.Sprintf("Order status changed from %s to cancelled.", o.Status()))

	if err := uc.scheduler.Cancel(PollTaskKey, orderID); err != nil {
		uc.logger.Warnw("failed to cancel status poll", "order_id", orderID, "error", err)
	}

	result := &CancelOrderResult{OrderID: orderID, Status: order.StatusCancelled.String()}

	if wasPaid && o.IsZaloPay() {
		refunded, err := uc.adminRefund.Execute(ctx, orderID)
		if err != nil {
			uc.logger.Errorw("automatic refund on cancellation failed", "order_id", orderID, "error", err)
			_ = uc.orderRepo.AddNote(ctx, orderID, "Automatic ZaloPay refund failed: "+err.Error())
		}
		result.Refunded = refunded
		if refunded {
			result.Status = order.StatusRefunded.String()
		}
	}

	uc.logger.Infow("order cancelled", "order_id", orderID, "refunded", result.Refunded)
	return result, nil
}
