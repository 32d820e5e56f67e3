package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// Buyer-facing messages shown on the order page.
const (
	MessageUnexpectedError = "Unexpected error has occurred. Please try again later."
	MessagePaymentPending  = "Your payment is being processed. This page will update once ZaloPay confirms it."
)

// RedirectOutcome is what the buyer sees after returning from the provider.
type RedirectOutcome string

const (
	RedirectPaid    RedirectOutcome = "paid"
	RedirectPending RedirectOutcome = "pending"
	RedirectFailed  RedirectOutcome = "failed"
)

// HandleRedirectReturnCommand carries the provider's return query parameters.
type HandleRedirectReturnCommand struct {
	OrderID    uint
	OrderKey   string
	AppID      string
	Checksum   string
	AppTransID string
	Status     string
}

// IsProviderReturn reports whether all provider return parameters are present.
func (c HandleRedirectReturnCommand) IsProviderReturn() bool {
	return c.AppID != "" && c.Checksum != "" && c.AppTransID != "" && c.Status != "" && c.OrderKey != ""
}

type HandleRedirectReturnResult struct {
	OrderID uint            `json:"order_id"`
	Outcome RedirectOutcome `json:"outcome"`
	Message string          `json:"message,omitempty"`
}

// HandleRedirectReturnUseCase settles or fails an order when the buyer lands
// back on the store. The provider is always queried; the query parameters are
// not trusted on their own.
type HandleRedirectReturnUseCase struct {
	orderRepo order.Repository
	gateway   paymentgateway.Gateway
	settleUC  *SettlePaymentUseCase
	locker    OrderLocker
	scheduler PollScheduler
	logger    logger.Interface
}

func NewHandleRedirectReturnUseCase(
	orderRepo order.Repository,
	gateway paymentgateway.Gateway,
	settleUC *SettlePaymentUseCase,
	locker OrderLocker,
	scheduler PollScheduler,
	logger logger.Interface,
) *HandleRedirectReturnUseCase {
	return &HandleRedirectReturnUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		settleUC:  settleUC,
		locker:    locker,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (uc *HandleRedirectReturnUseCase) Execute(ctx context.Context, cmd HandleRedirectReturnCommand) (*HandleRedirectReturnResult, error) {
	if !cmd.IsProviderReturn() {
		return nil, apperrors.NewInvalidRequestError("missing return parameters")
	}

	o, err := uc.orderRepo.GetByKey(ctx, cmd.OrderKey)
	if err != nil {
		return nil, err
	}
	if cmd.OrderID != 0 && o.ID() != cmd.OrderID {
		return nil, apperrors.NewInvalidRequestError("order key does not match order")
	}

	result := &HandleRedirectReturnResult{OrderID: o.ID()}

	if o.Status().IsTerminal() {
		result.Outcome = outcomeForStatus(o.Status())
		return result, nil
	}

	appTransID, _, err := uc.orderRepo.GetMeta(ctx, o.ID(), order.MetaAppTransID)
	if err != nil {
		return nil, err
	}
	if appTransID == "" {
		return nil, apperrors.NewInvalidRequestError("order has no ZaloPay transaction")
	}
	if appTransID != cmd.AppTransID {
		uc.logger.Warnw("return app trans id differs from stored value, using stored",
			"order_id", o.ID(),
			"stored", appTransID,
			"returned", cmd.AppTransID,
		)
	}

	status, err := uc.gateway.QueryStatus(ctx, appTransID)
	if err != nil {
		uc.logger.Errorw("failed to query payment status on return", "order_id", o.ID(), "error", err)
		uc.markFailed(ctx, o.ID(), err.Error())
		result.Outcome = RedirectFailed
		result.Message = MessageUnexpectedError
		return result, nil
	}

	switch {
	case status.IsSuccess():
		err := uc.settleUC.Execute(ctx, SettlePaymentCommand{
			OrderID:       o.ID(),
			TransactionID: status.ZPTransID,
			Source:        SourceRedirect,
		})
		if err != nil && !apperrors.IsAlreadyTerminalError(err) {
			return nil, err
		}
		result.Outcome = RedirectPaid
		if apperrors.IsAlreadyTerminalError(err) {
			if current, getErr := uc.orderRepo.Get(ctx, o.ID()); getErr == nil {
				result.Outcome = outcomeForStatus(current.Status())
			}
		}
	case status.IsPending():
		uc.logger.Infow("payment still processing on return", "order_id", o.ID())
		result.Outcome = RedirectPending
		result.Message = MessagePaymentPending
	default:
		reason := fmt.Sprintf("Payment failed for order #%d", o.ID())
		if status.ReturnMessage != "" {
			reason = fmt.Sprintf("%s: %s", reason, status.ReturnMessage)
		}
		uc.markFailed(ctx, o.ID(), reason)
		result.Outcome = RedirectFailed
		result.Message = reason
	}

	return result, nil
}

// markFailed fails a still-pending order. A webhook that settled the order in
// the meantime wins.
func (uc *HandleRedirectReturnUseCase) markFailed(ctx context.Context, orderID uint, reason string) {
	unlock, err := uc.locker.Lock(ctx, orderID)
	if err != nil {
		uc.logger.Errorw("failed to acquire order lock", "order_id", orderID, "error", err)
		return
	}
	defer unlock()

	terminal, err := uc.orderRepo.HasStatus(ctx, orderID, order.TerminalStatuses...)
	if err != nil || terminal {
		return
	}

	if err := uc.orderRepo.UpdateStatus(ctx, orderID, order.StatusFailed); err != nil {
		uc.logger.Errorw("failed to mark order failed", "order_id", orderID, "error", err)
		return
	}
	_ = uc.orderRepo.SetMeta(ctx, orderID, order.MetaFailureReason, reason)
	_ = uc.orderRepo.AddNote(ctx, orderID, "ZaloPay payment failed: "+reason)

	if err := uc.scheduler.Cancel(PollTaskKey, orderID); err != nil {
		uc.logger.Warnw("failed to cancel status poll", "order_id", orderID, "error", err)
	}
}

func outcomeForStatus(status order.Status) RedirectOutcome {
	switch {
	case status.IsPaid():
		return RedirectPaid
	case status == order.StatusPending:
		return RedirectPending
	default:
		return RedirectFailed
	}
}
