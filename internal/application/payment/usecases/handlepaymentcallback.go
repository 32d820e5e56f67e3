package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/shared/biztime"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// Notification outcomes stored in the audit trail.
const (
	OutcomeSettled          = "settled"
	OutcomeAlreadySettled   = "already_settled"
	OutcomeRejected         = "rejected"
	OutcomeAmountMismatch   = "amount_mismatch"
	OutcomeProcessingFailed = "processing_failed"
)

// callbackEnvelope is the body the provider posts to the callback URL.
type callbackEnvelope struct {
	Data string `json:"data"`
	Mac  string `json:"mac"`
	Type int    `json:"type"`
}

type HandlePaymentCallbackResult struct {
	OrderID        uint
	AlreadySettled bool
}

type HandlePaymentCallbackUseCase struct {
	orderRepo order.Repository
	gateway   paymentgateway.Gateway
	settleUC  *SettlePaymentUseCase
	recorder  NotificationRecorder // Optional
	logger    logger.Interface
}

func NewHandlePaymentCallbackUseCase(
	orderRepo order.Repository,
	gateway paymentgateway.Gateway,
	settleUC *SettlePaymentUseCase,
	logger logger.Interface,
) *HandlePaymentCallbackUseCase {
	return &HandlePaymentCallbackUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		settleUC:  settleUC,
		logger:    logger,
	}
}

// SetRecorder sets the notification audit recorder (optional dependency injection)
func (uc *HandlePaymentCallbackUseCase) SetRecorder(recorder NotificationRecorder) {
	uc.recorder = recorder
}

// Execute verifies and applies a payment notification. Validation failures
// come back as InvalidRequest or SignatureMismatch errors; a replay of an
// already settled order is a success with AlreadySettled set.
func (uc *HandlePaymentCallbackUseCase) Execute(ctx context.Context, body []byte) (*HandlePaymentCallbackResult, error) {
	var envelope callbackEnvelope
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || envelope.Data == "" {
		uc.logger.Warnw("payment callback without data")
		return nil, apperrors.NewInvalidRequestError("No data found")
	}
	if envelope.Mac == "" {
		uc.logger.Warnw("payment callback without mac")
		return nil, apperrors.NewSignatureMismatchError("Invalid mac")
	}

	callbackData, err := uc.gateway.VerifyCallback(envelope.Data, envelope.Mac)
	if err != nil {
		uc.logger.Warnw("invalid payment callback", "error", err)
		uc.record(ctx, NotificationEntry{Data: envelope.Data, Outcome: OutcomeRejected})
		return nil, err
	}

	orderID := callbackData.EmbedData.OrderID
	entry := NotificationEntry{
		OrderID:    orderID,
		AppTransID: callbackData.AppTransID,
		ZPTransID:  callbackData.ZPTransID,
		Data:       envelope.Data,
		Verified:   true,
	}

	o, err := uc.orderRepo.Get(ctx, orderID)
	if err != nil {
		uc.logger.Warnw("order not found for payment callback", "order_id", orderID, "error", err)
		entry.Outcome = OutcomeRejected
		uc.record(ctx, entry)
		return nil, apperrors.NewInvalidRequestError("Invalid order", fmt.Sprintf("order %d", orderID))
	}

	if callbackData.Amount > 0 && callbackData.Amount != o.Total() {
		uc.logger.Warnw("payment callback amount mismatch",
			"order_id", orderID,
			"expected", o.Total(),
			"received", callbackData.Amount,
		)
		entry.Outcome = OutcomeAmountMismatch
		uc.record(ctx, entry)
		_ = uc.orderRepo.AddNote(ctx, orderID, fmt.Sprintf(
			"ZaloPay callback amount %d does not match order total %d. Payment not applied.",
			callbackData.Amount, o.Total(),
		))
		return nil, apperrors.NewInvalidRequestError("Amount mismatch")
	}

	err = uc.settleUC.Execute(ctx, SettlePaymentCommand{
		OrderID:       orderID,
		TransactionID: callbackData.ZPTransID,
		Source:        SourceWebhook,
	})
	if err != nil && !apperrors.IsAlreadyTerminalError(err) {
		entry.Outcome = OutcomeProcessingFailed
		uc.record(ctx, entry)
		return nil, err
	}

	result := &HandlePaymentCallbackResult{
		OrderID:        orderID,
		AlreadySettled: err != nil,
	}
	entry.Outcome = OutcomeSettled
	if result.AlreadySettled {
		entry.Outcome = OutcomeAlreadySettled
	}
	uc.record(ctx, entry)

	return result, nil
}

func (uc *HandlePaymentCallbackUseCase) record(ctx context.Context, entry NotificationEntry) {
	if uc.recorder == nil {
		return
	}
	entry.ReceivedAt = biztime.NowUTC()
	if err := uc.recorder.Record(ctx, entry); err != nil {
		uc.logger.Warnw("failed to record payment notification", "order_id", entry.OrderID, "error", err)
	}
}
