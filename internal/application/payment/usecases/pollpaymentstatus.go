package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// DefaultMaxPollAttempts bounds how many times one order is queried.
const DefaultMaxPollAttempts = 15

// PollPaymentStatusUseCase runs one scheduled status check for an order.
type PollPaymentStatusUseCase struct {
	orderRepo   order.Repository
	gateway     paymentgateway.Gateway
	settleUC    *SettlePaymentUseCase
	scheduler   PollScheduler
	maxAttempts int
	logger      logger.Interface
}

func NewPollPaymentStatusUseCase(
	orderRepo order.Repository,
	gateway paymentgateway.Gateway,
	settleUC *SettlePaymentUseCase,
	scheduler PollScheduler,
	maxAttempts int,
	logger logger.Interface,
) *PollPaymentStatusUseCase {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPollAttempts
	}
	return &PollPaymentStatusUseCase{
		orderRepo:   orderRepo,
		gateway:     gateway,
		settleUC:    settleUC,
		scheduler:   scheduler,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Execute never returns remote failures; the next tick retries them.
func (uc *PollPaymentStatusUseCase) Execute(ctx context.Context, orderID uint) error {
	meta, err := uc.orderRepo.ListMeta(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order meta: %w", err)
	}
	state := order.PaymentStateFromMeta(meta)

	if state.CallbackReceived || state.AppTransID == "" {
		uc.stop(orderID)
		return nil
	}

	terminal, err := uc.orderRepo.HasStatus(ctx, orderID, order.TerminalStatuses...)
	if err != nil {
		return fmt.Errorf("failed to check order status: %w", err)
	}
	if terminal {
		uc.stop(orderID)
		return nil
	}

	attempt := state.PollAttemptCount + 1
	if err := uc.orderRepo.SetMeta(ctx, orderID, order.MetaPollAttempts, strconv.Itoa(attempt)); err != nil {
		return fmt.Errorf("failed to record poll attempt: %w", err)
	}
	if attempt > uc.maxAttempts {
		uc.stop(orderID)
		return nil
	}
	lastAttempt := attempt >= uc.maxAttempts

	status, err := uc.gateway.QueryStatus(ctx, state.AppTransID)
	switch {
	case err != nil:
		uc.logger.Warnw("payment status poll failed",
			"order_id", orderID,
			"attempt", attempt,
			"error", err,
		)
	case status.IsSuccess():
		err := uc.settleUC.Execute(ctx, SettlePaymentCommand{
			OrderID:       orderID,
			TransactionID: status.ZPTransID,
			Source:        SourcePoll,
		})
		if err != nil && !apperrors.IsAlreadyTerminalError(err) {
			uc.logger.Errorw("failed to settle polled payment", "order_id", orderID, "error", err)
			break
		}
		uc.stop(orderID)
		return nil
	default:
		uc.logger.Debugw("payment not confirmed yet",
			"order_id", orderID,
			"attempt", attempt,
			"return_code", status.ReturnCode,
		)
	}

	if lastAttempt {
		uc.logger.Infow("payment status polling exhausted", "order_id", orderID, "attempts", attempt)
		_ = uc.orderRepo.AddNote(ctx, orderID, fmt.Sprintf(
			"ZaloPay payment not confirmed after %d status checks.", attempt,
		))
		uc.stop(orderID)
	}
	return nil
}

func (uc *PollPaymentStatusUseCase) stop(orderID uint) {
	if err := uc.scheduler.Cancel(PollTaskKey, orderID); err != nil {
		uc.logger.Warnw("failed to cancel status poll", "order_id", orderID, "error", err)
	}
}

// RestorePaymentPollsUseCase reschedules status polls for orders still
// awaiting confirmation, so a restart does not orphan them. Orders whose
// polling already ran out are left alone.
type RestorePaymentPollsUseCase struct {
	orderRepo   order.Repository
	scheduler   PollScheduler
	interval    time.Duration
	maxAttempts int
	batchSize   int
	logger      logger.Interface
}

func NewRestorePaymentPollsUseCase(
	orderRepo order.Repository,
	scheduler PollScheduler,
	interval time.Duration,
	maxAttempts int,
	logger logger.Interface,
) *RestorePaymentPollsUseCase {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPollAttempts
	}
	return &RestorePaymentPollsUseCase{
		orderRepo:   orderRepo,
		scheduler:   scheduler,
		interval:    interval,
		maxAttempts: maxAttempts,
		batchSize:   500,
		logger:      logger,
	}
}

func (uc *RestorePaymentPollsUseCase) Execute(ctx context.Context) (int, error) {
	orderIDs, err := uc.orderRepo.ListAwaitingConfirmation(ctx, uc.maxAttempts, uc.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list orders awaiting confirmation: %w", err)
	}

	restored := 0
	for _, orderID := range orderIDs {
		if uc.scheduler.IsScheduled(PollTaskKey, orderID) {
			continue
		}
		if err := uc.scheduler.ScheduleRecurring(ctx, PollTaskKey, orderID, uc.interval); err != nil {
			uc.logger.Warnw("failed to restore status poll", "order_id", orderID, "error", err)
			continue
		}
		restored++
	}

	if restored > 0 {
		uc.logger.Infow("restored payment status polls", "count", restored)
	}
	return restored, nil
}
