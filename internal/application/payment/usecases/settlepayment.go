package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/shared/biztime"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/goroutine"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// Settlement sources, recorded in order notes and logs.
const (
	SourceWebhook  = "webhook"
	SourceRedirect = "redirect"
	SourcePoll     = "poll"
)

type SettlePaymentCommand struct {
	OrderID       uint
	TransactionID string
	Source        string
}

// SettlePaymentUseCase is the single path that moves an order to paid. It is
// shared by the webhook, the buyer redirect and the status poll, and applies
// its effects at most once per order no matter how many of them race.
type SettlePaymentUseCase struct {
	orderRepo order.Repository
	txManager TransactionRunner
	locker    OrderLocker
	scheduler PollScheduler
	notifier  PaymentNotifier // Optional
	logger    logger.Interface
}

func NewSettlePaymentUseCase(
	orderRepo order.Repository,
	txManager TransactionRunner,
	locker OrderLocker,
	scheduler PollScheduler,
	logger logger.Interface,
) *SettlePaymentUseCase {
	return &SettlePaymentUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		locker:    locker,
		scheduler: scheduler,
		logger:    logger,
	}
}

// SetNotifier sets the settlement notifier (optional dependency injection)
func (uc *SettlePaymentUseCase) SetNotifier(notifier PaymentNotifier) {
	uc.notifier = notifier
}

// Execute returns an AlreadyTerminal error when another path settled or
// failed the order first. Callers treat that as success.
func (uc *SettlePaymentUseCase) Execute(ctx context.Context, cmd SettlePaymentCommand) error {
	unlock, err := uc.locker.Lock(ctx, cmd.OrderID)
	if err != nil {
		uc.logger.Errorw("failed to acquire order lock", "order_id", cmd.OrderID, "error", err)
		return fmt.Errorf("failed to lock order: %w", err)
	}
	defer unlock()

	terminal, err := uc.orderRepo.HasStatus(ctx, cmd.OrderID, order.TerminalStatuses...)
	if err != nil {
		return fmt.Errorf("failed to check order status: %w", err)
	}
	if terminal {
		uc.logger.Infow("order already settled, skipping", "order_id", cmd.OrderID, "source", cmd.Source)
		return apperrors.NewAlreadyTerminalError("order already settled")
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		reduced, _, err := uc.orderRepo.GetMeta(txCtx, cmd.OrderID, order.MetaStockReduced)
		if err != nil {
			return err
		}
		if !order.ParseBool(reduced) {
			if err := uc.orderRepo.ReduceStock(txCtx, cmd.OrderID); err != nil {
				return fmt.Errorf("failed to reduce stock: %w", err)
			}
		}

		if cmd.TransactionID != "" {
			if err := uc.orderRepo.SetMeta(txCtx, cmd.OrderID, order.MetaTransactionID, cmd.TransactionID); err != nil {
				return err
			}
		}

		applied, err := uc.orderRepo.MarkPaid(txCtx, cmd.OrderID, cmd.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		if !applied {
			return apperrors.NewAlreadyTerminalError("order already settled")
		}

		if err := uc.orderRepo.SetMeta(txCtx, cmd.OrderID, order.MetaCallbackReceived, order.FormatBool(true)); err != nil {
			return err
		}

		return uc.orderRepo.AddNote(txCtx, cmd.OrderID, settlementNote(cmd))
	})
	if err != nil {
		if apperrors.IsAlreadyTerminalError(err) {
			uc.logger.Infow("order settled concurrently, skipping", "order_id", cmd.OrderID, "source", cmd.Source)
			return err
		}
		uc.logger.Errorw("failed to settle payment", "order_id", cmd.OrderID, "source", cmd.Source, "error", err)
		return err
	}

	if err := uc.scheduler.Cancel(PollTaskKey, cmd.OrderID); err != nil {
		uc.logger.Warnw("failed to cancel status poll", "order_id", cmd.OrderID, "error", err)
	}

	uc.logger.Infow("payment settled",
		"order_id", cmd.OrderID,
		"transaction_id", cmd.TransactionID,
		"source", cmd.Source,
	)

	uc.notifySettled(cmd)
	return nil
}

func (uc *SettlePaymentUseCase) notifySettled(cmd SettlePaymentCommand) {
	if uc.notifier == nil {
		return
	}

	goroutine.SafeGo(uc.logger, "notify-payment-settled", func() {
		ctx := context.Background()
		notice := PaymentSettledNotice{
			OrderID:       cmd.OrderID,
			TransactionID: cmd.TransactionID,
			Source:        cmd.Source,
			SettledAt:     biztime.NowUTC(),
		}
		if o, err := uc.orderRepo.Get(ctx, cmd.OrderID); err == nil {
			notice.OrderKey = o.OrderKey()
			notice.Amount = o.Total()
			notice.Currency = o.Currency()
		}
		if err := uc.notifier.NotifyPaymentSettled(ctx, notice); err != nil {
			uc.logger.Warnw("failed to send settlement notice", "order_id", cmd.OrderID, "error", err)
		}
	})
}

func settlementNote(cmd SettlePaymentCommand) string {
	if cmd.TransactionID == "" {
		return fmt.Sprintf("ZaloPay payment confirmed via %s.", cmd.Source)
	}
	return fmt.Sprintf("ZaloPay payment confirmed via %s. Transaction ID: %s", cmd.Source, cmd.TransactionID)
}
