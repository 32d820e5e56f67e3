package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/shared/biztime"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/goroutine"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/money"
)

// DefaultMinRefundAmount is the smallest refund the provider accepts, in VND.
const DefaultMinRefundAmount = 1000

type RefundPaymentCommand struct {
	OrderID uint
	Amount  int64
	Reason  string
	// Description overrides the text sent to the provider.
	Description string
	Lines       []order.RefundLine
}

type RefundPaymentResult struct {
	OrderID          uint   `json:"order_id"`
	Amount           int64  `json:"amount"`
	MerchantRefundID string `json:"m_refund_id"`
	RefundID         string `json:"refund_id,omitempty"`
	ReturnCode       int    `json:"return_code"`
	ReturnMessage    string `json:"return_message,omitempty"`
}

type RefundPaymentConfig struct {
	Currency  string
	MinAmount int64
}

// RefundPaymentUseCase sends a refund for a paid ZaloPay order and records it.
type RefundPaymentUseCase struct {
	orderRepo order.Repository
	gateway   paymentgateway.Gateway
	config    RefundPaymentConfig
	sanitizer *bluemonday.Policy
	notifier  PaymentNotifier // Optional
	logger    logger.Interface
}

func NewRefundPaymentUseCase(
	orderRepo order.Repository,
	gateway paymentgateway.Gateway,
	config RefundPaymentConfig,
	logger logger.Interface,
) *RefundPaymentUseCase {
	if config.MinAmount <= 0 {
		config.MinAmount = DefaultMinRefundAmount
	}
	return &RefundPaymentUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		config:    config,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// SetNotifier sets the refund notifier (optional dependency injection)
func (uc *RefundPaymentUseCase) SetNotifier(notifier PaymentNotifier) {
	uc.notifier = notifier
}

func (uc *RefundPaymentUseCase) Execute(ctx context.Context, cmd RefundPaymentCommand) (*RefundPaymentResult, error) {
	if cmd.Amount < uc.config.MinAmount {
		return nil, apperrors.NewInvalidRequestError(
			"refund amount is below the minimum",
			fmt.Sprintf("minimum is %s", money.Format(uc.config.MinAmount, uc.config.Currency)),
		)
	}

	o, err := uc.orderRepo.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Currency() != uc.config.Currency {
		return nil, apperrors.NewInvalidRequestError("unsupported currency", o.Currency())
	}

	refunds, err := uc.orderRepo.GetRefunds(ctx, o.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load refunds: %w", err)
	}
	refundable := o.RefundableTotal(refunds)
	if cmd.Amount > refundable {
		return nil, apperrors.NewInvalidRequestError(
			"refund amount exceeds the refundable total",
			fmt.Sprintf("refundable %s", money.Format(refundable, o.Currency())),
		)
	}

	zpTransID, _, err := uc.orderRepo.GetMeta(ctx, o.ID(), order.MetaTransactionID)
	if err != nil {
		return nil, err
	}
	if zpTransID == "" {
		return nil, apperrors.NewInvalidRequestError("order has no ZaloPay transaction")
	}

	reason := strings.TrimSpace(uc.sanitizer.Sanitize(cmd.Reason))
	description := cmd.Description
	if description == "" {
		description = refundDescription(o.ID(), reason)
	}

	remote, err := uc.gateway.Refund(ctx, paymentgateway.RefundRequest{
		ZPTransID:   zpTransID,
		Amount:      cmd.Amount,
		Description: description,
	})
	if remote != nil && remote.MerchantRefundID != "" {
		if metaErr := uc.orderRepo.SetMeta(ctx, o.ID(), order.MetaRefundID, remote.MerchantRefundID); metaErr != nil {
			uc.logger.Warnw("failed to store merchant refund id", "order_id", o.ID(), "error", metaErr)
		}
	}
	if err != nil {
		uc.logger.Errorw("refund error for order", "order_id", o.ID(), "amount", cmd.Amount, "error", err)
		return nil, err
	}

	lines := cmd.Lines
	if len(lines) == 0 {
		lines = []order.RefundLine{{Name: "Refund", Subtotal: -cmd.Amount}}
	}
	record := &order.Refund{
		OrderID:        o.ID(),
		Amount:         cmd.Amount,
		Reason:         reason,
		MerchantRefund: remote.MerchantRefundID,
		RemoteRefundID: remote.RefundID,
		Lines:          lines,
		CreatedAt:      biztime.NowUTC(),
	}
	if err := uc.orderRepo.CreateRefund(ctx, record); err != nil {
		// The provider already accepted; keep going so the note is written.
		uc.logger.Errorw("failed to record refund", "order_id", o.ID(), "m_refund_id", remote.MerchantRefundID, "error", err)
	}

	note := fmt.Sprintf("Refunded %s - Reason: %s", money.Format(cmd.Amount, o.Currency()), reason)
	if err := uc.orderRepo.AddNote(ctx, o.ID(), note); err != nil {
		uc.logger.Warnw("failed to add refund note", "order_id", o.ID(), "error", err)
	}

	if refundable-cmd.Amount <= 0 {
		if err := uc.orderRepo.UpdateStatus(ctx, o.ID(), order.StatusRefunded); err != nil {
			uc.logger.Warnw("failed to mark order refunded", "order_id", o.ID(), "error", err)
		}
	}

	uc.logger.Infow("refund accepted",
		"order_id", o.ID(),
		"amount", cmd.Amount,
		"m_refund_id", remote.MerchantRefundID,
		"return_code", remote.ReturnCode,
	)

	uc.notifyRefunded(RefundNotice{
		OrderID:          o.ID(),
		Amount:           cmd.Amount,
		Currency:         o.Currency(),
		Reason:           reason,
		MerchantRefundID: remote.MerchantRefundID,
		RefundedAt:       record.CreatedAt,
	})

	return &RefundPaymentResult{
		OrderID:          o.ID(),
		Amount:           cmd.Amount,
		MerchantRefundID: remote.MerchantRefundID,
		RefundID:         remote.RefundID,
		ReturnCode:       remote.ReturnCode,
		ReturnMessage:    remote.ReturnMessage,
	}, nil
}

func (uc *RefundPaymentUseCase) notifyRefunded(notice RefundNotice) {
	if uc.notifier == nil {
		return
	}
	goroutine.SafeGo(uc.logger, "notify-refunded", func() {
		if err := uc.notifier.NotifyRefunded(context.Background(), notice); err != nil {
			uc.logger.Warnw("failed to send refund notice", "order_id", notice.OrderID, "error", err)
		}
	})
}

func refundDescription(orderID uint, reason string) string {
	description := fmt.Sprintf("Refund for order %d.", orderID)
	if reason != "" {
		description += " Reason: " + reason
	}
	return description
}
