package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/shared/biztime"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/id"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// MobileBankCode opens the ZaloPay app directly instead of the web gateway.
const MobileBankCode = "zalopayapp"

type InitiatePaymentCommand struct {
	OrderID  uint
	BankCode string
	// Mobile is set when the buyer's user agent is a phone or tablet.
	Mobile bool
	// AppUser overrides the order's customer as the provider-side user.
	AppUser string
}

type InitiatePaymentResult struct {
	OrderID      uint   `json:"order_id"`
	AppTransID   string `json:"app_trans_id"`
	RedirectURL  string `json:"redirect_url"`
	ZPTransToken string `json:"zp_trans_token,omitempty"`
	QRCode       string `json:"qr_code,omitempty"`
}

type InitiatePaymentConfig struct {
	Currency     string
	PollInterval time.Duration
	ReturnURL    ReturnURLFunc
}

type InitiatePaymentUseCase struct {
	orderRepo order.Repository
	gateway   paymentgateway.Gateway
	scheduler PollScheduler
	config    InitiatePaymentConfig
	logger    logger.Interface
}

func NewInitiatePaymentUseCase(
	orderRepo order.Repository,
	gateway paymentgateway.Gateway,
	scheduler PollScheduler,
	config InitiatePaymentConfig,
	logger logger.Interface,
) *InitiatePaymentUseCase {
	return &InitiatePaymentUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		scheduler: scheduler,
		config:    config,
		logger:    logger,
	}
}

func (uc *InitiatePaymentUseCase) Execute(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResult, error) {
	o, err := uc.orderRepo.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := uc.validate(o); err != nil {
		uc.logger.Warnw("order cannot be paid", "order_id", cmd.OrderID, "error", err)
		return nil, err
	}

	appTransID, err := id.NewAppTransID(biztime.NowUTC())
	if err != nil {
		return nil, fmt.Errorf("failed to generate app trans id: %w", err)
	}

	draft, err := uc.buildDraft(o, cmd, appTransID)
	if err != nil {
		return nil, err
	}

	remote, err := uc.gateway.CreateOrder(ctx, draft)
	if err != nil {
		uc.logger.Errorw("failed to create remote order",
			"order_id", o.ID(),
			"app_trans_id", appTransID,
			"error", err,
		)
		return nil, err
	}

	if err := uc.recordTransaction(ctx, o, appTransID); err != nil {
		return nil, err
	}

	if !uc.scheduler.IsScheduled(PollTaskKey, o.ID()) {
		if err := uc.scheduler.ScheduleRecurring(ctx, PollTaskKey, o.ID(), uc.config.PollInterval); err != nil {
			// The webhook and redirect still settle the order.
			uc.logger.Errorw("failed to schedule status poll", "order_id", o.ID(), "error", err)
		}
	}

	uc.logger.Infow("payment initiated",
		"order_id", o.ID(),
		"app_trans_id", appTransID,
		"amount", o.Total(),
	)

	return &InitiatePaymentResult{
		OrderID:      o.ID(),
		AppTransID:   appTransID,
		RedirectURL:  remote.OrderURL,
		ZPTransToken: remote.ZPTransToken,
		QRCode:       remote.QRCode,
	}, nil
}

func (uc *InitiatePaymentUseCase) validate(o *order.Order) error {
	if !o.IsZaloPay() {
		return apperrors.NewInvalidRequestError("order is not paid with ZaloPay")
	}
	if o.Currency() != uc.config.Currency {
		return apperrors.NewInvalidRequestError("unsupported currency", o.Currency())
	}
	if !o.Status().In(order.StatusPending, order.StatusFailed) {
		return apperrors.NewInvalidRequestError("order is not awaiting payment", o.Status().String())
	}
	return nil
}

// recordTransaction stores the new app_trans_id and resets the reconciliation
// flags. A failed order goes back to pending for the retry.
func (uc *InitiatePaymentUseCase) recordTransaction(ctx context.Context, o *order.Order, appTransID string) error {
	meta := []struct{ key, value string }{
		{order.MetaAppTransID, appTransID},
		{order.MetaCallbackReceived, order.FormatBool(false)},
		{order.MetaPollAttempts, "0"},
	}
	for _, m := range meta {
		if err := uc.orderRepo.SetMeta(ctx, o.ID(), m.key, m.value); err != nil {
			return fmt.Errorf("failed to store %s: %w", m.key, err)
		}
	}

	if o.Status() == order.StatusFailed {
		if err := uc.orderRepo.UpdateStatus(ctx, o.ID(), order.StatusPending); err != nil {
			return fmt.Errorf("failed to reopen order: %w", err)
		}
	}
	return nil
}

func (uc *InitiatePaymentUseCase) buildDraft(o *order.Order, cmd InitiatePaymentCommand, appTransID string) (paymentgateway.OrderDraft, error) {
	items, err := ItemsJSON(o.Items())
	if err != nil {
		return paymentgateway.OrderDraft{}, err
	}

	redirectURL := ""
	if uc.config.ReturnURL != nil {
		redirectURL = uc.config.ReturnURL(o.ID(), o.OrderKey())
	}
	embed, err := EmbedJSON(o.ID(), redirectURL)
	if err != nil {
		return paymentgateway.OrderDraft{}, err
	}

	appUser := cmd.AppUser
	if appUser == "" {
		appUser = o.CustomerUser()
	}

	bankCode := cmd.BankCode
	if cmd.Mobile {
		bankCode = MobileBankCode
	}

	return paymentgateway.OrderDraft{
		OrderID:     o.ID(),
		AppTransID:  appTransID,
		AppUser:     appUser,
		Amount:      o.Total(),
		Description: o.Description(),
		ItemsJSON:   items,
		EmbedJSON:   embed,
		BankCode:    bankCode,
	}, nil
}

type itemLine struct {
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
}

// ItemsJSON renders order items as [{"<name>":{"quantity":q,"price":p}}].
func ItemsJSON(items []order.Item) (string, error) {
	lines := make([]map[string]itemLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, map[string]itemLine{
			item.Name: {Quantity: item.Quantity, Price: item.Total},
		})
	}
	return marshalUnescaped(lines)
}

type embedPayload struct {
	RedirectURL string `json:"redirecturl"`
	OrderID     uint   `json:"orderID"`
}

// EmbedJSON renders the merchant payload echoed back in notifications.
func EmbedJSON(orderID uint, redirectURL string) (string, error) {
	return marshalUnescaped(embedPayload{RedirectURL: redirectURL, OrderID: orderID})
}

// marshalUnescaped keeps '&' and '<' literal so the signed text matches what the provider sees.
func marshalUnescaped(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode json: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
