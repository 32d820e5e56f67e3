package usecases

import (
	"context"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

type QueryRefundStatusResult struct {
	OrderID          uint   `json:"order_id"`
	MerchantRefundID string `json:"m_refund_id"`
	ReturnCode       int    `json:"return_code"`
	ReturnMessage    string `json:"return_message,omitempty"`
	SubReturnCode    int    `json:"sub_return_code,omitempty"`
	SubReturnMessage string `json:"sub_return_message,omitempty"`
}

// QueryRefundStatusUseCase asks the provider about the last refund sent for an order.
type QueryRefundStatusUseCase struct {
	orderRepo order.Repository
	gateway   paymentgateway.Gateway
	logger    logger.Interface
}

func NewQueryRefundStatusUseCase(
	orderRepo order.Repository,
	gateway paymentgateway.Gateway,
	logger logger.Interface,
) *QueryRefundStatusUseCase {
	return &QueryRefundStatusUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		logger:    logger,
	}
}

func (uc *QueryRefundStatusUseCase) Execute(ctx context.Context, orderID uint) (*QueryRefundStatusResult, error) {
	refundID, found, err := uc.orderRepo.GetMeta(ctx, orderID, order.MetaRefundID)
	if err != nil {
		return nil, err
	}
	if !found || refundID == "" {
		return nil, apperrors.NewNotFoundError("no refund recorded for order")
	}

	status, err := uc.gateway.QueryRefundStatus(ctx, refundID)
	if err != nil {
		uc.logger.Warnw("failed to query refund status", "order_id", orderID, "m_refund_id", refundID, "error", err)
		return nil, err
	}

	return &QueryRefundStatusResult{
		OrderID:          orderID,
		MerchantRefundID: refundID,
		ReturnCode:       status.ReturnCode,
		ReturnMessage:    status.ReturnMessage,
		SubReturnCode:    status.SubReturnCode,
		SubReturnMessage: status.SubReturnMessage,
	}, nil
}

type PaymentStateResult struct {
	OrderID   uint               `json:"order_id"`
	Status    string             `json:"status"`
	Total     int64              `json:"total"`
	Currency  string             `json:"currency"`
	Payment   order.PaymentState `json:"payment"`
	Scheduled bool               `json:"poll_scheduled"`
	Notes     []string           `json:"notes"`
}

// GetPaymentStateUseCase is the merchant's view of an order's reconciliation progress.
type GetPaymentStateUseCase struct {
	orderRepo order.Repository
	scheduler PollScheduler
}

func NewGetPaymentStateUseCase(orderRepo order.Repository, scheduler PollScheduler) *GetPaymentStateUseCase {
	return &GetPaymentStateUseCase{orderRepo: orderRepo, scheduler: scheduler}
}

func (uc *GetPaymentStateUseCase) Execute(ctx context.Context, orderID uint) (*PaymentStateResult, error) {
	o, err := uc.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	meta, err := uc.orderRepo.ListMeta(ctx, orderID)
	if err != nil {
		return nil, err
	}
	notes, err := uc.orderRepo.ListNotes(ctx, orderID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(notes))
	for _, n := range notes {
		texts = append(texts, n.Text)
	}

	return &PaymentStateResult{
		OrderID:   o.ID(),
		Status:    o.Status().String(),
		Total:     o.Total(),
		Currency:  o.Currency(),
		Payment:   order.PaymentStateFromMeta(meta),
		Scheduled: uc.scheduler.IsScheduled(PollTaskKey, orderID),
		Notes:     texts,
	}, nil
}
