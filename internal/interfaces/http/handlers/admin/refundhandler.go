package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/shared/constants"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

type refundSender interface {
	Execute(ctx context.Context, cmd paymentUsecases.RefundPaymentCommand) (*paymentUsecases.RefundPaymentResult, error)
}

type refundStatusQuerier interface {
	Execute(ctx context.Context, orderID uint) (*paymentUsecases.QueryRefundStatusResult, error)
}

type RefundHandler struct {
	refundUC       refundSender
	refundStatusUC refundStatusQuerier
	logger         logger.Interface
}

func NewRefundHandler(refundUC refundSender, refundStatusUC refundStatusQuerier, logger logger.Interface) *RefundHandler {
	return &RefundHandler{
		refundUC:       refundUC,
		refundStatusUC: refundStatusUC,
		logger:         logger,
	}
}

type CreateRefundRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"max=500"`
}

// CreateRefund sends a (partial) refund to ZaloPay for a paid order.
func (h *RefundHandler) CreateRefund(c *gin.Context) {
	orderID, err := utils.ParseIDParam(c, "id", "Order")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind refund request", "error", err, "order_id", orderID)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.refundUC.Execute(c.Request.Context(), paymentUsecases.RefundPaymentCommand{
		OrderID: orderID,
		Amount:  req.Amount,
		Reason:  req.Reason,
	})
	if err != nil {
		h.logger.Errorw("failed to refund order", "error", err, "order_id", orderID, "amount", req.Amount)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("refund sent by admin",
		"order_id", orderID,
		"amount", req.Amount,
		"m_refund_id", result.MerchantRefundID,
		"admin", c.GetString(constants.ContextKeyAdmin),
	)
	utils.CreatedResponse(c, result, "refund accepted by ZaloPay")
}

func (h *RefundHandler) GetRefundStatus(c *gin.Context) {
	orderID, err := utils.ParseIDParam(c, "id", "Order")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.refundStatusUC.Execute(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Warnw("failed to query refund status", "error", err, "order_id", orderID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
