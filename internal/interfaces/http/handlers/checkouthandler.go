package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

type paymentInitiator interface {
	Execute(ctx context.Context, cmd paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error)
}

type CheckoutHandler struct {
	initiatePaymentUC paymentInitiator
	logger            logger.Interface
}

func NewCheckoutHandler(initiatePaymentUC paymentInitiator, logger logger.Interface) *CheckoutHandler {
	return &CheckoutHandler{
		initiatePaymentUC: initiatePaymentUC,
		logger:            logger,
	}
}

type CheckoutRequest struct {
	OrderID  uint   `json:"order_id" binding:"required"`
	BankCode string `json:"bank_code" binding:"omitempty,max=32"`
	AppUser  string `json:"app_user" binding:"omitempty,max=50"`
}

// Checkout opens a ZaloPay order for a pending store order and returns the
// URL the buyer should be sent to.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind checkout request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := paymentUsecases.InitiatePaymentCommand{
		OrderID:  req.OrderID,
		BankCode: req.BankCode,
		Mobile:   utils.IsMobileUserAgent(c.Request.UserAgent()),
		AppUser:  req.AppUser,
	}

	result, err := h.initiatePaymentUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to initiate payment", "error", err, "order_id", req.OrderID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "redirect to ZaloPay to complete the payment", result)
}
