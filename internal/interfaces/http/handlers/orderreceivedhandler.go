package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

// CheckoutMessageParam carries the buyer-facing message on the checkout redirect.
const CheckoutMessageParam = "zlp_message"

type redirectReturnProcessor interface {
	Execute(ctx context.Context, cmd paymentUsecases.HandleRedirectReturnCommand) (*paymentUsecases.HandleRedirectReturnResult, error)
}

type OrderReceivedHandler struct {
	redirectReturnUC redirectReturnProcessor
	checkoutURL      string
	logger           logger.Interface
}

func NewOrderReceivedHandler(redirectReturnUC redirectReturnProcessor, checkoutURL string, logger logger.Interface) *OrderReceivedHandler {
	return &OrderReceivedHandler{
		redirectReturnUC: redirectReturnUC,
		checkoutURL:      checkoutURL,
		logger:           logger,
	}
}

// OrderReceived is the page the buyer lands on after ZaloPay. Without the
// provider's return parameters it only acknowledges the order.
func (h *OrderReceivedHandler) OrderReceived(c *gin.Context) {
	orderID, err := utils.ParseIDParam(c, "id", "Order")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := paymentUsecases.HandleRedirectReturnCommand{
		OrderID:    orderID,
		OrderKey:   c.Query("key"),
		AppID:      c.Query("appid"),
		Checksum:   c.Query("checksum"),
		AppTransID: c.Query("apptransid"),
		Status:     c.Query("status"),
	}

	if !cmd.IsProviderReturn() {
		utils.SuccessResponse(c, http.StatusOK, "order received", gin.H{"order_id": orderID})
		return
	}

	result, err := h.redirectReturnUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		if apperrors.IsInvalidRequestError(err) || apperrors.IsNotFoundError(err) {
			h.logger.Warnw("rejected payment return", "order_id", orderID, "error", err)
			utils.ErrorResponseWithError(c, err)
			return
		}
		h.logger.Errorw("failed to handle payment return", "order_id", orderID, "error", err)
		h.redirectToCheckout(c, paymentUsecases.MessageUnexpectedError)
		return
	}

	if result.Outcome == paymentUsecases.RedirectFailed {
		h.redirectToCheckout(c, result.Message)
		return
	}

	message := result.Message
	if message == "" {
		message = "Thank you. Your payment has been received."
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}

func (h *OrderReceivedHandler) redirectToCheckout(c *gin.Context, message string) {
	if message == "" {
		message = paymentUsecases.MessageUnexpectedError
	}
	target := h.checkoutURL + "?" + url.Values{CheckoutMessageParam: {message}}.Encode()
	c.Redirect(http.StatusFound, target)
}
