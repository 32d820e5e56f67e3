package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

const maxCallbackBodySize = 64 << 10

type callbackProcessor interface {
	Execute(ctx context.Context, body []byte) (*paymentUsecases.HandlePaymentCallbackResult, error)
}

type ZaloPayCallbackHandler struct {
	handleCallbackUC callbackProcessor
	logger           logger.Interface
}

func NewZaloPayCallbackHandler(handleCallbackUC callbackProcessor, logger logger.Interface) *ZaloPayCallbackHandler {
	return &ZaloPayCallbackHandler{
		handleCallbackUC: handleCallbackUC,
		logger:           logger,
	}
}

// HandleCallback receives the provider's payment notification. The reply
// body is always {return_code, return_message}: 1 acknowledges, -1 rejects
// the notification, 0 asks the provider to deliver it again.
func (h *ZaloPayCallbackHandler) HandleCallback(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		utils.ProviderAckResponse(c, http.StatusUnauthorized, paymentgateway.ReturnCodeError, "Invalid request method")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBodySize))
	if err != nil {
		h.logger.Warnw("failed to read payment callback body", "error", err)
		utils.ProviderAckResponse(c, http.StatusInternalServerError, paymentgateway.ReturnCodeError, "No data found")
		return
	}

	result, err := h.handleCallbackUC.Execute(c.Request.Context(), body)
	if err != nil {
		if apperrors.IsInvalidRequestError(err) || apperrors.IsSignatureMismatchError(err) {
			utils.ProviderAckResponse(c, http.StatusInternalServerError, paymentgateway.ReturnCodeError,
				apperrors.GetAppError(err).Message)
			return
		}

		h.logger.Errorw("failed to process payment callback", "error", err)
		utils.ProviderAckResponse(c, http.StatusInternalServerError, paymentgateway.ReturnCodeRetry,
			"temporarily unable to process notification")
		return
	}

	if result.AlreadySettled {
		h.logger.Infow("payment callback for settled order acknowledged", "order_id", result.OrderID)
	}

	utils.ProviderAckResponse(c, http.StatusOK, paymentgateway.ReturnCodeSuccess, "success")
}
