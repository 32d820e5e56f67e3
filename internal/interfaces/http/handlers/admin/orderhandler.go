// Package admin holds the merchant-facing order, refund and product endpoints.
package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderUsecases "github.com/orris-inc/zlpay/internal/application/order/usecases"
	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/shared/constants"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

type orderLister interface {
	Execute(ctx context.Context, query orderUsecases.ListOrdersQuery) (*orderUsecases.ListOrdersResult, error)
}

type orderCreator interface {
	Execute(ctx context.Context, cmd orderUsecases.CreateOrderCommand) (*orderUsecases.CreateOrderResult, error)
}

type orderCanceller interface {
	Execute(ctx context.Context, orderID uint) (*paymentUsecases.CancelOrderResult, error)
}

type paymentStateGetter interface {
	Execute(ctx context.Context, orderID uint) (*paymentUsecases.PaymentStateResult, error)
}

type notificationLister interface {
	ListByOrder(ctx context.Context, orderID uint) ([]paymentUsecases.NotificationEntry, error)
}

type OrderHandler struct {
	listOrdersUC      orderLister
	createOrderUC     orderCreator
	cancelOrderUC     orderCanceller
	getPaymentStateUC paymentStateGetter
	notifications     notificationLister
	logger            logger.Interface
}

func NewOrderHandler(
	listOrdersUC orderLister,
	createOrderUC orderCreator,
	cancelOrderUC orderCanceller,
	getPaymentStateUC paymentStateGetter,
	notifications notificationLister,
	logger logger.Interface,
) *OrderHandler {
	return &OrderHandler{
		listOrdersUC:      listOrdersUC,
		createOrderUC:     createOrderUC,
		cancelOrderUC:     cancelOrderUC,
		getPaymentStateUC: getPaymentStateUC,
		notifications:     notifications,
		logger:            logger,
	}
}

type CreateOrderItemRequest struct {
	ProductID *uint  `json:"product_id"`
	Name      string `json:"name" binding:"max=200"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
	Total     int64  `json:"total" binding:"gte=0"`
}

type CreateOrderRequest struct {
	CustomerUser  string                   `json:"customer_user" binding:"omitempty,max=50"`
	Currency      string                   `json:"currency" binding:"omitempty,len=3"`
	PaymentMethod string                   `json:"payment_method"`
	Items         []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type NotificationResponse struct {
	AppTransID string `json:"app_trans_id,omitempty"`
	ZPTransID  string `json:"zp_trans_id,omitempty"`
	Verified   bool   `json:"verified"`
	Outcome    string `json:"outcome"`
	ReceivedAt string `json:"received_at"`
}

// ListOrders lists orders newest first. status takes a comma-separated list.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	pagination := utils.ParsePagination(c)

	query := orderUsecases.ListOrdersQuery{
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				query.Statuses = append(query.Statuses, s)
			}
		}
	}

	result, err := h.listOrdersUC.Execute(c.Request.Context(), query)
	if err != nil {
		h.logger.Errorw("failed to list orders", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Orders, result.Total, pagination.Page, pagination.PageSize)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind create order request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := orderUsecases.CreateOrderCommand{
		CustomerUser:  req.CustomerUser,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Items:         make([]orderUsecases.CreateOrderItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, orderUsecases.CreateOrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Total:     item.Total,
		})
	}

	result, err := h.createOrderUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to create order", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "order created")
}

// CancelOrder cancels an order. Paid ZaloPay orders are refunded in the same call.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := utils.ParseIDParam(c, "id", "Order")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelOrderUC.Execute(c.Request.Context(), orderID)
	if err != nil {
		if apperrors.IsAlreadyTerminalError(err) {
			utils.ErrorResponse(c, http.StatusConflict, "order is already cancelled or refunded")
			return
		}
		h.logger.Errorw("failed to cancel order", "error", err, "order_id", orderID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("order cancelled by admin",
		"order_id", orderID,
		"refunded", result.Refunded,
		"admin", c.GetString(constants.ContextKeyAdmin),
	)
	utils.SuccessResponse(c, http.StatusOK, "order cancelled", result)
}

// GetPaymentState shows the order's stored payment metadata, notes and
// whether a status poll is still scheduled.
func (h *OrderHandler) GetPaymentState(c *gin.Context) {
	orderID, err := utils.ParseIDParam(c, "id", "Order")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getPaymentStateUC.Execute(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Errorw("failed to get payment state", "error", err, "order_id", orderID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *OrderHandler) ListNotifications(c *gin.Context) {
	orderID, err := utils.ParseIDParam(c, "id", "Order")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	entries, err := h.notifications.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Errorw("failed to list payment notifications", "error", err, "order_id", orderID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]NotificationResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, NotificationResponse{
			AppTransID: e.AppTransID,
			ZPTransID:  e.ZPTransID,
			Verified:   e.Verified,
			Outcome:    e.Outcome,
			ReceivedAt: e.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", items)
}
