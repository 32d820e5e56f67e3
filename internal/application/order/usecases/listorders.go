package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

type ListOrdersQuery struct {
	Statuses []string
	Page     int
	PageSize int
}

type OrderItemSummary struct {
	ProductID *uint  `json:"product_id,omitempty"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Total     int64  `json:"total"`
}

type OrderSummary struct {
	OrderID       uint               `json:"order_id"`
	OrderKey      string             `json:"order_key"`
	Status        string             `json:"status"`
	Total         int64              `json:"total"`
	Currency      string             `json:"currency"`
	PaymentMethod string             `json:"payment_method"`
	TransactionID string             `json:"transaction_id,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	Items         []OrderItemSummary `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
}

type ListOrdersResult struct {
	Orders []OrderSummary `json:"orders"`
	Total  int64          `json:"total"`
}

type ListOrdersUseCase struct {
	lister order.Lister
	logger logger.Interface
}

func NewListOrdersUseCase(lister order.Lister, logger logger.Interface) *ListOrdersUseCase {
	return &ListOrdersUseCase{lister: lister, logger: logger}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, query ListOrdersQuery) (*ListOrdersResult, error) {
	filter := order.ListFilter{Page: query.Page, PageSize: query.PageSize}
	for _, s := range query.Statuses {
		status := order.Status(s)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("unknown order status", s)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	orders, total, err := uc.lister.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list orders", "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := &ListOrdersResult{Orders: make([]OrderSummary, 0, len(orders)), Total: total}
	for _, o := range orders {
		result.Orders = append(result.Orders, ToOrderSummary(o))
	}
	return result, nil
}

func ToOrderSummary(o *order.Order) OrderSummary {
	summary := OrderSummary{
		OrderID:       o.ID(),
		OrderKey:      o.OrderKey(),
		Status:        o.Status().String(),
		Total:         o.Total(),
		Currency:      o.Currency(),
		PaymentMethod: o.PaymentMethod(),
		PaidAt:        o.PaidAt(),
		Items:         make([]OrderItemSummary, 0, len(o.Items())),
		CreatedAt:     o.CreatedAt(),
	}
	if tx := o.TransactionID(); tx != nil {
		summary.TransactionID = *tx
	}
	for _, item := range o.Items() {
		summary.Items = append(summary.Items, OrderItemSummary{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Total:     item.Total,
		})
	}
	return summary
}

type ListProductsUseCase struct {
	productRepo order.ProductRepository
}

func NewListProductsUseCase(productRepo order.ProductRepository) *ListProductsUseCase {
	return &ListProductsUseCase{productRepo: productRepo}
}

func (uc *ListProductsUseCase) Execute(ctx context.Context) ([]*order.Product, error) {
	products, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
