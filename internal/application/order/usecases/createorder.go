package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/id"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

type CreateOrderItem struct {
	ProductID *uint
	Name      string
	Quantity  int
	Total     int64
}

type CreateOrderCommand struct {
	CustomerUser  string
	Currency      string
	PaymentMethod string
	Items         []CreateOrderItem
}

type CreateOrderResult struct {
	OrderID  uint   `json:"order_id"`
	OrderKey string `json:"order_key"`
	Status   string `json:"status"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// CreateOrderUseCase places an order awaiting payment.
type CreateOrderUseCase struct {
	orderRepo   order.Repository
	productRepo order.ProductRepository
	logger      logger.Interface
}

func NewCreateOrderUseCase(
	orderRepo order.Repository,
	productRepo order.ProductRepository,
	logger logger.Interface,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	items := make([]order.Item, 0, len(cmd.Items))
	for _, in := range cmd.Items {
		name := in.Name
		if in.ProductID != nil {
			product, err := uc.productRepo.Get(ctx, *in.ProductID)
			if err != nil {
				return nil, err
			}
			if name == "" {
				name = product.Name
			}
		}
		items = append(items, order.Item{
			ProductID: in.ProductID,
			Name:      name,
			Quantity:  in.Quantity,
			Total:     in.Total,
		})
	}

	paymentMethod := cmd.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = order.PaymentMethodZaloPay
	}

	key, err := id.NewOrderKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order key: %w", err)
	}

	o, err := order.NewOrder(key, cmd.CustomerUser, cmd.Currency, paymentMethod, items)
	if err != nil {
		uc.logger.Warnw("invalid create order command", "error", err)
		return nil, apperrors.NewValidationError("invalid order", err.Error())
	}

	if err := uc.orderRepo.Create(ctx, o); err != nil {
		uc.logger.Errorw("failed to create order", "error", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	uc.logger.Infow("order created", "order_id", o.ID(), "total", o.Total())

	return &CreateOrderResult{
		OrderID:  o.ID(),
		OrderKey: o.OrderKey(),
		Status:   o.Status().String(),
		Total:    o.Total(),
		Currency: o.Currency(),
	}, nil
}

type CreateProductCommand struct {
	Name          string
	StockQuantity *int
}

// CreateProductUseCase registers a product whose stock orders draw down.
type CreateProductUseCase struct {
	productRepo order.ProductRepository
	logger      logger.Interface
}

func NewCreateProductUseCase(productRepo order.ProductRepository, logger logger.Interface) *CreateProductUseCase {
	return &CreateProductUseCase{productRepo: productRepo, logger: logger}
}

func (uc *CreateProductUseCase) Execute(ctx context.Context, cmd CreateProductCommand) (*order.Product, error) {
	if cmd.Name == "" {
		return nil, apperrors.NewValidationError("product name is required")
	}
	if cmd.StockQuantity != nil && *cmd.StockQuantity < 0 {
		return nil, apperrors.NewValidationError("stock quantity must not be negative")
	}

	p := &order.Product{Name: cmd.Name, StockQuantity: cmd.StockQuantity}
	if err := uc.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	uc.logger.Infow("product created", "product_id", p.ID)
	return p, nil
}
