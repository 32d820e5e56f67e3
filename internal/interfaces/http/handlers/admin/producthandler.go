package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	orderUsecases "github.com/orris-inc/zlpay/internal/application/order/usecases"
	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

type productLister interface {
	Execute(ctx context.Context) ([]*order.Product, error)
}

type productCreator interface {
	Execute(ctx context.Context, cmd orderUsecases.CreateProductCommand) (*order.Product, error)
}

type ProductHandler struct {
	listProductsUC  productLister
	createProductUC productCreator
	logger          logger.Interface
}

func NewProductHandler(listProductsUC productLister, createProductUC productCreator, logger logger.Interface) *ProductHandler {
	return &ProductHandler{
		listProductsUC:  listProductsUC,
		createProductUC: createProductUC,
		logger:          logger,
	}
}

type CreateProductRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	// StockQuantity is omitted for products without stock tracking.
	StockQuantity *int `json:"stock_quantity" binding:"omitempty,gte=0"`
}

type ProductResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	StockQuantity *int   `json:"stock_quantity"`
}

func toProductResponse(p *order.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Name: p.Name, StockQuantity: p.StockQuantity}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.listProductsUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list products", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind create product request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	product, err := h.createProductUC.Execute(c.Request.Context(), orderUsecases.CreateProductCommand{
		Name:          req.Name,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		h.logger.Errorw("failed to create product", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toProductResponse(product), "product created")
}
