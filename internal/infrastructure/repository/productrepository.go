package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/zlpay/internal/infrastructure/persistence/models"
	"github.com/orris-inc/zlpay/internal/shared/db"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *order.Product) error {
	model := mappers.ProductToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	p.ID = model.ID
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, productID uint) (*order.Product, error) {
	var model models.ProductModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("product not found", fmt.Sprintf("product %d", productID))
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return mappers.ProductToDomain(&model), nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*order.Product, error) {
	var rows []models.ProductModel

	if err := db.GetTxFromContext(ctx, r.db).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*order.Product, len(rows))
	for i := range rows {
		products[i] = mappers.ProductToDomain(&rows[i])
	}
	return products, nil
}
