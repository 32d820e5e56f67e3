package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/zlpay/internal/infrastructure/persistence/models"
	"github.com/orris-inc/zlpay/internal/shared/biztime"
	"github.com/orris-inc/zlpay/internal/shared/db"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Lister     = (*OrderRepository)(nil)
)

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := mappers.OrderToModel(o)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	o.SetID(model.ID)
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, orderID uint) (*order.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).Preload("Items").First(&model, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order not found", fmt.Sprintf("order %d", orderID))
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return mappers.OrderToDomain(&model)
}

func (r *OrderRepository) GetByKey(ctx context.Context, orderKey string) (*order.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).
		Preload("Items").
		Where("order_key = ?", orderKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, fmt.Errorf("failed to get order by key: %w", err)
	}

	return mappers.OrderToDomain(&model)
}

func (r *OrderRepository) GetMeta(ctx context.Context, orderID uint, key string) (string, bool, error) {
	var model models.OrderMetaModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ? AND meta_key = ?", orderID, key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get order meta %s: %w", key, err)
	}

	return model.MetaValue, true, nil
}

// SetMeta upserts on (order_id, meta_key).
func (r *OrderRepository) SetMeta(ctx context.Context, orderID uint, key, value string) error {
	model := &models.OrderMetaModel{
		OrderID:   orderID,
		MetaKey:   key,
		MetaValue: value,
		UpdatedAt: biztime.NowUTC(),
	}

	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to set order meta %s: %w", key, err)
	}
	return nil
}

func (r *OrderRepository) ListMeta(ctx context.Context, orderID uint) (map[string]string, error) {
	var rows []models.OrderMetaModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list order meta: %w", err)
	}

	meta := make(map[string]string, len(rows))
	for _, row := range rows {
		meta[row.MetaKey] = row.MetaValue
	}
	return meta, nil
}

// MarkPaid only matches a pending row, so concurrent callers race on the
// UPDATE and exactly one sees a row affected.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID uint, transactionID string) (bool, error) {
	now := biztime.NowUTC()

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, order.StatusPending.String()).
		Updates(map[string]interface{}{
			"status":         order.StatusProcessing.String(),
			"transaction_id": transactionID,
			"paid_at":        now,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *OrderRepository) ReduceStock(ctx context.Context, orderID uint) error {
	reduced, _, err := r.GetMeta(ctx, orderID, order.MetaStockReduced)
	if err != nil {
		return err
	}
	if order.ParseBool(reduced) {
		return nil
	}

	tx := db.GetTxFromContext(ctx, r.db)

	var items []models.OrderItemModel
	if err := tx.Where("order_id = ? AND product_id IS NOT NULL", orderID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	for _, item := range items {
		// products without stock tracking keep a NULL quantity
		if err := tx.Model(&models.ProductModel{}).
			Where("id = ? AND stock_quantity IS NOT NULL", *item.ProductID).
			Updates(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity - ?", item.Quantity),
				"updated_at":     biztime.NowUTC(),
			}).Error; err != nil {
			return fmt.Errorf("failed to reduce stock for product %d: %w", *item.ProductID, err)
		}
	}

	return r.SetMeta(ctx, orderID, order.MetaStockReduced, order.FormatBool(true))
}

func (r *OrderRepository) HasStatus(ctx context.Context, orderID uint, statuses ...order.Status) (bool, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Scopes(db.StatusIn(order.StatusStrings(statuses)...)).
		Where("id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check order status: %w", err)
	}

	return count > 0, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uint, status order.Status) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status.String(),
			"version":    gorm.Expr("version + 1"),
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("order not found", fmt.Sprintf("order %d", orderID))
	}
	return nil
}

func (r *OrderRepository) AddNote(ctx context.Context, orderID uint, text string) error {
	model := &models.OrderNoteModel{
		OrderID:   orderID,
		Note:      text,
		CreatedAt: biztime.NowUTC(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to add order note: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListNotes(ctx context.Context, orderID uint) ([]*order.Note, error) {
	var rows []models.OrderNoteModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list order notes: %w", err)
	}

	notes := make([]*order.Note, len(rows))
	for i := range rows {
		notes[i] = mappers.NoteToDomain(&rows[i])
	}
	return notes, nil
}

func (r *OrderRepository) GetRefunds(ctx context.Context, orderID uint) ([]*order.Refund, error) {
	var rows []models.RefundModel

	if err := db.GetTxFromContext(ctx, r.db).
		Preload("Lines").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get refunds: %w", err)
	}

	refunds := make([]*order.Refund, len(rows))
	for i := range rows {
		refunds[i] = mappers.RefundToDomain(&rows[i])
	}
	return refunds, nil
}

func (r *OrderRepository) CreateRefund(ctx context.Context, refund *order.Refund) error {
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = biztime.NowUTC()
	}
	model := mappers.RefundToModel(refund)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	refund.ID = model.ID
	return nil
}

func (r *OrderRepository) ListAwaitingConfirmation(ctx context.Context, maxAttempts, limit int) ([]uint, error) {
	var ids []uint

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Joins("JOIN order_meta tx ON tx.order_id = orders.id AND tx.meta_key = ? AND tx.meta_value <> ''", order.MetaAppTransID).
		Where("orders.status = ?", order.StatusPending.String()).
		Where("NOT EXISTS (SELECT 1 FROM order_meta cb WHERE cb.order_id = orders.id AND cb.meta_key = ? AND cb.meta_value = ?)",
			order.MetaCallbackReceived, order.FormatBool(true)).
		Where("NOT EXISTS (SELECT 1 FROM order_meta pa WHERE pa.order_id = orders.id AND pa.meta_key = ? "+
			"AND CASE WHEN pa.meta_value = '' THEN 0 ELSE CAST(pa.meta_value AS DECIMAL(10,0)) END >= ?)",
			order.MetaPollAttempts, maxAttempts).
		Order("orders.id ASC").
		Limit(limit).
		Pluck("orders.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders awaiting confirmation: %w", err)
	}

	return ids, nil
}

func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Scopes(db.StatusIn(order.StatusStrings(filter.Statuses)...)).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var rows []models.OrderModel
	if err := query.
		Preload("Items").
		Scopes(db.NewestFirst(), db.Paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		o, err := mappers.OrderToDomain(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}
