package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/infrastructure/persistence/models"
	"github.com/orris-inc/zlpay/internal/shared/db"
)

// PaymentNotificationLogRepository is the audit trail of provider callbacks.
type PaymentNotificationLogRepository struct {
	db *gorm.DB
}

func NewPaymentNotificationLogRepository(db *gorm.DB) *PaymentNotificationLogRepository {
	return &PaymentNotificationLogRepository{db: db}
}

var _ usecases.NotificationRecorder = (*PaymentNotificationLogRepository)(nil)

func (r *PaymentNotificationLogRepository) Record(ctx context.Context, entry usecases.NotificationEntry) error {
	model := &models.PaymentNotificationLogModel{
		OrderID:    entry.OrderID,
		AppTransID: entry.AppTransID,
		ZPTransID:  entry.ZPTransID,
		Payload:    payloadJSON(entry.Data),
		Verified:   entry.Verified,
		Outcome:    entry.Outcome,
		ReceivedAt: entry.ReceivedAt,
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record payment notification: %w", err)
	}
	return nil
}

func (r *PaymentNotificationLogRepository) ListByOrder(ctx context.Context, orderID uint) ([]usecases.NotificationEntry, error) {
	var rows []models.PaymentNotificationLogModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment notifications: %w", err)
	}

	entries := make([]usecases.NotificationEntry, len(rows))
	for i, row := range rows {
		entries[i] = usecases.NotificationEntry{
			OrderID:    row.OrderID,
			AppTransID: row.AppTransID,
			ZPTransID:  row.ZPTransID,
			Data:       payloadString(row.Payload),
			Verified:   row.Verified,
			Outcome:    row.Outcome,
			ReceivedAt: row.ReceivedAt,
		}
	}
	return entries, nil
}

// payloadJSON stores unverified garbage as a JSON string so the column
// always holds valid JSON.
func payloadJSON(data string) datatypes.JSON {
	if data == "" {
		return nil
	}
	if json.Valid([]byte(data)) {
		return datatypes.JSON(data)
	}
	quoted, _ := json.Marshal(data)
	return datatypes.JSON(quoted)
}

func payloadString(payload datatypes.JSON) string {
	if len(payload) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return s
	}
	return string(payload)
}
