package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/zlpay/internal/shared/constants"
)

// PaymentNotificationLogModel keeps every provider callback, verified or not.
type PaymentNotificationLogModel struct {
	ID         uint           `gorm:"primaryKey"`
	UUID       string         `gorm:"column:uuid;uniqueIndex;size:36;not null"`
	OrderID    uint           `gorm:"index;not null;default:0"`
	AppTransID string         `gorm:"size:64;not null;default:''"`
	ZPTransID  string         `gorm:"column:zp_trans_id;size:64;not null;default:''"`
	Payload    datatypes.JSON `gorm:"type:json"`
	Verified   bool           `gorm:"not null;default:false"`
	Outcome    string         `gorm:"size:32;not null"`
	ReceivedAt time.Time      `gorm:"not null"`
}

func (PaymentNotificationLogModel) TableName() string {
	return constants.TablePaymentNotificationLogs
}

func (m *PaymentNotificationLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.NewString()
	}
	return nil
}
