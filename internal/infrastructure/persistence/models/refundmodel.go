package models

import (
	"time"

	"github.com/orris-inc/zlpay/internal/shared/constants"
)

type RefundModel struct {
	ID               uint              `gorm:"primaryKey"`
	OrderID          uint              `gorm:"index;not null"`
	Amount           int64             `gorm:"not null"`
	Reason           string            `gorm:"size:512;not null;default:''"`
	MerchantRefundID string            `gorm:"size:64;not null;default:''"`
	RemoteRefundID   string            `gorm:"size:64;not null;default:''"`
	Lines            []RefundLineModel `gorm:"foreignKey:RefundID"`
	CreatedAt        time.Time
}

func (RefundModel) TableName() string {
	return constants.TableOrderRefunds
}

type RefundLineModel struct {
	ID       uint `gorm:"primaryKey"`
	RefundID uint `gorm:"index;not null"`
	ItemID   *uint
	Name     string `gorm:"size:255;not null"`
	Subtotal int64  `gorm:"not null"`
}

func (RefundLineModel) TableName() string {
	return constants.TableRefundLines
}
