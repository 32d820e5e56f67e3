package models

import (
	"time"

	"github.com/orris-inc/zlpay/internal/shared/constants"
)

type OrderModel struct {
	ID            uint    `gorm:"primaryKey"`
	OrderKey      string  `gorm:"uniqueIndex;size:64;not null"`
	Status        string  `gorm:"size:20;not null;index"`
	Total         int64   `gorm:"not null"`
	Currency      string  `gorm:"size:10;not null"`
	PaymentMethod string  `gorm:"size:20;not null"`
	CustomerUser  string  `gorm:"size:128;not null"`
	TransactionID *string `gorm:"size:64"`
	PaidAt        *time.Time
	Version       int              `gorm:"not null;default:0"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string {
	return constants.TableOrders
}

type OrderItemModel struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID *uint
	Name      string `gorm:"size:255;not null"`
	Quantity  int    `gorm:"not null"`
	Total     int64  `gorm:"not null"`
}

func (OrderItemModel) TableName() string {
	return constants.TableOrderItems
}

// OrderMetaModel is a key/value row; (order_id, meta_key) is unique.
type OrderMetaModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"uniqueIndex:uk_order_meta_order_key;not null"`
	MetaKey   string `gorm:"uniqueIndex:uk_order_meta_order_key;size:64;not null"`
	MetaValue string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (OrderMetaModel) TableName() string {
	return constants.TableOrderMeta
}

type OrderNoteModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"index;not null"`
	Note      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (OrderNoteModel) TableName() string {
	return constants.TableOrderNotes
}

type ProductModel struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	StockQuantity *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ProductModel) TableName() string {
	return constants.TableProducts
}
