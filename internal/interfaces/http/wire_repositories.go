package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/zlpay/internal/infrastructure/repository"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	orderRepo           *repository.OrderRepository
	productRepo         *repository.ProductRepository
	notificationLogRepo *repository.PaymentNotificationLogRepository
}

func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		orderRepo:           repository.NewOrderRepository(db),
		productRepo:         repository.NewProductRepository(db),
		notificationLogRepo: repository.NewPaymentNotificationLogRepository(db),
	}
}
