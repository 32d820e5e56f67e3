package db

import (
	"gorm.io/gorm"
)

// MaxPageSize caps admin listings.
const MaxPageSize = 100

// StatusIn filters rows by their status column.
//
// Example usage:
//
//	db.Model(&models.OrderModel{}).Scopes(db.StatusIn("pending", "failed")).Count(&count)
func StatusIn(statuses ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(statuses) == 0 {
			return db
		}
		return db.Where("status IN ?", statuses)
	}
}

// Paginate applies a one-based page with the size clamped to MaxPageSize.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > MaxPageSize {
			pageSize = 20
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

func NewestFirst() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("id DESC")
	}
}
