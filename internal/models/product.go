package models

import (
	"time"
)

// Product is a marketplace item. AstrologerID is set when the product
// is sold on behalf of an astrologer, in which case the platform takes
// a commission out of the payout.
type Product struct {
	ID           uint   `gorm:"primarykey"`
	Name         string `gorm:"not null"`
	Description  string
	Price        int64 `gorm:"not null"`
	Stock        int   `gorm:"default:0"`
	AstrologerID *uint `gorm:"index"`
	Status       string `gorm:"default:'active'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
