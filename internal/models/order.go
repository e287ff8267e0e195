package models

import (
	"time"
)

// Order statuses
const (
	OrderStatusPaid      = "paid"
	OrderStatusComplete  = "complete"
	OrderStatusCancelled = "cancelled"
)

// Order is a product purchase paid from the user's wallet. An order is
// only ever written with status paid and a TransactionRef pointing at
// the ledger transfer that funded it.
type Order struct {
	ID             uint   `gorm:"primarykey"`
	UserID         uint   `gorm:"index;not null"`
	ProductID      uint   `gorm:"not null"`
	Name           string `gorm:"not null"`
	City           string `gorm:"not null"`
	State          string `gorm:"not null"`
	Phone          string
	Quantity       int    `gorm:"default:1"`
	TotalPrice     int64  `gorm:"not null"`
	DeliveryDate   *time.Time
	Status         string `gorm:"not null;default:'paid'"`
	TransactionRef string `gorm:"index;not null"`
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
