package models

import (
	"time"
)

// Wallet owner kinds
const (
	OwnerTypeUser       = "user"
	OwnerTypePlatform   = "platform"
	OwnerTypeAstrologer = "astrologer"
)

// Wallet holds a balance in integer minor units (paise). Balances are
// only mutated through the ledger service; a committed transfer never
// leaves a wallet negative.
type Wallet struct {
	ID        uint   `gorm:"primarykey"`
	OwnerID   uint   `gorm:"uniqueIndex:idx_wallet_owner;not null"`
	OwnerType string `gorm:"uniqueIndex:idx_wallet_owner;not null"`
	Balance   int64  `gorm:"not null;default:0"`
	Currency  string `gorm:"default:'INR'"`
	Status    string `gorm:"default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
