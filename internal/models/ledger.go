package models

import (
	"time"
)

// Entry directions
const (
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// Entry categories
const (
	CategoryOrderPayment      = "order_payment"
	CategoryCall              = "call"
	CategoryChat              = "chat"
	CategoryWalletRecharge    = "wallet_recharge"
	CategoryServiceCommission = "service_commission"
	CategoryPayout            = "payout"
)

// LedgerEntry is one side of a money movement. Entries are append-only:
// nothing in the codebase updates or deletes them once written. Every
// transfer produces exactly one debit and one credit sharing a
// Reference; the unique index on (reference, direction) is what makes
// a replayed reference a no-op instead of a double charge.
type LedgerEntry struct {
	ID                   uint   `gorm:"primarykey"`
	EntryID              string `gorm:"uniqueIndex;not null"`
	WalletID             uint   `gorm:"index;not null"`
	Direction            string `gorm:"uniqueIndex:idx_ledger_ref_dir;not null"`
	Amount               int64  `gorm:"not null"`
	Category             string `gorm:"not null"`
	CounterpartyWalletID *uint
	Reference            string `gorm:"uniqueIndex:idx_ledger_ref_dir;not null"`
	Metadata             JSON   `gorm:"type:jsonb"`
	CreatedAt            time.Time
}

// ValidCategory reports whether c is a known ledger category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryOrderPayment, CategoryCall, CategoryChat,
		CategoryWalletRecharge, CategoryServiceCommission, CategoryPayout:
		return true
	}
	return false
}
