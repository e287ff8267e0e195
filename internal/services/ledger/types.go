package ledger

import (
	"astromart/internal/models"
)

// TransferRequest moves Amount from one wallet to another. Reference
// is caller-supplied and makes the transfer idempotent: replaying the
// same reference returns the stored entry pair without re-applying.
type TransferRequest struct {
	FromWalletID uint
	ToWalletID   uint
	Amount       int64
	Category     string
	Reference    string
	Metadata     map[string]interface{}
}

// DepositRequest injects external funds (a recharge) into a wallet.
// It produces a single credit entry with no counterparty.
type DepositRequest struct {
	WalletID  uint
	Amount    int64
	Category  string
	Reference string
	Metadata  map[string]interface{}
}

// TransferResult carries the paired entries of a committed transfer.
// Replayed is true when the reference had already been applied.
type TransferResult struct {
	Debit    *models.LedgerEntry
	Credit   *models.LedgerEntry
	Replayed bool
}
