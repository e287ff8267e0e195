package repositories

import (
	"errors"

	"astromart/internal/models"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrEntryNotFound      = errors.New("ledger entry not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAstrologerNotFound = errors.New("astrologer not found")
	ErrSessionNotFound    = errors.New("session not found")
)

// WalletRepository persists wallet balances and the append-only ledger.
// Balance mutations are conditional single-statement updates so two
// concurrent transfers can never both pass a stale balance check.
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByOwner(ownerType string, ownerID uint) (*models.Wallet, error)

	// DebitIfSufficient decrements the balance only when it covers the
	// amount. Returns ErrInsufficientFunds otherwise.
	DebitIfSufficient(id uint, amount int64) error
	Credit(id uint, amount int64) error

	CreateEntry(entry *models.LedgerEntry) error
	GetEntryByReference(reference, direction string) (*models.LedgerEntry, error)
	GetEntries(walletID uint, limit, offset int) ([]models.LedgerEntry, error)
	GetTotalBalance() (int64, error)

	// ExecuteInTransaction runs fn against a transaction-scoped
	// repository; all writes commit or roll back together.
	ExecuteInTransaction(fn func(WalletRepository) error) error
}
