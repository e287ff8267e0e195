package ledger

import (
	"context"

	"astromart/internal/models"
)

// Service is the transactional core of the wallet subsystem. All
// balance mutations in the codebase go through it.
type Service interface {
	// Transfer atomically debits one wallet, credits the other and
	// writes the paired ledger entries. Either all four mutations
	// commit or none do.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)

	// Deposit credits externally injected funds.
	Deposit(ctx context.Context, req DepositRequest) (*models.LedgerEntry, error)

	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	GetWalletByOwner(ctx context.Context, ownerType string, ownerID uint) (*models.Wallet, error)
	EnsureWallet(ctx context.Context, ownerType string, ownerID uint) (*models.Wallet, error)
	GetEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, error)
}

// WalletCache is the read cache in front of wallet lookups. Balance
// mutations invalidate it; it never fronts session state.
type WalletCache interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, walletID uint) error
}
