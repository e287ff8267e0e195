package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrSameWallet             = errors.New("cannot transfer to the same wallet")
	ErrMissingReference       = errors.New("transfer reference is required")
	ErrInvalidCategory        = errors.New("invalid ledger category")
	ErrInsufficientFunds      = errors.New("insufficient wallet balance")
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrConcurrentModification = errors.New("transfer aborted after concurrent modification retries")
)
