package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astromart/internal/models"
	"astromart/internal/repositories"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	maxRetries     = 3
	initialBackoff = 25 * time.Millisecond
)

type service struct {
	repo  repositories.WalletRepository
	cache WalletCache
}

// NewService creates the ledger service. Cache is optional.
func NewService(repo repositories.WalletRepository, cache WalletCache) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := validateTransfer(req); err != nil {
		return nil, err
	}

	var result *TransferResult
	err := runWithRetry(func() error {
		return s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
			res, err := applyTransfer(tx, req)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !result.Replayed {
		s.cache.InvalidateWallet(ctx, req.FromWalletID)
		s.cache.InvalidateWallet(ctx, req.ToWalletID)
	}
	return result, nil
}

// runWithRetry re-runs fn on serialization failures with exponential
// backoff, giving up with ErrConcurrentModification once the attempts
// are exhausted.
func runWithRetry(fn func() error) error {
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return ErrConcurrentModification
}

// applyTransfer runs inside one store transaction: idempotency check,
// conditional debit, credit and both entries commit or roll back as a
// unit. A half-applied transfer is an unrecoverable accounting error,
// so none of these steps may be split across round trips.
func applyTransfer(tx repositories.WalletRepository, req TransferRequest) (*TransferResult, error) {
	debit, err := tx.GetEntryByReference(req.Reference, models.DirectionDebit)
	if err == nil {
		credit, err := tx.GetEntryByReference(req.Reference, models.DirectionCredit)
		if err != nil {
			return nil, fmt.Errorf("ledger pair broken for reference %s: %w", req.Reference, err)
		}
		return &TransferResult{Debit: debit, Credit: credit, Replayed: true}, nil
	}
	if !errors.Is(err, repositories.ErrEntryNotFound) {
		return nil, err
	}

	if err := tx.DebitIfSufficient(req.FromWalletID, req.Amount); err != nil {
		return nil, err
	}
	if err := tx.Credit(req.ToWalletID, req.Amount); err != nil {
		return nil, err
	}

	from, to := req.FromWalletID, req.ToWalletID
	debit = &models.LedgerEntry{
		EntryID:              uuid.NewString(),
		WalletID:             from,
		Direction:            models.DirectionDebit,
		Amount:               req.Amount,
		Category:             req.Category,
		CounterpartyWalletID: &to,
		Reference:            req.Reference,
		Metadata:             models.NewJSON(req.Metadata),
	}
	credit := &models.LedgerEntry{
		EntryID:              uuid.NewString(),
		WalletID:             to,
		Direction:            models.DirectionCredit,
		Amount:               req.Amount,
		Category:             req.Category,
		CounterpartyWalletID: &from,
		Reference:            req.Reference,
		Metadata:             models.NewJSON(req.Metadata),
	}
	if err := tx.CreateEntry(debit); err != nil {
		return nil, err
	}
	if err := tx.CreateEntry(credit); err != nil {
		return nil, err
	}
	return &TransferResult{Debit: debit, Credit: credit}, nil
}

func (s *service) Deposit(ctx context.Context, req DepositRequest) (*models.LedgerEntry, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Reference == "" {
		return nil, ErrMissingReference
	}
	if !models.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	var entry *models.LedgerEntry
	err := runWithRetry(func() error {
		return s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
			existing, err := tx.GetEntryByReference(req.Reference, models.DirectionCredit)
			if err == nil {
				entry = existing
				return nil
			}
			if !errors.Is(err, repositories.ErrEntryNotFound) {
				return err
			}
			if err := tx.Credit(req.WalletID, req.Amount); err != nil {
				return err
			}
			entry = &models.LedgerEntry{
				EntryID:   uuid.NewString(),
				WalletID:  req.WalletID,
				Direction: models.DirectionCredit,
				Amount:    req.Amount,
				Category:  req.Category,
				Reference: req.Reference,
				Metadata:  models.NewJSON(req.Metadata),
			}
			return tx.CreateEntry(entry)
		})
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.cache.InvalidateWallet(ctx, req.WalletID)
	return entry, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	if wallet, err := s.cache.GetWallet(ctx, walletID); err == nil {
		return wallet, nil
	}
	wallet, err := s.repo.GetByID(walletID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.cache.SetWallet(ctx, wallet)
	return wallet, nil
}

func (s *service) GetWalletByOwner(ctx context.Context, ownerType string, ownerID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetByOwner(ownerType, ownerID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return wallet, nil
}

func (s *service) EnsureWallet(ctx context.Context, ownerType string, ownerID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetByOwner(ownerType, ownerID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, err
	}
	wallet = &models.Wallet{OwnerID: ownerID, OwnerType: ownerType}
	if err := s.repo.Create(wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) GetEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetEntries(walletID, limit, offset)
}

func validateTransfer(req TransferRequest) error {
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}
	if req.FromWalletID == req.ToWalletID {
		return ErrSameWallet
	}
	if req.Reference == "" {
		return ErrMissingReference
	}
	if !models.ValidCategory(req.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// isRetryable matches postgres serialization failures and deadlocks.
// Unique-constraint violations on the (reference, direction) index are
// also retried: the second attempt observes the winner's entries and
// replays them.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}
	return false
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, repositories.ErrWalletNotFound):
		return ErrWalletNotFound
	default:
		return err
	}
}

type noopCache struct{}

func (noopCache) GetWallet(context.Context, uint) (*models.Wallet, error) {
	return nil, errors.New("cache disabled")
}
func (noopCache) SetWallet(context.Context, *models.Wallet) error { return nil }
func (noopCache) InvalidateWallet(context.Context, uint) error { return nil }
