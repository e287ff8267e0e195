// Package recharge tops up user wallets from an external card payment.
// The charge is collected through Stripe; only a succeeded payment
// intent is credited to the wallet, as a wallet_recharge deposit keyed
// by the intent id so a repeated webhook or retry never double-credits.
package recharge

import (
	"context"
	"errors"
	"fmt"

	"astromart/internal/config"
	"astromart/internal/models"
	"astromart/internal/services/ledger"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

var (
	ErrInvalidAmount = errors.New("recharge amount must be positive")
	ErrPaymentFailed = errors.New("card payment was not completed")
)

type Service interface {
	Recharge(ctx context.Context, userID uint, amountPaise int64, paymentMethodID string) (*models.LedgerEntry, error)
}

type service struct {
	ledger ledger.Service
}

func NewService(ledgerSvc ledger.Service) Service {
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")
	return &service{ledger: ledgerSvc}
}

func (s *service) Recharge(ctx context.Context, userID uint, amountPaise int64, paymentMethodID string) (*models.LedgerEntry, error) {
	if amountPaise <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.ledger.EnsureWallet(ctx, models.OwnerTypeUser, userID)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountPaise),
		Currency:      stripe.String(string(stripe.CurrencyINR)),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	params.AddMetadata("user_id", fmt.Sprintf("%d", userID))

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment failed: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, ErrPaymentFailed
	}

	return s.ledger.Deposit(ctx, ledger.DepositRequest{
		WalletID:  wallet.ID,
		Amount:    amountPaise,
		Category:  models.CategoryWalletRecharge,
		Reference: "RCHG_" + intent.ID,
		Metadata: map[string]interface{}{
			"user_id":        userID,
			"payment_intent": intent.ID,
		},
	})
}
