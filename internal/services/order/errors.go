package order

import (
	"errors"
	"fmt"
	"strings"
)

// Service errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrOrderCompleted   = errors.New("cannot cancel a completed order")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrPriceMismatch    = errors.New("total price does not match the product price")

	// ErrInsufficientFunds carries the user-facing wording from the
	// storefront; it is surfaced verbatim.
	ErrInsufficientFunds = errors.New("insufficient wallet balance, please add funds to your wallet")
)

// ValidationError names the required order fields that were missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}
