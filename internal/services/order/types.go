package order

import (
	"time"
)

// Config carries the orchestrator's wiring: the platform wallet id
// resolved at startup and the commission the platform keeps out of
// astrologer payouts.
type Config struct {
	PlatformWalletID  uint
	CommissionPercent int64
}

// PlaceOrderInput is the order form as submitted by the storefront.
// Amounts are integer paise.
type PlaceOrderInput struct {
	UserID       uint
	Name         string
	City         string
	State        string
	Phone        string
	ProductID    uint
	Quantity     int
	DeliveryDate *time.Time
	TotalPrice   int64
}
