// Package order composes the ledger with domain actions: paying for a
// product order, metering a live session and settling astrologer
// earnings. It is the only caller of ledger transfers.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"astromart/internal/models"
	"astromart/internal/repositories"
	"astromart/internal/services/ledger"
	"astromart/internal/validation"

	"github.com/google/uuid"
)

type Service interface {
	// PlaceOrder validates the order form, moves the price from the
	// user's wallet to the platform wallet and only then writes the
	// order record. No order is ever marked paid without its transfer.
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)

	// MeterSession bills an active session up to the elapsed time,
	// rounded up to the next full minute. Safe to call repeatedly on a
	// cadence; each minute watermark is billed at most once.
	MeterSession(ctx context.Context, sessionID string, elapsed time.Duration) (*ledger.TransferResult, error)

	// PayoutAstrologer settles gross earnings: the platform pays the
	// astrologer, then takes its commission back as a distinct
	// service_commission transfer.
	PayoutAstrologer(ctx context.Context, astrologerID uint, gross int64) error

	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uint, limit, offset int) ([]models.Order, error)
	CancelOrder(ctx context.Context, id uint) (*models.Order, error)
}

type service struct {
	ledger   ledger.Service
	users    repositories.UserRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	provider repositories.ProviderRepository
	config   Config
}

func NewService(
	ledgerSvc ledger.Service,
	users repositories.UserRepository,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	provider repositories.ProviderRepository,
	config Config,
) Service {
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if config.PlatformWalletID == 0 {
		panic("platform wallet id is required")
	}
	return &service{
		ledger:   ledgerSvc,
		users:    users,
		products: products,
		orders:   orders,
		provider: provider,
		config:   config,
	}
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	missing := validation.MissingOrderFields(input.Name, input.City, input.State, input.ProductID, input.TotalPrice)
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	if input.TotalPrice < 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.users.GetByID(input.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	product, err := s.products.GetByID(input.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	// The submitted total is checked against the catalog price, not
	// trusted from the client.
	if input.TotalPrice != product.Price*int64(quantity) {
		return nil, ErrPriceMismatch
	}
	userWallet, err := s.ledger.GetWalletByOwner(ctx, models.OwnerTypeUser, user.ID)
	if err != nil {
		return nil, err
	}

	reference := "ORD_" + uuid.NewString()
	_, err = s.ledger.Transfer(ctx, ledger.TransferRequest{
		FromWalletID: userWallet.ID,
		ToWalletID:   s.config.PlatformWalletID,
		Amount:       input.TotalPrice,
		Category:     models.CategoryOrderPayment,
		Reference:    reference,
		Metadata: map[string]interface{}{
			"user_id":    user.ID,
			"product_id": input.ProductID,
		},
	})
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	phone := input.Phone
	if phone == "" {
		phone = user.Phone
	}
	newOrder := &models.Order{
		UserID:         user.ID,
		ProductID:      input.ProductID,
		Name:           input.Name,
		City:           input.City,
		State:          input.State,
		Phone:          phone,
		Quantity:       quantity,
		TotalPrice:     input.TotalPrice,
		DeliveryDate:   input.DeliveryDate,
		Status:         models.OrderStatusPaid,
		TransactionRef: reference,
	}
	if err := s.orders.Create(newOrder); err != nil {
		// The payment committed but the order record did not: reverse
		// the transfer so no money moves without an order to explain it.
		if _, rbErr := s.ledger.Transfer(ctx, ledger.TransferRequest{
			FromWalletID: s.config.PlatformWalletID,
			ToWalletID:   userWallet.ID,
			Amount:       input.TotalPrice,
			Category:     models.CategoryOrderPayment,
			Reference:    reference + "_RVSL",
			Metadata:     map[string]interface{}{"reversal_of": reference},
		}); rbErr != nil {
			return nil, fmt.Errorf("order creation failed and reversal failed: %v, %v", err, rbErr)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return newOrder, nil
}

func (s *service) MeterSession(ctx context.Context, sessionID string, elapsed time.Duration) (*ledger.TransferResult, error) {
	var result *ledger.TransferResult
	err := s.provider.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		// The session row lock serializes concurrent ticks: the
		// watermark is read, the delta billed and the watermark
		// advanced all under one lock, so no two ticks can bill from
		// the same stale watermark.
		sess, err := tx.GetSessionForUpdate(sessionID)
		if err != nil {
			return err
		}
		if sess.Status != models.SessionStatusActive {
			return ErrSessionNotActive
		}

		minutes := billableMinutes(elapsed)
		if minutes <= sess.BilledMinutes {
			return nil
		}
		owed := int64(minutes-sess.BilledMinutes) * sess.RatePaise
		if owed <= 0 {
			return nil
		}

		userWallet, err := s.ledger.GetWalletByOwner(ctx, models.OwnerTypeUser, sess.UserID)
		if err != nil {
			return err
		}

		// The reference encodes the minute watermark. A failed transfer
		// rolls the watermark claim back with it; if the watermark
		// write is lost after the transfer commits, the next tick
		// recomputes the same watermark and the transfer replays the
		// stored pair instead of charging twice.
		res, err := s.ledger.Transfer(ctx, ledger.TransferRequest{
			FromWalletID: userWallet.ID,
			ToWalletID:   s.config.PlatformWalletID,
			Amount:       owed,
			Category:     sess.Kind,
			Reference:    fmt.Sprintf("MTR_%s_%d", sess.SessionID, minutes),
			Metadata: map[string]interface{}{
				"session_id":     sess.SessionID,
				"billed_minutes": minutes,
			},
		})
		if err != nil {
			return err
		}

		sess.BilledMinutes = minutes
		if err := tx.UpdateSession(sess); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *service) PayoutAstrologer(ctx context.Context, astrologerID uint, gross int64) error {
	if gross <= 0 {
		return ErrInvalidAmount
	}
	wallet, err := s.ledger.EnsureWallet(ctx, models.OwnerTypeAstrologer, astrologerID)
	if err != nil {
		return err
	}

	payoutRef := "PAYOUT_" + uuid.NewString()
	if _, err := s.ledger.Transfer(ctx, ledger.TransferRequest{
		FromWalletID: s.config.PlatformWalletID,
		ToWalletID:   wallet.ID,
		Amount:       gross,
		Category:     models.CategoryPayout,
		Reference:    payoutRef,
		Metadata:     map[string]interface{}{"astrologer_id": astrologerID},
	}); err != nil {
		return err
	}

	commission := gross * s.config.CommissionPercent / 100
	if commission <= 0 {
		return nil
	}
	if _, err := s.ledger.Transfer(ctx, ledger.TransferRequest{
		FromWalletID: wallet.ID,
		ToWalletID:   s.config.PlatformWalletID,
		Amount:       commission,
		Category:     models.CategoryServiceCommission,
		Reference:    "COMM_" + uuid.NewString(),
		Metadata: map[string]interface{}{
			"astrologer_id": astrologerID,
			"payout_ref":    payoutRef,
		},
	}); err != nil {
		// The gross payout stands; the commission claw is retried by
		// the settlement job on the next run.
		log.Printf("commission transfer failed for payout %s: %v", payoutRef, err)
		return err
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.orders.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uint, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orders.GetByUser(userID, limit, offset)
}

func (s *service) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.orders.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.Status == models.OrderStatusComplete {
		return nil, ErrOrderCompleted
	}
	if o.Status == models.OrderStatusCancelled {
		return o, nil
	}
	now := time.Now()
	o.Status = models.OrderStatusCancelled
	o.CancelledAt = &now
	if err := s.orders.Update(o); err != nil {
		return nil, err
	}
	return o, nil
}

// billableMinutes rounds elapsed time up to the next full minute.
func billableMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int((elapsed + time.Minute - 1) / time.Minute)
}
