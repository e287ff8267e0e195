package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"astromart/internal/models"
	"astromart/internal/repositories"
	"astromart/internal/services/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The orchestrator is tested against a real ledger service running on
// an in-memory wallet store, so the money movements asserted here are
// the ones the composed system would actually make.

type fakeWalletRepo struct {
	wallets map[uint]models.Wallet
	entries []models.LedgerEntry
	nextID  uint
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: map[uint]models.Wallet{}}
}

func (f *fakeWalletRepo) seedWallet(ownerType string, ownerID uint, balance int64) *models.Wallet {
	w := models.Wallet{OwnerID: ownerID, OwnerType: ownerType, Balance: balance}
	f.nextID++
	w.ID = f.nextID
	f.wallets[w.ID] = w
	return &w
}

func (f *fakeWalletRepo) Create(w *models.Wallet) error {
	f.nextID++
	w.ID = f.nextID
	f.wallets[w.ID] = *w
	return nil
}

func (f *fakeWalletRepo) GetByID(id uint) (*models.Wallet, error) {
	w, ok := f.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return &w, nil
}

func (f *fakeWalletRepo) GetByOwner(ownerType string, ownerID uint) (*models.Wallet, error) {
	for _, w := range f.wallets {
		if w.OwnerType == ownerType && w.OwnerID == ownerID {
			cp := w
			return &cp, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (f *fakeWalletRepo) DebitIfSufficient(id uint, amount int64) error {
	w, ok := f.wallets[id]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	if w.Balance < amount {
		return repositories.ErrInsufficientFunds
	}
	w.Balance -= amount
	f.wallets[id] = w
	return nil
}

func (f *fakeWalletRepo) Credit(id uint, amount int64) error {
	w, ok := f.wallets[id]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	w.Balance += amount
	f.wallets[id] = w
	return nil
}

func (f *fakeWalletRepo) CreateEntry(e *models.LedgerEntry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeWalletRepo) GetEntryByReference(reference, direction string) (*models.LedgerEntry, error) {
	for i := range f.entries {
		if f.entries[i].Reference == reference && f.entries[i].Direction == direction {
			cp := f.entries[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrEntryNotFound
}

func (f *fakeWalletRepo) GetEntries(walletID uint, limit, offset int) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range f.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) GetTotalBalance() (int64, error) {
	var total int64
	for _, w := range f.wallets {
		total += w.Balance
	}
	return total, nil
}

func (f *fakeWalletRepo) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	walletSnap := make(map[uint]models.Wallet, len(f.wallets))
	for k, v := range f.wallets {
		walletSnap[k] = v
	}
	entrySnap := make([]models.LedgerEntry, len(f.entries))
	copy(entrySnap, f.entries)
	if err := fn(f); err != nil {
		f.wallets = walletSnap
		f.entries = entrySnap
		return err
	}
	return nil
}

type fakeUserRepo struct {
	users map[uint]models.User
}

func (f *fakeUserRepo) Create(u *models.User) error { f.users[u.ID] = *u; return nil }
func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}
func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByPhone(phone string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) Update(u *models.User) error { f.users[u.ID] = *u; return nil }
func (f *fakeUserRepo) IncrementTokenVersion(id uint) error { return nil }

type fakeProductRepo struct {
	products map[uint]models.Product
}

func (f *fakeProductRepo) Create(p *models.Product) error { f.products[p.ID] = *p; return nil }
func (f *fakeProductRepo) GetByID(id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repositories.ErrProductNotFound
	}
	return &p, nil
}

type fakeOrderRepo struct {
	orders    map[uint]models.Order
	nextID    uint
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo { return &fakeOrderRepo{orders: map[uint]models.Order{}} }

func (f *fakeOrderRepo) Create(o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	o.ID = f.nextID
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repositories.ErrOrderNotFound
	}
	return &o, nil
}

func (f *fakeOrderRepo) GetByUser(userID uint, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Update(o *models.Order) error {
	f.orders[o.ID] = *o
	return nil
}

type fakeProviderRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func (f *fakeProviderRepo) CreateAstrologer(a *models.Astrologer) error { return nil }
func (f *fakeProviderRepo) GetAstrologer(id uint) (*models.Astrologer, error) {
	return nil, repositories.ErrAstrologerNotFound
}
func (f *fakeProviderRepo) GetAstrologerForUpdate(id uint) (*models.Astrologer, error) {
	return nil, repositories.ErrAstrologerNotFound
}
func (f *fakeProviderRepo) UpdateAvailability(id uint, av models.Availability) error { return nil }
func (f *fakeProviderRepo) CreateSession(s *models.Session) error {
	f.sessions[s.SessionID] = *s
	return nil
}
func (f *fakeProviderRepo) GetSession(sessionID string) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return &s, nil
}
func (f *fakeProviderRepo) GetSessionForUpdate(sessionID string) (*models.Session, error) {
	return f.GetSession(sessionID)
}
func (f *fakeProviderRepo) UpdateSession(s *models.Session) error {
	f.sessions[s.SessionID] = *s
	return nil
}
func (f *fakeProviderRepo) CountActiveSessions(astrologerID uint, kind string) (int64, error) {
	return 0, nil
}
// ExecuteInTransaction serializes transactions the way the session row
// lock does in postgres; only the outer call locks so the inner
// repository methods stay usable from within the closure.
func (f *fakeProviderRepo) ExecuteInTransaction(fn func(repositories.ProviderRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]models.Session, len(f.sessions))
	for k, v := range f.sessions {
		snap[k] = v
	}
	if err := fn(f); err != nil {
		f.sessions = snap
		return err
	}
	return nil
}

type orderFixture struct {
	svc            Service
	walletRepo     *fakeWalletRepo
	orderRepo      *fakeOrderRepo
	providerRepo   *fakeProviderRepo
	userWallet     *models.Wallet
	platformWallet *models.Wallet
}

func newOrderFixture(t *testing.T, userBalance int64) *orderFixture {
	t.Helper()

	walletRepo := newFakeWalletRepo()
	userWallet := walletRepo.seedWallet(models.OwnerTypeUser, 1, userBalance)
	platformWallet := walletRepo.seedWallet(models.OwnerTypePlatform, 1, 0)

	userRepo := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Email: "asha@example.com", Name: "Asha", Phone: "9111111111", Role: models.RoleUser},
	}}
	productRepo := &fakeProductRepo{products: map[uint]models.Product{
		5: {ID: 5, Name: "Gemstone Pendant", Price: 30000},
	}}
	orderRepo := newFakeOrderRepo()
	providerRepo := &fakeProviderRepo{sessions: map[string]models.Session{}}

	svc := NewService(
		ledger.NewService(walletRepo, nil),
		userRepo,
		productRepo,
		orderRepo,
		providerRepo,
		Config{PlatformWalletID: platformWallet.ID, CommissionPercent: 20},
	)

	return &orderFixture{
		svc:            svc,
		walletRepo:     walletRepo,
		orderRepo:      orderRepo,
		providerRepo:   providerRepo,
		userWallet:     userWallet,
		platformWallet: platformWallet,
	}
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		UserID:     1,
		Name:       "Asha",
		City:       "Pune",
		State:      "Maharashtra",
		ProductID:  5,
		TotalPrice: 30000,
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	fx := newOrderFixture(t, 50000)

	placed, err := fx.svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, placed.Status)
	assert.NotEmpty(t, placed.TransactionRef)
	assert.Equal(t, 1, placed.Quantity)
	// Phone falls back to the account phone when the form omits it.
	assert.Equal(t, "9111111111", placed.Phone)

	user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
	assert.Equal(t, int64(20000), user.Balance)
	platform, _ := fx.walletRepo.GetByID(fx.platformWallet.ID)
	assert.Equal(t, int64(30000), platform.Balance)

	debit, err := fx.walletRepo.GetEntryByReference(placed.TransactionRef, models.DirectionDebit)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOrderPayment, debit.Category)
	_, err = fx.walletRepo.GetEntryByReference(placed.TransactionRef, models.DirectionCredit)
	assert.NoError(t, err)
}

func TestPlaceOrder_InsufficientFunds(t *testing.T) {
	fx := newOrderFixture(t, 10000)

	_, err := fx.svc.PlaceOrder(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "insufficient wallet balance, please add funds to your wallet", err.Error())

	// The refused order leaves no trace: no order row, no entries, both
	// balances as they were.
	assert.Empty(t, fx.orderRepo.orders)
	entries, _ := fx.walletRepo.GetEntries(fx.userWallet.ID, 10, 0)
	assert.Empty(t, entries)
	user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
	assert.Equal(t, int64(10000), user.Balance)
	platform, _ := fx.walletRepo.GetByID(fx.platformWallet.ID)
	assert.Equal(t, int64(0), platform.Balance)
}

func TestPlaceOrder_MissingFields(t *testing.T) {
	fx := newOrderFixture(t, 50000)

	input := validInput()
	input.Name = ""
	input.State = ""
	input.TotalPrice = 0

	_, err := fx.svc.PlaceOrder(context.Background(), input)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"name", "state", "total price"}, vErr.Missing)

	// Validation runs before any money moves.
	user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
	assert.Equal(t, int64(50000), user.Balance)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	fx := newOrderFixture(t, 50000)

	input := validInput()
	input.ProductID = 99
	_, err := fx.svc.PlaceOrder(context.Background(), input)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrder_PriceMismatch(t *testing.T) {
	fx := newOrderFixture(t, 50000)

	// A doctored total is refused before any money moves.
	input := validInput()
	input.TotalPrice = 1
	_, err := fx.svc.PlaceOrder(context.Background(), input)
	assert.ErrorIs(t, err, ErrPriceMismatch)

	assert.Empty(t, fx.orderRepo.orders)
	entries, _ := fx.walletRepo.GetEntries(fx.userWallet.ID, 10, 0)
	assert.Empty(t, entries)
	user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
	assert.Equal(t, int64(50000), user.Balance)

	// The check scales with quantity.
	input = validInput()
	input.Quantity = 2
	input.TotalPrice = 30000
	_, err = fx.svc.PlaceOrder(context.Background(), input)
	assert.ErrorIs(t, err, ErrPriceMismatch)

	input.TotalPrice = 60000
	placed, err := fx.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 2, placed.Quantity)
}

func TestPlaceOrder_ReversesWhenOrderWriteFails(t *testing.T) {
	fx := newOrderFixture(t, 50000)
	fx.orderRepo.createErr = errors.New("connection reset")

	_, err := fx.svc.PlaceOrder(context.Background(), validInput())
	require.Error(t, err)

	// The payment was compensated: the user is whole again and the
	// reversal pair sits next to the original in the ledger.
	user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
	assert.Equal(t, int64(50000), user.Balance)
	platform, _ := fx.walletRepo.GetByID(fx.platformWallet.ID)
	assert.Equal(t, int64(0), platform.Balance)
	entries, _ := fx.walletRepo.GetEntries(fx.userWallet.ID, 10, 0)
	assert.Len(t, entries, 2)
}

func seedActiveSession(fx *orderFixture, ratePaise int64) models.Session {
	sess := models.Session{
		SessionID:    "sess-1",
		AstrologerID: 7,
		UserID:       1,
		Kind:         models.SessionKindChat,
		Status:       models.SessionStatusActive,
		RatePaise:    ratePaise,
	}
	fx.providerRepo.sessions[sess.SessionID] = sess
	return sess
}

func TestMeterSession(t *testing.T) {
	t.Run("bills elapsed time rounded up to full minutes", func(t *testing.T) {
		fx := newOrderFixture(t, 50000)
		seedActiveSession(fx, 1500)

		result, err := fx.svc.MeterSession(context.Background(), "sess-1", 90*time.Second)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(3000), result.Debit.Amount)
		assert.Equal(t, models.CategoryChat, result.Debit.Category)

		user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
		assert.Equal(t, int64(47000), user.Balance)

		sess, _ := fx.providerRepo.GetSession("sess-1")
		assert.Equal(t, 2, sess.BilledMinutes)
	})

	t.Run("a repeated tick for the same window bills nothing", func(t *testing.T) {
		fx := newOrderFixture(t, 50000)
		seedActiveSession(fx, 1500)

		_, err := fx.svc.MeterSession(context.Background(), "sess-1", 90*time.Second)
		require.NoError(t, err)
		result, err := fx.svc.MeterSession(context.Background(), "sess-1", 90*time.Second)
		require.NoError(t, err)
		assert.Nil(t, result)

		user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
		assert.Equal(t, int64(47000), user.Balance)
	})

	t.Run("bills only the delta past the watermark", func(t *testing.T) {
		fx := newOrderFixture(t, 50000)
		seedActiveSession(fx, 1500)

		_, err := fx.svc.MeterSession(context.Background(), "sess-1", 90*time.Second)
		require.NoError(t, err)
		result, err := fx.svc.MeterSession(context.Background(), "sess-1", 150*time.Second)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(1500), result.Debit.Amount)

		sess, _ := fx.providerRepo.GetSession("sess-1")
		assert.Equal(t, 3, sess.BilledMinutes)
	})

	t.Run("only active sessions are metered", func(t *testing.T) {
		fx := newOrderFixture(t, 50000)
		sess := seedActiveSession(fx, 1500)
		sess.Status = models.SessionStatusEnded
		fx.providerRepo.sessions[sess.SessionID] = sess

		_, err := fx.svc.MeterSession(context.Background(), "sess-1", 60*time.Second)
		assert.ErrorIs(t, err, ErrSessionNotActive)

		_, err = fx.svc.MeterSession(context.Background(), "no-such", 60*time.Second)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

// Two ticks racing with different elapsed readings must bill the span
// once: whichever claims the watermark first wins it, and the other
// bills only the remainder (or nothing).
func TestMeterSession_ConcurrentTicks(t *testing.T) {
	fx := newOrderFixture(t, 50000)
	seedActiveSession(fx, 1500)

	elapsed := []time.Duration{2 * time.Minute, 3 * time.Minute}
	errs := make(chan error, len(elapsed))
	var wg sync.WaitGroup
	for _, e := range elapsed {
		wg.Add(1)
		go func(e time.Duration) {
			defer wg.Done()
			_, err := fx.svc.MeterSession(context.Background(), "sess-1", e)
			errs <- err
		}(e)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	// Exactly three minutes paid for, regardless of interleaving.
	user, _ := fx.walletRepo.GetByID(fx.userWallet.ID)
	assert.Equal(t, int64(45500), user.Balance)
	platform, _ := fx.walletRepo.GetByID(fx.platformWallet.ID)
	assert.Equal(t, int64(4500), platform.Balance)
	sess, _ := fx.providerRepo.GetSession("sess-1")
	assert.Equal(t, 3, sess.BilledMinutes)
}

func TestPayoutAstrologer(t *testing.T) {
	fx := newOrderFixture(t, 0)
	// Fund the platform as if prior session charges had accumulated.
	require.NoError(t, fx.walletRepo.Credit(fx.platformWallet.ID, 100000))

	require.NoError(t, fx.svc.PayoutAstrologer(context.Background(), 7, 10000))

	// Gross lands with the astrologer, then the 20% commission comes
	// straight back.
	astroWallet, err := fx.walletRepo.GetByOwner(models.OwnerTypeAstrologer, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), astroWallet.Balance)
	platform, _ := fx.walletRepo.GetByID(fx.platformWallet.ID)
	assert.Equal(t, int64(92000), platform.Balance)

	entries, _ := fx.walletRepo.GetEntries(astroWallet.ID, 10, 0)
	require.Len(t, entries, 2)
	categories := []string{entries[0].Category, entries[1].Category}
	assert.Contains(t, categories, models.CategoryPayout)
	assert.Contains(t, categories, models.CategoryServiceCommission)

	assert.ErrorIs(t, fx.svc.PayoutAstrologer(context.Background(), 7, 0), ErrInvalidAmount)
}

func TestCancelOrder(t *testing.T) {
	fx := newOrderFixture(t, 50000)
	placed, err := fx.svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)

	cancelled, err := fx.svc.CancelOrder(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	// Cancelling again is a no-op.
	again, err := fx.svc.CancelOrder(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, again.Status)

	completed := *cancelled
	completed.Status = models.OrderStatusComplete
	require.NoError(t, fx.orderRepo.Update(&completed))
	_, err = fx.svc.CancelOrder(context.Background(), completed.ID)
	assert.ErrorIs(t, err, ErrOrderCompleted)
}
