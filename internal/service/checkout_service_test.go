package service

import (
	"context"
	"encoding/json"
	"testing"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/internal/core/ports/mocks"
	"gameserver-market/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type checkoutTestDeps struct {
	svc          *CheckoutServiceImpl
	ledger       *mocks.MockLedgerService
	catalog      *mocks.MockCatalogService
	orderRepo    *mocks.MockOrderRepository
	idempRepo    *mocks.MockIdempotencyRepository
	idempCache   *mocks.MockIdempotencyCache
	settingsRepo *mocks.MockSettingsRepository
	transactor   *mocks.MockDBTransactor
	ctrl         *gomock.Controller
}

func setupCheckoutService(t *testing.T) *checkoutTestDeps {
	ctrl := gomock.NewController(t)
	d := &checkoutTestDeps{
		ledger:       mocks.NewMockLedgerService(ctrl),
		catalog:      mocks.NewMockCatalogService(ctrl),
		orderRepo:    mocks.NewMockOrderRepository(ctrl),
		idempRepo:    mocks.NewMockIdempotencyRepository(ctrl),
		idempCache:   mocks.NewMockIdempotencyCache(ctrl),
		settingsRepo: mocks.NewMockSettingsRepository(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewCheckoutService(
		d.ledger, d.catalog, d.orderRepo, d.idempRepo, d.idempCache,
		d.settingsRepo, d.transactor, zerolog.Nop(),
	)
	return d
}

func testCartRequest() ports.CheckoutRequest {
	return ports.CheckoutRequest{
		AccountID:      7,
		Items:          []ports.CartItem{{ProductID: 1, Quantity: 2}},
		IdempotencyKey: "client-key-123",
		ClientIP:       "1.2.3.4",
	}
}

func testLineItems() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: 1, Title: "VIP Gold", Quantity: 2, UnitPrice: 10000},
	}
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := testCartRequest()
	idempKey := domain.BuildCheckoutKey(7, "client-key-123")

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(true, nil)
	// Redis cache miss
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	// DB idempotency miss
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	// Price resolution from catalog
	d.catalog.EXPECT().ResolveItems(ctx, req.Items).Return(testLineItems(), nil)
	// Begin tx
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Atomic debit: 2 x 10000
	d.ledger.EXPECT().DebitInTx(ctx, tx, int64(7), int64(20000), gomock.Any()).Return(&ports.BalanceMutation{
		NewBalance:  30000,
		Transaction: &domain.Transaction{ID: 42, Amount: -20000, Kind: domain.TransactionKindPurchaseDebit},
	}, nil)
	// Create order
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			o.ID = 3
			return nil
		})
	// Save idempotency record
	d.idempRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	// Cache in Redis
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	order, err := d.svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.ID)
	assert.Equal(t, int64(20000), order.TotalPrice)
	assert.Equal(t, int64(42), order.TransactionID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestCheckoutService_Checkout_IdempotentReplayFromCache(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testCartRequest()
	idempKey := domain.BuildCheckoutKey(7, "client-key-123")

	cached := &domain.Order{ID: 3, AccountID: 7, TotalPrice: 20000, Status: domain.OrderStatusPending}
	cachedJSON, err := json.Marshal(cached)
	require.NoError(t, err)

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(true, nil)
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(cachedJSON, nil)
	// No debit, no order creation: the original response is replayed.

	order, err := d.svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.ID)
	assert.Equal(t, int64(20000), order.TotalPrice)
}

func TestCheckoutService_Checkout_IdempotentReplayFromDB(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testCartRequest()
	idempKey := domain.BuildCheckoutKey(7, "client-key-123")

	cached := &domain.Order{ID: 3, AccountID: 7, TotalPrice: 20000}
	cachedJSON, err := json.Marshal(cached)
	require.NoError(t, err)

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(true, nil)
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(&domain.IdempotencyRecord{
		Key:          idempKey,
		OrderID:      3,
		ResponseJSON: cachedJSON,
	}, nil)

	order, err := d.svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.ID)
}

func TestCheckoutService_Checkout_EmptyCart(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testCartRequest()
	req.Items = nil

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(true, nil)

	_, err := d.svc.Checkout(ctx, req)
	assert.Equal(t, "ORD_001", appErrorCode(t, err))
}

func TestCheckoutService_Checkout_MissingIdempotencyKey(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testCartRequest()
	req.IdempotencyKey = ""

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(true, nil)

	_, err := d.svc.Checkout(ctx, req)
	assert.Error(t, err)
}

func TestCheckoutService_Checkout_SiteDisabled(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(false, nil)

	_, err := d.svc.Checkout(ctx, testCartRequest())
	assert.Equal(t, "SYS_004", appErrorCode(t, err))
}

func TestCheckoutService_Checkout_ConcurrentDuplicateKey(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := testCartRequest()
	idempKey := domain.BuildCheckoutKey(7, "client-key-123")

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(true, nil)
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.catalog.EXPECT().ResolveItems(ctx, req.Items).Return(testLineItems(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().DebitInTx(ctx, tx, int64(7), int64(20000), gomock.Any()).Return(&ports.BalanceMutation{
		NewBalance:  30000,
		Transaction: &domain.Transaction{ID: 42},
	}, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	// A racing request committed the same key first.
	d.idempRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(ports.ErrDuplicateKey)

	_, err := d.svc.Checkout(ctx, req)
	assert.Equal(t, "SYS_003", appErrorCode(t, err))
}

func TestCheckoutService_Checkout_InsufficientFundsPropagates(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := testCartRequest()
	idempKey := domain.BuildCheckoutKey(7, "client-key-123")

	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(true, nil)
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.catalog.EXPECT().ResolveItems(ctx, req.Items).Return(testLineItems(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().DebitInTx(ctx, tx, int64(7), int64(20000), gomock.Any()).
		Return(nil, apperror.ErrInsufficientFunds())

	_, err := d.svc.Checkout(ctx, req)
	assert.Equal(t, "LED_001", appErrorCode(t, err))
}

func TestCheckoutService_GetOrder_OwnOrder(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.orderRepo.EXPECT().GetByID(ctx, int64(3)).Return(&domain.Order{ID: 3, AccountID: 7}, nil)

	order, err := d.svc.GetOrder(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.ID)
}

func TestCheckoutService_GetOrder_ForeignOrderHidden(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.orderRepo.EXPECT().GetByID(ctx, int64(3)).Return(&domain.Order{ID: 3, AccountID: 8}, nil)

	_, err := d.svc.GetOrder(ctx, 7, 3)
	assert.Equal(t, "LED_003", appErrorCode(t, err))
}

func TestCheckoutService_SiteEnabled(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().SiteEnabled(ctx).Return(false, nil)

	enabled, err := d.svc.SiteEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}
