package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"

	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// CheckoutServiceImpl implements ports.CheckoutService. A checkout is one
// atomic unit: purchase debit, order record and idempotency record commit
// together or not at all.
type CheckoutServiceImpl struct {
	ledger       ports.LedgerService
	catalog      ports.CatalogService
	orderRepo    ports.OrderRepository
	idempRepo    ports.IdempotencyRepository
	idempCache   ports.IdempotencyCache
	settingsRepo ports.SettingsRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	ledger ports.LedgerService,
	catalog ports.CatalogService,
	orderRepo ports.OrderRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	settingsRepo ports.SettingsRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		ledger:       ledger,
		catalog:      catalog,
		orderRepo:    orderRepo,
		idempRepo:    idempRepo,
		idempCache:   idempCache,
		settingsRepo: settingsRepo,
		transactor:   transactor,
		log:          log,
	}
}

// Checkout converts a cart into a fulfilled debit plus order record.
// Submitting the same idempotency key again returns the original order
// without a second debit.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, req ports.CheckoutRequest) (*domain.Order, error) {
	enabled, err := s.settingsRepo.SiteEnabled(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("site status: %w", err))
	}
	if !enabled {
		return nil, apperror.ErrSiteDisabled()
	}

	if len(req.Items) == 0 {
		return nil, apperror.ErrEmptyCart()
	}
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("idempotency key is required")
	}

	idempKey := domain.BuildCheckoutKey(req.AccountID, req.IdempotencyKey)

	// Layer 1: Redis idempotency check
	cached, err := s.idempCache.Get(ctx, idempKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return s.unmarshalCachedOrder(cached)
	}

	// Layer 2: DB idempotency check
	rec, err := s.idempRepo.Get(ctx, idempKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if rec != nil {
		return s.unmarshalCachedOrder(rec.ResponseJSON)
	}

	// Price the cart from the catalog. Client-sent prices are never trusted.
	lineItems, err := s.catalog.ResolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	total, err := domain.ComputeTotal(lineItems)
	if err != nil {
		return nil, mapTotalError(err)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	mutation, err := s.ledger.DebitInTx(ctx, dbTx, req.AccountID, total, orderDescription(lineItems))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		AccountID:     req.AccountID,
		Items:         lineItems,
		TotalPrice:    total,
		TransactionID: mutation.Transaction.ID,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
	}

	respJSON, err := json.Marshal(order)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}

	idempRec := &domain.IdempotencyRecord{
		Key:          idempKey,
		OrderID:      order.ID,
		ResponseJSON: respJSON,
		CreatedAt:    now,
	}
	if err := s.idempRepo.Create(ctx, dbTx, idempRec); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			// A racing request with the same key committed first. Nothing was
			// debited here; the whole checkout is safe to retry.
			return nil, apperror.ErrConcurrencyConflict()
		}
		return nil, apperror.InternalError(fmt.Errorf("save idempotency record: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Int64("account_id", req.AccountID).
		Int64("total", total).
		Int64("new_balance", mutation.NewBalance).
		Str("ip", req.ClientIP).
		Msg("checkout completed")

	return order, nil
}

// SiteEnabled reports the storefront switch so clients can show a closed
// banner instead of failing at checkout.
func (s *CheckoutServiceImpl) SiteEnabled(ctx context.Context) (bool, error) {
	enabled, err := s.settingsRepo.SiteEnabled(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("site status: %w", err))
	}
	return enabled, nil
}

// GetOrder fetches one of the account's own orders.
func (s *CheckoutServiceImpl) GetOrder(ctx context.Context, accountID, orderID int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if order == nil || order.AccountID != accountID {
		// Foreign orders are indistinguishable from missing ones.
		return nil, apperror.ErrNotFound("order")
	}
	return order, nil
}

func (s *CheckoutServiceImpl) unmarshalCachedOrder(data []byte) (*domain.Order, error) {
	order := &domain.Order{}
	if err := json.Unmarshal(data, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached order: %w", err))
	}
	return order, nil
}

func mapTotalError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return apperror.ErrEmptyCart()
	case errors.Is(err, domain.ErrInvalidLineItem):
		return apperror.ErrInvalidLineItem()
	default:
		return apperror.InternalError(err)
	}
}

func orderDescription(items []domain.LineItem) string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	return "purchase: " + strings.Join(titles, ", ")
}
