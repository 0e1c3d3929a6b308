package ports

import (
	"context"
	"errors"

	"gameserver-market/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ErrDuplicateKey is returned by repositories when an insert violates a
// uniqueness constraint. Callers map it to a retryable conflict.
var ErrDuplicateKey = errors.New("duplicate key")

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// AccountRepository defines persistence operations for player accounts.
// Methods accepting pgx.Tx run inside transaction blocks for pessimistic
// locking; the account row lock serializes all mutations per account.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
	// AdjustBalance applies a signed delta guarded against negative results.
	// Returns the new balance, or ErrDuplicateKey-free failure: zero rows
	// affected means the guard rejected the update.
	AdjustBalance(ctx context.Context, tx pgx.Tx, id int64, delta int64) (int64, bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AccountStatus) error
	// Delete removes the account and cascades to its transactions and orders.
	Delete(ctx context.Context, id int64) error
}

// TransactionRepository defines persistence for the append-only ledger.
// Entries are never updated or deleted outside the account-deletion cascade.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, error)
	// SumByAccount reconciles the running balance from entries.
	SumByAccount(ctx context.Context, accountID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// OrderRepository defines persistence for purchase orders.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	Stats(ctx context.Context) (*OrderStats, error)
}

// OrderStats aggregates order figures for the admin dashboard.
type OrderStats struct {
	TotalOrders     int64
	FulfilledOrders int64
	Revenue         int64 // Sum of fulfilled order totals
}

// AdminRepository defines persistence for administrator users.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	GetByID(ctx context.Context, id int64) (*domain.AdminUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
	List(ctx context.Context) ([]domain.AdminUser, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// AuthEventRepository defines persistence for the append-only audit trail.
type AuthEventRepository interface {
	Create(ctx context.Context, event *domain.AuthEvent) error
	List(ctx context.Context, limit int) ([]domain.AuthEvent, error)
}

// IdempotencyRepository defines persistence for checkout idempotency records
// (durable layer behind the Redis cache). Create returns ErrDuplicateKey when
// the key was inserted concurrently.
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

// ProductRepository defines persistence for the product catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// SettingsRepository persists storefront-wide switches.
type SettingsRepository interface {
	SiteEnabled(ctx context.Context) (bool, error)
	SetSiteEnabled(ctx context.Context, enabled bool) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
