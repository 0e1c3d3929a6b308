package ports

import (
	"context"
	"time"

	"gameserver-market/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// --- Infrastructure service ports ---

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles admin session token operations.
type TokenService interface {
	Generate(adminID int64, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed token claims.
type TokenClaims struct {
	AdminID  int64
	Username string
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service ports (business logic) ---

// LedgerService is the only public surface for balance reads and writes.
// Every mutation appends exactly one immutable transaction and updates the
// balance in the same durable unit of work.
type LedgerService interface {
	// Deposit credits the account. Kind must be deposit or admin_credit.
	Deposit(ctx context.Context, req DepositRequest) (*BalanceMutation, error)
	// Debit charges the account; fails with InsufficientFunds when the
	// resulting balance would be negative.
	Debit(ctx context.Context, accountID int64, amount int64, description string) (*BalanceMutation, error)
	// DebitInTx appends a purchase debit inside a caller-owned transaction so
	// an order can be persisted atomically with its ledger entry.
	DebitInTx(ctx context.Context, tx pgx.Tx, accountID int64, amount int64, description string) (*BalanceMutation, error)
	// Reset appends a single offsetting entry bringing the balance to zero.
	// Repeated resets append zero-amount entries and are documented no-ops.
	Reset(ctx context.Context, accountID int64) (*BalanceMutation, error)
	GetBalance(ctx context.Context, accountID int64) (*BalanceInfo, error)
	ListTransactions(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, error)
}

// DepositRequest holds validated input for a credit operation.
type DepositRequest struct {
	AccountID   int64
	Amount      int64
	Kind        domain.TransactionKind
	Description string
}

// BalanceMutation is the result of a successful ledger write.
type BalanceMutation struct {
	NewBalance  int64
	Transaction *domain.Transaction
}

// BalanceInfo is the read-side balance snapshot.
type BalanceInfo struct {
	AccountID int64
	Username  string
	Balance   int64
}

// CheckoutService converts a cart into one atomic debit plus order record.
type CheckoutService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, accountID, orderID int64) (*domain.Order, error)
	// SiteEnabled reports whether the storefront accepts checkouts.
	SiteEnabled(ctx context.Context) (bool, error)
}

// CheckoutRequest is a client-submitted cart. Unit prices are resolved from
// the catalog, never taken from the client.
type CheckoutRequest struct {
	AccountID      int64
	Items          []CartItem
	IdempotencyKey string
	ClientIP       string
}

// CartItem references a catalog product.
type CartItem struct {
	ProductID int64
	Quantity  int64
}

// AdminService is the privileged gateway. Every operation verifies the actor
// is an active administrator and records an audit event.
type AdminService interface {
	Credit(ctx context.Context, actor Actor, accountID int64, amount int64, reason string) (*BalanceMutation, error)
	// ResetBalance zeroes an account balance via a single offsetting entry.
	ResetBalance(ctx context.Context, actor Actor, accountID int64) (*BalanceMutation, error)
	ListAccounts(ctx context.Context, actor Actor) ([]domain.Account, error)
	SetAccountStatus(ctx context.Context, actor Actor, accountID int64, status domain.AccountStatus) error
	DeleteAccount(ctx context.Context, actor Actor, accountID int64) error

	ListOrders(ctx context.Context, actor Actor) ([]domain.Order, error)
	SetOrderStatus(ctx context.Context, actor Actor, orderID int64, status domain.OrderStatus) error

	CreateProduct(ctx context.Context, actor Actor, p *domain.Product) error
	DeleteProduct(ctx context.Context, actor Actor, productID int64) error

	ListAdmins(ctx context.Context, actor Actor) ([]domain.AdminUser, error)
	CreateAdmin(ctx context.Context, actor Actor, req CreateAdminRequest) (*domain.AdminUser, error)
	SetAdminStatus(ctx context.Context, actor Actor, targetAdminID int64, active bool) error
	DeleteAdmin(ctx context.Context, actor Actor, targetAdminID int64) error

	SetSiteEnabled(ctx context.Context, actor Actor, enabled bool) error
	Stats(ctx context.Context, actor Actor) (*MarketStats, error)
	ListAuthEvents(ctx context.Context, actor Actor, limit int) ([]domain.AuthEvent, error)
}

// Actor identifies the administrator performing a privileged call.
type Actor struct {
	AdminID  int64
	ClientIP string
}

// CreateAdminRequest holds input for creating an administrator.
type CreateAdminRequest struct {
	Username string
	Password string
	Email    *string
	Role     string
}

// MarketStats aggregates dashboard figures.
type MarketStats struct {
	Accounts        int64 `json:"accounts"`
	Orders          int64 `json:"orders"`
	FulfilledOrders int64 `json:"fulfilled_orders"`
	Revenue         int64 `json:"revenue"`
	LedgerEntries   int64 `json:"ledger_entries"`
}

// CatalogService is the public, read-only catalog surface. ResolveItems is
// the pricing contract used at checkout.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	// ResolveItems maps cart items to priced line items using catalog prices.
	ResolveItems(ctx context.Context, items []CartItem) ([]domain.LineItem, error)
}

// AuthService is the thin identity adapter for administrators.
type AuthService interface {
	// AdminLogin verifies credentials, issues a session token and records an
	// auth event for both outcomes.
	AdminLogin(ctx context.Context, username, password, ip, userAgent string) (*AdminSession, error)
}

// AdminSession is the result of a successful admin login.
type AdminSession struct {
	Token  string
	Expiry time.Time
	Admin  *domain.AdminUser
}

// AuditService records AuthEvent-shaped entries for admin actions and failed
// balance operations.
type AuditService interface {
	Record(ctx context.Context, event *domain.AuthEvent)
	List(ctx context.Context, limit int) ([]domain.AuthEvent, error)
}
