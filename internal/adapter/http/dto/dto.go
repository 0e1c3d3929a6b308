package dto

// --- Player requests ---

// DepositRequest is the request body for a player deposit.
type DepositRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=200"`
}

// CartItemRequest references a catalog product by ID.
type CartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest is the request body for checkout. Prices are resolved from
// the catalog server-side; the client never submits them.
type CheckoutRequest struct {
	Items          []CartItemRequest `json:"items" binding:"required,min=1,dive"`
	IdempotencyKey string            `json:"idempotency_key" binding:"required,min=1,max=100,safe_id"`
}

// --- Admin requests ---

// AdminLoginRequest is the request body for admin login.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse is the response body for successful login.
type AdminLoginResponse struct {
	Token    string `json:"token"`
	Expiry   int64  `json:"expiry"` // Unix timestamp
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CreditRequest is the request body for an admin balance credit.
type CreditRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"max=200"`
}

// AccountStatusRequest changes an account between active and blocked.
type AccountStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active blocked"`
}

// OrderStatusRequest advances an order through its lifecycle.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending fulfilled"`
}

// CreateAdminRequest is the request body for creating an administrator.
type CreateAdminRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string  `json:"password" binding:"required,min=8,max=128"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Role     string  `json:"role" binding:"omitempty,oneof=admin superadmin"`
}

// AdminStatusRequest activates or deactivates an administrator.
type AdminStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreateProductRequest is the request body for adding a catalog item.
type CreateProductRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon" binding:"max=100"`
	Gradient    string `json:"gradient" binding:"max=100"`
}

// SiteToggleRequest enables or disables the storefront.
type SiteToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// --- Responses ---

// BalanceResponse is the read-side balance snapshot.
type BalanceResponse struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Balance   int64  `json:"balance"`
}

// MutationResponse is returned after a successful ledger write.
type MutationResponse struct {
	NewBalance  int64               `json:"new_balance"`
	Transaction TransactionResponse `json:"transaction"`
}

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// TransactionListResponse wraps a transaction history page.
type TransactionListResponse struct {
	Items  []TransactionResponse `json:"items"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}
