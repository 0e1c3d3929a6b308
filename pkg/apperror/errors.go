package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger (LED) ----

func ErrInsufficientFunds() *AppError {
	return New("LED_001", "Insufficient funds", http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New("LED_002", "Amount must be positive", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("LED_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Orders (ORD) ----

func ErrEmptyCart() *AppError {
	return New("ORD_001", "Cart is empty", http.StatusBadRequest)
}

func ErrInvalidLineItem() *AppError {
	return New("ORD_002", "Line item quantity and price must be positive", http.StatusBadRequest)
}

func ErrDuplicateOrder() *AppError {
	return New("ORD_003", "Order already submitted", http.StatusConflict)
}

// ---- Admin (ADM) ----

func ErrForbidden() *AppError {
	return New("ADM_001", "Administrator privileges required", http.StatusForbidden)
}

func ErrSelfLockoutDenied() *AppError {
	return New("ADM_002", "An administrator may not deactivate their own account", http.StatusConflict)
}

func ErrBlockedAccount() *AppError {
	return New("ADM_003", "Account is blocked", http.StatusForbidden)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_003", "Username already exists", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrStorageUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Storage temporarily unavailable", http.StatusServiceUnavailable, err)
}

// ErrConcurrencyConflict marks a transient race (e.g. two first-time requests
// with the same idempotency key). The whole operation is safe to retry.
func ErrConcurrencyConflict() *AppError {
	return New("SYS_003", "Concurrent request conflict, retry the operation", http.StatusConflict)
}

func ErrSiteDisabled() *AppError {
	return New("SYS_004", "Storefront is temporarily disabled", http.StatusServiceUnavailable)
}

// Validation returns a LED_002-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("LED_002", message, http.StatusBadRequest)
}
