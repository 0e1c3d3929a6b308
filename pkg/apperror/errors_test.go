package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("LED_002", "Amount must be positive", http.StatusBadRequest)
	assert.Equal(t, "[LED_002] Amount must be positive", e.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, errors.New("conn refused"))
	assert.Contains(t, wrapped.Error(), "SYS_001")
	assert.Contains(t, wrapped.Error(), "conn refused")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	e := InternalError(fmt.Errorf("append transaction: %w", inner))
	assert.True(t, errors.Is(e, inner))
}

func TestErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrInsufficientFunds(), "LED_001", http.StatusConflict},
		{ErrInvalidAmount(), "LED_002", http.StatusBadRequest},
		{ErrNotFound("account"), "LED_003", http.StatusNotFound},
		{ErrEmptyCart(), "ORD_001", http.StatusBadRequest},
		{ErrInvalidLineItem(), "ORD_002", http.StatusBadRequest},
		{ErrDuplicateOrder(), "ORD_003", http.StatusConflict},
		{ErrForbidden(), "ADM_001", http.StatusForbidden},
		{ErrSelfLockoutDenied(), "ADM_002", http.StatusConflict},
		{ErrBlockedAccount(), "ADM_003", http.StatusForbidden},
		{ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{ErrInvalidToken(), "AUTH_002", http.StatusUnauthorized},
		{ErrUsernameExists(), "AUTH_003", http.StatusConflict},
		{ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{ErrConcurrencyConflict(), "SYS_003", http.StatusConflict},
		{ErrSiteDisabled(), "SYS_004", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus)
	}
}

func TestErrNotFound_Message(t *testing.T) {
	e := ErrNotFound("order")
	assert.Equal(t, "order not found", e.Message)
}

func TestErrStorageUnavailable(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	e := ErrStorageUnavailable(inner)
	require.Equal(t, http.StatusServiceUnavailable, e.HTTPStatus)
	assert.True(t, errors.Is(e, inner))
}
