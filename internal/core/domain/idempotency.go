package domain

import (
	"strconv"
	"time"
)

// IdempotencyRecord caches a completed checkout so a retried submission
// returns the original order instead of debiting twice.
type IdempotencyRecord struct {
	Key          string    `json:"key"` // Format: "account_id:client_key"
	OrderID      int64     `json:"order_id"`
	ResponseJSON []byte    `json:"response_json"`
	CreatedAt    time.Time `json:"created_at"`
}

// BuildCheckoutKey constructs the storage key for a checkout idempotency token.
func BuildCheckoutKey(accountID int64, clientKey string) string {
	return strconv.FormatInt(accountID, 10) + ":" + clientKey
}
