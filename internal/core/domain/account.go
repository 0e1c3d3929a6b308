package domain

import "time"

// AccountStatus represents the state of a player account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusBlocked AccountStatus = "blocked"
)

// Account represents a player account with its ledger balance.
// Balance is stored in minor units (kopeks) and is mutated exclusively
// through the ledger's atomic append path.
type Account struct {
	ID        int64         `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Balance   int64         `json:"balance"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// IsBlocked returns true if the account is blocked.
func (a *Account) IsBlocked() bool {
	return a.Status == AccountStatusBlocked
}
