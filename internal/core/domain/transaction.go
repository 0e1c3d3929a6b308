package domain

import "time"

// TransactionKind represents the kind of ledger entry.
type TransactionKind string

const (
	TransactionKindDeposit         TransactionKind = "deposit"
	TransactionKindAdminCredit     TransactionKind = "admin_credit"
	TransactionKindPurchaseDebit   TransactionKind = "purchase_debit"
	TransactionKindResetAdjustment TransactionKind = "reset_adjustment"
)

// ValidTransactionKind reports whether k is one of the closed set of kinds.
func ValidTransactionKind(k TransactionKind) bool {
	switch k {
	case TransactionKindDeposit, TransactionKindAdminCredit,
		TransactionKindPurchaseDebit, TransactionKindResetAdjustment:
		return true
	}
	return false
}

// Transaction represents an immutable, append-only ledger entry.
// Amount is signed: positive entries credit the account, negative entries
// debit it. An account's balance is always the sum of its entries.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Amount      int64           `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsCredit returns true if the entry adds funds.
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// IsDebit returns true if the entry removes funds.
func (t *Transaction) IsDebit() bool {
	return t.Amount < 0
}
