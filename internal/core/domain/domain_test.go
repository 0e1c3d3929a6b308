package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Quantity: 2, UnitPrice: 25000},
		{ProductID: 2, Quantity: 1, UnitPrice: 10000},
	}

	total, err := ComputeTotal(items)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), total)
}

func TestComputeTotal_EmptyCart(t *testing.T) {
	_, err := ComputeTotal(nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = ComputeTotal([]LineItem{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestComputeTotal_InvalidLineItem(t *testing.T) {
	cases := []struct {
		name string
		item LineItem
	}{
		{"zero quantity", LineItem{ProductID: 1, Quantity: 0, UnitPrice: 100}},
		{"negative quantity", LineItem{ProductID: 1, Quantity: -1, UnitPrice: 100}},
		{"zero price", LineItem{ProductID: 1, Quantity: 1, UnitPrice: 0}},
		{"negative price", LineItem{ProductID: 1, Quantity: 1, UnitPrice: -50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeTotal([]LineItem{tc.item})
			assert.ErrorIs(t, err, ErrInvalidLineItem)
		})
	}
}

func TestValidTransactionKind(t *testing.T) {
	for _, k := range []TransactionKind{
		TransactionKindDeposit, TransactionKindAdminCredit,
		TransactionKindPurchaseDebit, TransactionKindResetAdjustment,
	} {
		assert.True(t, ValidTransactionKind(k))
	}
	assert.False(t, ValidTransactionKind("withdrawal"))
	assert.False(t, ValidTransactionKind(""))
}

func TestTransaction_CreditDebit(t *testing.T) {
	credit := Transaction{Amount: 500, Kind: TransactionKindDeposit}
	debit := Transaction{Amount: -500, Kind: TransactionKindPurchaseDebit}

	assert.True(t, credit.IsCredit())
	assert.False(t, credit.IsDebit())
	assert.True(t, debit.IsDebit())
	assert.False(t, debit.IsCredit())
}

func TestAccount_IsBlocked(t *testing.T) {
	a := Account{Status: AccountStatusActive}
	assert.False(t, a.IsBlocked())
	a.Status = AccountStatusBlocked
	assert.True(t, a.IsBlocked())
}

func TestBuildCheckoutKey(t *testing.T) {
	assert.Equal(t, "42:dbl-click-1", BuildCheckoutKey(42, "dbl-click-1"))
}
