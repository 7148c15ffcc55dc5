package account

import (
	"strings"
	"testing"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(t transaction.Type, from uuid.UUID, to *uuid.UUID, amount int64) transaction.Transaction {
	return transaction.Transaction{
		ID:                   uuid.New(),
		AccountID:            from,
		Type:                 t,
		Amount:               decimal.NewFromInt(amount),
		DestinationAccountID: to,
	}
}

func TestBalance_Replay(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	txs := []transaction.Transaction{
		tx(transaction.Expense, a, nil, 200),
		tx(transaction.Income, a, nil, 500),
		tx(transaction.Transfer, a, &b, 300),
	}

	assert.True(t, decimal.NewFromInt(1000).Equal(Balance(a, decimal.NewFromInt(1000), txs)))
	assert.True(t, decimal.NewFromInt(300).Equal(Balance(b, decimal.Zero, txs)))
}

func TestBalance_OrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	txs := []transaction.Transaction{
		tx(transaction.Income, a, nil, 70),
		tx(transaction.Expense, a, nil, 15),
		tx(transaction.Transfer, b, &a, 40),
		tx(transaction.Transfer, a, &b, 5),
		tx(transaction.GoalDeposit, a, nil, 20),
		tx(transaction.GoalWithdraw, a, nil, 3),
	}
	reversed := make([]transaction.Transaction, len(txs))
	for i := range txs {
		reversed[len(txs)-1-i] = txs[i]
	}

	want := decimal.NewFromInt(100 + 70 - 15 + 40 - 5 - 20 + 3)
	assert.True(t, want.Equal(Balance(a, decimal.NewFromInt(100), txs)))
	assert.True(t, want.Equal(Balance(a, decimal.NewFromInt(100), reversed)))
}

func TestBalance_IgnoresUnrelatedAccounts(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	txs := []transaction.Transaction{
		tx(transaction.Income, b, nil, 10),
		tx(transaction.Transfer, b, &c, 10),
	}
	assert.True(t, decimal.NewFromInt(7).Equal(Balance(a, decimal.NewFromInt(7), txs)))
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" Savings ")
	require.NoError(t, err)
	assert.Equal(t, Savings, got)

	_, err = ParseType("piggy-bank")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Main"))
	assert.ErrorIs(t, ValidateName("  "), ErrNameRequired)
	assert.ErrorIs(t, ValidateName(strings.Repeat("x", 101)), ErrNameTooLong)
}
