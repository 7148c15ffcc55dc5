package transaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/account"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/domain/goal"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	accountsvc "github.com/amirasaad/finshare/pkg/service/account"
	"github.com/amirasaad/finshare/pkg/service/balance"
	goalsvc "github.com/amirasaad/finshare/pkg/service/goal"
	txsvc "github.com/amirasaad/finshare/pkg/service/transaction"
	"github.com/amirasaad/finshare/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env      *testutils.Env
	balances *balance.Service
	accounts *accountsvc.Service
	goals    *goalsvc.Service
	txs      *txsvc.Service

	user    uuid.UUID
	income  uuid.UUID
	expense uuid.UUID
}

func newFixture(t *testing.T, materialized bool) *fixture {
	env := testutils.NewEnv(t)
	balances := balance.New(env.UoW, env.Bus, env.Logger, materialized)
	f := &fixture{
		env:      env,
		balances: balances,
		accounts: accountsvc.New(env.UoW, balances, env.Logger),
		goals:    goalsvc.New(env.UoW, env.Bus, env.Logger),
		txs:      txsvc.New(env.UoW, env.Bus, balances, env.Logger),
	}
	f.user = env.CreateUser(t, "alice")
	f.income = env.CreateCategory(t, f.user, "Salary", category.Income)
	f.expense = env.CreateCategory(t, f.user, "Food", category.Expense)
	return f
}

func (f *fixture) account(t *testing.T, name string, initial int64) uuid.UUID {
	acc, err := f.accounts.CreateAccount(context.Background(), f.user, dto.AccountCreate{
		Name:           name,
		Type:           account.Checking,
		InitialBalance: testutils.Amount(initial),
	})
	require.NoError(t, err)
	return acc.ID
}

func (f *fixture) goal(t *testing.T, target int64) uuid.UUID {
	g, err := f.goals.CreateGoal(context.Background(), f.user, dto.GoalCreate{
		Name:         "Holiday",
		TargetAmount: testutils.Amount(target),
	})
	require.NoError(t, err)
	return g.ID
}

func (f *fixture) post(t *testing.T, in dto.TransactionCreate) *dto.TransactionRead {
	read, err := f.txs.CreateTransaction(context.Background(), f.user, in)
	require.NoError(t, err)
	return read
}

func (f *fixture) balanceOf(t *testing.T, accountID uuid.UUID) decimal.Decimal {
	bal, err := f.balances.Current(context.Background(), accountID)
	require.NoError(t, err)
	return bal
}

func (f *fixture) currentOf(t *testing.T, goalID uuid.UUID) decimal.Decimal {
	g, err := f.goals.GetGoal(context.Background(), f.user, goalID)
	require.NoError(t, err)
	return g.CurrentAmount
}

func amountEq(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, testutils.Amount(want).Equal(got), "want %d, got %s", want, got)
}

func TestIncomeExpenseTransferScenario(t *testing.T) {
	for _, materialized := range []bool{false, true} {
		name := "replayed"
		if materialized {
			name = "materialized"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, materialized)
			a := f.account(t, "A", 1000)
			b := f.account(t, "B", 0)

			f.post(t, dto.TransactionCreate{
				AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(200), Type: transaction.Expense,
			})
			f.post(t, dto.TransactionCreate{
				AccountID: a, CategoryID: f.income, Amount: testutils.Amount(500), Type: transaction.Income,
			})
			f.post(t, dto.TransactionCreate{
				AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(300),
				Type: transaction.Transfer, DestinationAccountID: &b,
			})

			amountEq(t, 1000, f.balanceOf(t, a))
			amountEq(t, 300, f.balanceOf(t, b))

			replayed, err := f.balances.AccountBalance(context.Background(), a)
			require.NoError(t, err)
			amountEq(t, 1000, replayed)
		})
	}
}

func TestEditAndDeleteKeepBalancesInStep(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	b := f.account(t, "B", 0)

	tr := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(300),
		Type: transaction.Transfer, DestinationAccountID: &b,
	})
	amount := testutils.Amount(120)
	_, err := f.txs.UpdateTransaction(ctx, f.user, tr.ID, dto.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	amountEq(t, 880, f.balanceOf(t, a))
	amountEq(t, 120, f.balanceOf(t, b))

	require.NoError(t, f.txs.DeleteTransaction(ctx, f.user, tr.ID))
	amountEq(t, 1000, f.balanceOf(t, a))
	amountEq(t, 0, f.balanceOf(t, b))

	reports, err := f.balances.Rebuild(ctx, f.user)
	require.NoError(t, err)
	for _, r := range reports {
		assert.False(t, r.Corrected)
	}
}

func TestGoalDepositEditReappliesContribution(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	g := f.goal(t, 1000)

	dep := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(100),
		Type: transaction.GoalDeposit, GoalID: &g,
	})
	amountEq(t, 100, f.currentOf(t, g))
	amountEq(t, 900, f.balanceOf(t, a))

	amount := testutils.Amount(250)
	_, err := f.txs.UpdateTransaction(ctx, f.user, dep.ID, dto.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	amountEq(t, 250, f.currentOf(t, g))
	amountEq(t, 750, f.balanceOf(t, a))

	require.NoError(t, f.txs.DeleteTransaction(ctx, f.user, dep.ID))
	amountEq(t, 0, f.currentOf(t, g))
	amountEq(t, 1000, f.balanceOf(t, a))
}

func TestGoalDepositMovedToAnotherGoal(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	g1 := f.goal(t, 1000)
	g2 := f.goal(t, 50)

	dep := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(100),
		Type: transaction.GoalDeposit, GoalID: &g1,
	})
	f.env.Bus.ClearPublished()

	_, err := f.txs.UpdateTransaction(ctx, f.user, dep.ID, dto.TransactionUpdate{GoalID: &g2})
	require.NoError(t, err)
	amountEq(t, 0, f.currentOf(t, g1))
	amountEq(t, 100, f.currentOf(t, g2))

	var completed bool
	for _, e := range f.env.Bus.Published() {
		if c, ok := e.(events.GoalCompleted); ok && c.GoalID == g2 {
			completed = true
		}
	}
	assert.True(t, completed)
}

func TestGoalWithdrawBeyondCurrentRollsBack(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	g := f.goal(t, 1000)

	_, err := f.txs.CreateTransaction(ctx, f.user, dto.TransactionCreate{
		AccountID: a, CategoryID: f.income, Amount: testutils.Amount(500),
		Type: transaction.GoalWithdraw, GoalID: &g,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	page, err := f.txs.ListTransactions(ctx, f.user, scope.Own{}, dto.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	amountEq(t, 1000, f.balanceOf(t, a))
}

func TestDeleteDepositThatWouldLeaveGoalNegative(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	g := f.goal(t, 1000)

	dep := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(100),
		Type: transaction.GoalDeposit, GoalID: &g,
	})
	f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.income, Amount: testutils.Amount(80),
		Type: transaction.GoalWithdraw, GoalID: &g,
	})

	err := f.txs.DeleteTransaction(ctx, f.user, dep.ID)
	assert.ErrorIs(t, err, goal.ErrNegativeCurrent)
	amountEq(t, 20, f.currentOf(t, g))
}

func TestGoalDepositEditAfterWithdrawal(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	g := f.goal(t, 1000)

	dep := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(100),
		Type: transaction.GoalDeposit, GoalID: &g,
	})
	f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.income, Amount: testutils.Amount(80),
		Type: transaction.GoalWithdraw, GoalID: &g,
	})
	amountEq(t, 20, f.currentOf(t, g))

	amount := testutils.Amount(120)
	_, err := f.txs.UpdateTransaction(ctx, f.user, dep.ID, dto.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	amountEq(t, 40, f.currentOf(t, g))
	amountEq(t, 960, f.balanceOf(t, a))

	amount = testutils.Amount(30)
	_, err = f.txs.UpdateTransaction(ctx, f.user, dep.ID, dto.TransactionUpdate{Amount: &amount})
	assert.ErrorIs(t, err, goal.ErrNegativeCurrent)
	amountEq(t, 40, f.currentOf(t, g))
	amountEq(t, 960, f.balanceOf(t, a))
}

func TestEditTransactionLinkedToDeletedGoal(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	g := f.goal(t, 1000)

	dep := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(100),
		Type: transaction.GoalDeposit, GoalID: &g,
	})
	require.NoError(t, f.goals.DeleteGoal(ctx, f.user, g))

	notes := "receipt"
	read, err := f.txs.UpdateTransaction(ctx, f.user, dep.ID, dto.TransactionUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "receipt", read.Notes)

	amount := testutils.Amount(150)
	_, err = f.txs.UpdateTransaction(ctx, f.user, dep.ID, dto.TransactionUpdate{Amount: &amount})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	amountEq(t, 900, f.balanceOf(t, a))

	require.NoError(t, f.txs.DeleteTransaction(ctx, f.user, dep.ID))
	amountEq(t, 1000, f.balanceOf(t, a))
}

func TestUpdateWithNilGoalID(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.account(t, "A", 1000)
	g := f.goal(t, 1000)
	none := uuid.Nil

	exp := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(10), Type: transaction.Expense,
	})
	notes := "lunch"
	_, err := f.txs.UpdateTransaction(ctx, f.user, exp.ID, dto.TransactionUpdate{GoalID: &none, Notes: &notes})
	require.NoError(t, err)
	read, err := f.txs.GetTransaction(ctx, f.user, exp.ID)
	require.NoError(t, err)
	assert.Nil(t, read.GoalID)
	assert.Equal(t, "lunch", read.Notes)

	dep := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(100),
		Type: transaction.GoalDeposit, GoalID: &g,
	})
	_, err = f.txs.UpdateTransaction(ctx, f.user, dep.ID, dto.TransactionUpdate{GoalID: &none})
	assert.ErrorIs(t, err, transaction.ErrGoalRequired)
	amountEq(t, 100, f.currentOf(t, g))
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.account(t, "A", 0)
	stranger := f.env.CreateUser(t, "mallory")

	tests := []struct {
		name      string
		requester uuid.UUID
		in        dto.TransactionCreate
		want      error
	}{
		{
			name:      "category type mismatch",
			requester: f.user,
			in:        dto.TransactionCreate{AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(10), Type: transaction.Income},
			want:      category.ErrTypeMismatch,
		},
		{
			name:      "foreign account",
			requester: stranger,
			in:        dto.TransactionCreate{AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(10), Type: transaction.Expense},
			want:      domain.ErrForbidden,
		},
		{
			name:      "non positive amount",
			requester: f.user,
			in:        dto.TransactionCreate{AccountID: a, CategoryID: f.expense, Amount: decimal.Zero, Type: transaction.Expense},
			want:      domain.ErrInvalidArgument,
		},
		{
			name:      "transfer to self",
			requester: f.user,
			in: dto.TransactionCreate{
				AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(10),
				Type: transaction.Transfer, DestinationAccountID: &a,
			},
			want: domain.ErrInvalidOperation,
		},
		{
			name:      "goal deposit without goal",
			requester: f.user,
			in:        dto.TransactionCreate{AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(10), Type: transaction.GoalDeposit},
			want:      transaction.ErrGoalRequired,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.txs.CreateTransaction(ctx, tc.requester, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGetTransactionVisibility(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.account(t, "A", 0)
	tr := f.post(t, dto.TransactionCreate{
		AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(10), Type: transaction.Expense,
	})

	bob := f.env.CreateUser(t, "bob")
	dave := f.env.CreateUser(t, "dave")
	g := f.env.CreateGroup(t, f.user, "home")
	f.env.AddMember(t, g, bob, "member")

	got, err := f.txs.GetTransaction(ctx, bob, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, f.user, got.UserID)

	_, err = f.txs.GetTransaction(ctx, dave, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListTransactionsPagesNewestFirst(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.account(t, "A", 0)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		f.post(t, dto.TransactionCreate{
			AccountID: a, CategoryID: f.expense, Amount: testutils.Amount(int64(i + 1)),
			Type: transaction.Expense, Date: base.AddDate(0, 0, i),
		})
	}

	page, err := f.txs.ListTransactions(ctx, f.user, scope.Own{}, dto.TransactionFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	amountEq(t, 5, page.Items[0].Amount)
	amountEq(t, 4, page.Items[1].Amount)

	page, err = f.txs.ListTransactions(ctx, f.user, scope.Own{}, dto.TransactionFilter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	amountEq(t, 1, page.Items[0].Amount)
}
