package goal

import (
	"testing"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newGoal(target, current int64) *Goal {
	g := &Goal{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "Trip",
		Target:    amt(target),
		Current:   amt(current),
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	g.Evaluate()
	return g
}

func TestApply_DepositCompletesAndWithdrawReopens(t *testing.T) {
	g := newGoal(1000, 0)

	require.NoError(t, g.Apply(Deposit, amt(1000)))
	assert.True(t, g.IsCompleted)
	assert.True(t, amt(100).Equal(g.Progress()))

	require.NoError(t, g.Apply(Withdraw, amt(1)))
	assert.False(t, g.IsCompleted)
	assert.True(t, amt(999).Equal(g.Current))
	assert.True(t, amt(1).Equal(g.Remaining()))
}

func TestApply_WithdrawMoreThanCurrent(t *testing.T) {
	g := newGoal(1000, 50)
	err := g.Apply(Withdraw, amt(51))
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.True(t, amt(50).Equal(g.Current))
}

func TestApply_RejectsNonPositiveAmount(t *testing.T) {
	g := newGoal(1000, 0)
	assert.ErrorIs(t, g.Apply(Deposit, decimal.Zero), ErrAmountNotPositive)
}

func TestEvaluate_Idempotent(t *testing.T) {
	g := newGoal(100, 100)
	assert.True(t, g.IsCompleted)
	assert.False(t, g.Evaluate())
	assert.False(t, g.Evaluate())
	assert.True(t, g.IsCompleted)
}

func TestReverseThenReapply(t *testing.T) {
	g := newGoal(1000, 200)
	require.NoError(t, g.Apply(Deposit, amt(300)))
	before := g.Current

	require.NoError(t, g.Reverse(Deposit, amt(300)))
	require.NoError(t, g.Apply(Deposit, amt(450)))
	assert.True(t, before.Sub(amt(300)).Add(amt(450)).Equal(g.Current))
}

func TestReplace_ChecksOnlyFinalAmount(t *testing.T) {
	goalID := uuid.New()
	// deposit 100 then withdraw 80 leaves 20; the deposit is edited to 120.
	g := newGoal(1000, 20)
	prev := Contribution{GoalID: goalID, Amount: amt(100), Direction: Deposit}
	next := Contribution{GoalID: goalID, Amount: amt(120), Direction: Deposit}

	require.NoError(t, g.Replace(prev, next))
	assert.True(t, amt(40).Equal(g.Current))
	assert.False(t, g.IsCompleted)
}

func TestReplace_RejectsNegativeResult(t *testing.T) {
	goalID := uuid.New()
	g := newGoal(1000, 20)

	err := g.Replace(
		Contribution{GoalID: goalID, Amount: amt(100), Direction: Deposit},
		Contribution{GoalID: goalID, Amount: amt(50), Direction: Deposit},
	)
	assert.ErrorIs(t, err, ErrNegativeCurrent)
	assert.True(t, amt(20).Equal(g.Current))

	err = g.Replace(
		Contribution{GoalID: goalID, Amount: amt(10), Direction: Withdraw},
		Contribution{GoalID: goalID, Amount: amt(31), Direction: Withdraw},
	)
	assert.ErrorIs(t, err, ErrInsufficientFund)
	assert.True(t, amt(20).Equal(g.Current))
}

func TestReplace_FlipsCompletionOnce(t *testing.T) {
	goalID := uuid.New()
	g := newGoal(100, 60)

	require.NoError(t, g.Replace(
		Contribution{GoalID: goalID, Amount: amt(10), Direction: Withdraw},
		Contribution{GoalID: goalID, Amount: amt(30), Direction: Deposit},
	))
	assert.True(t, amt(100).Equal(g.Current))
	assert.True(t, g.IsCompleted)

	assert.ErrorIs(t, g.Replace(
		Contribution{GoalID: goalID, Amount: amt(30), Direction: Deposit},
		Contribution{GoalID: goalID, Amount: decimal.Zero, Direction: Deposit},
	), ErrAmountNotPositive)
}

func TestContribution_Same(t *testing.T) {
	goalID := uuid.New()
	c := Contribution{GoalID: goalID, Amount: decimal.RequireFromString("10.50"), Direction: Deposit}

	assert.True(t, c.Same(Contribution{GoalID: goalID, Amount: decimal.RequireFromString("10.5"), Direction: Deposit}))
	assert.False(t, c.Same(Contribution{GoalID: goalID, Amount: amt(10), Direction: Deposit}))
	assert.False(t, c.Same(Contribution{GoalID: goalID, Amount: c.Amount, Direction: Withdraw}))
	assert.False(t, c.Same(Contribution{GoalID: uuid.New(), Amount: c.Amount, Direction: Deposit}))
}

func TestReverse_DepositBelowZero(t *testing.T) {
	g := newGoal(1000, 10)
	assert.ErrorIs(t, g.Reverse(Deposit, amt(11)), ErrNegativeCurrent)
}

func TestReverse_WithdrawRestores(t *testing.T) {
	g := newGoal(100, 100)
	require.NoError(t, g.Apply(Withdraw, amt(40)))
	assert.False(t, g.IsCompleted)
	require.NoError(t, g.Reverse(Withdraw, amt(40)))
	assert.True(t, g.IsCompleted)
}

func TestProgressCapsAtHundred(t *testing.T) {
	g := newGoal(100, 250)
	assert.True(t, amt(100).Equal(g.Progress()))
	assert.True(t, decimal.Zero.Equal(g.Remaining()))
}

func TestValidate(t *testing.T) {
	g := newGoal(100, 0)
	assert.NoError(t, g.Validate())

	g.Target = decimal.Zero
	assert.ErrorIs(t, g.Validate(), ErrTargetNotPositive)

	g = newGoal(100, 0)
	past := g.StartDate.AddDate(0, 0, -1)
	g.TargetDate = &past
	assert.ErrorIs(t, g.Validate(), ErrTargetDate)

	g = newGoal(100, 0)
	g.Current = amt(-1)
	assert.ErrorIs(t, g.Validate(), ErrCurrentNegative)
}

func TestContributionOf(t *testing.T) {
	goalID := uuid.New()
	c, ok := ContributionOf(transaction.Transaction{
		Type:   transaction.GoalWithdraw,
		Amount: amt(5),
		GoalID: &goalID,
	})
	require.True(t, ok)
	assert.Equal(t, Withdraw, c.Direction)
	assert.Equal(t, goalID, c.GoalID)

	_, ok = ContributionOf(transaction.Transaction{Type: transaction.Expense, Amount: amt(5)})
	assert.False(t, ok)
}
