// Package goal models savings goals and the rules for moving money in and
// out of them.
package goal

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound     = fmt.Errorf("%w: goal not found", domain.ErrNotFound)
	ErrNotOwner         = fmt.Errorf("%w: only the goal owner may do this", domain.ErrForbidden)
	ErrNoAccess         = fmt.Errorf("%w: goal is not shared with you", domain.ErrForbidden)
	ErrInsufficientFund = fmt.Errorf(
		"%w: withdrawal exceeds the goal's current amount",
		domain.ErrInvalidOperation,
	)
	ErrNegativeCurrent = fmt.Errorf(
		"%w: reversing this contribution would leave the goal negative",
		domain.ErrInvalidOperation,
	)
	ErrRemoveOwner        = fmt.Errorf("%w: cannot remove the goal owner", domain.ErrInvalidOperation)
	ErrNotInGroup         = fmt.Errorf("%w: user is not in any of your groups", domain.ErrInvalidOperation)
	ErrTargetNotPositive  = fmt.Errorf("%w: target amount must be greater than zero", domain.ErrInvalidArgument)
	ErrCurrentNegative    = fmt.Errorf("%w: current amount cannot be negative", domain.ErrInvalidArgument)
	ErrAmountNotPositive  = fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidArgument)
	ErrTargetDate         = fmt.Errorf("%w: target date must be after start date", domain.ErrInvalidArgument)
	ErrNameRequired       = fmt.Errorf("%w: goal name is required", domain.ErrInvalidArgument)
	ErrNameTooLong        = fmt.Errorf("%w: goal name must be at most 100 characters", domain.ErrInvalidArgument)
	ErrDescriptionTooLong = fmt.Errorf("%w: description must be at most 500 characters", domain.ErrInvalidArgument)

	hundred = decimal.NewFromInt(100)
)

// Direction says whether a contribution adds to or takes from a goal.
type Direction int

const (
	Deposit Direction = iota + 1
	Withdraw
)

func (d Direction) String() string {
	switch d {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	}
	return "unknown"
}

// DirectionOf maps a goal contribution transaction type to its Direction.
func DirectionOf(t transaction.Type) (Direction, bool) {
	switch t {
	case transaction.GoalDeposit:
		return Deposit, true
	case transaction.GoalWithdraw:
		return Withdraw, true
	}
	return 0, false
}

// Contribution is the goal-side view of a goal-linked transaction.
type Contribution struct {
	GoalID    uuid.UUID
	Amount    decimal.Decimal
	Direction Direction
}

// ContributionOf extracts the contribution carried by tx, if any.
func ContributionOf(tx transaction.Transaction) (Contribution, bool) {
	dir, ok := DirectionOf(tx.Type)
	if !ok || tx.GoalID == nil {
		return Contribution{}, false
	}
	return Contribution{GoalID: *tx.GoalID, Amount: tx.Amount, Direction: dir}, true
}

// Goal is a savings target. IsCompleted always mirrors Current >= Target
// after any mutation made through this type.
type Goal struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Target      decimal.Decimal
	Current     decimal.Decimal
	StartDate   time.Time
	TargetDate  *time.Time
	IsCompleted bool
	Version     int64
}

// Validate checks the field rules of a goal.
func (g *Goal) Validate() error {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len([]rune(name)) > 100 {
		return ErrNameTooLong
	}
	if len([]rune(g.Description)) > 500 {
		return ErrDescriptionTooLong
	}
	if !g.Target.IsPositive() {
		return ErrTargetNotPositive
	}
	if g.Current.IsNegative() {
		return ErrCurrentNegative
	}
	if g.TargetDate != nil && !g.TargetDate.After(g.StartDate) {
		return ErrTargetDate
	}
	return nil
}

// Evaluate re-derives IsCompleted and reports whether it flipped.
func (g *Goal) Evaluate() bool {
	completed := g.Current.GreaterThanOrEqual(g.Target)
	changed := completed != g.IsCompleted
	g.IsCompleted = completed
	return changed
}

// Apply posts a contribution. A withdrawal larger than Current fails and
// leaves the goal untouched.
func (g *Goal) Apply(dir Direction, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	switch dir {
	case Deposit:
		g.Current = g.Current.Add(amount)
	case Withdraw:
		if amount.GreaterThan(g.Current) {
			return ErrInsufficientFund
		}
		g.Current = g.Current.Sub(amount)
	default:
		return fmt.Errorf("%w: unknown contribution direction", domain.ErrInvalidArgument)
	}
	g.Evaluate()
	return nil
}

// Reverse undoes a previously applied contribution.
func (g *Goal) Reverse(dir Direction, amount decimal.Decimal) error {
	switch dir {
	case Deposit:
		if amount.GreaterThan(g.Current) {
			return ErrNegativeCurrent
		}
		g.Current = g.Current.Sub(amount)
	case Withdraw:
		g.Current = g.Current.Add(amount)
	default:
		return fmt.Errorf("%w: unknown contribution direction", domain.ErrInvalidArgument)
	}
	g.Evaluate()
	return nil
}

// Replace swaps an applied contribution for another on the same goal. Only
// the final amount current - prev + next must be non-negative; the goal is
// left untouched on failure.
func (g *Goal) Replace(prev, next Contribution) error {
	if !next.Amount.IsPositive() {
		return ErrAmountNotPositive
	}
	current, err := signed(prev)
	if err != nil {
		return err
	}
	delta, err := signed(next)
	if err != nil {
		return err
	}
	final := g.Current.Sub(current).Add(delta)
	if final.IsNegative() {
		if next.Direction == Withdraw {
			return ErrInsufficientFund
		}
		return ErrNegativeCurrent
	}
	g.Current = final
	g.Evaluate()
	return nil
}

// Same reports whether c and other move the same amount the same way on
// the same goal.
func (c Contribution) Same(other Contribution) bool {
	return c.GoalID == other.GoalID &&
		c.Direction == other.Direction &&
		c.Amount.Equal(other.Amount)
}

func signed(c Contribution) (decimal.Decimal, error) {
	switch c.Direction {
	case Deposit:
		return c.Amount, nil
	case Withdraw:
		return c.Amount.Neg(), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown contribution direction", domain.ErrInvalidArgument)
}

// Progress is min(current/target*100, 100), or 0 for a zero target.
func (g *Goal) Progress() decimal.Decimal {
	if g.Target.IsZero() {
		return decimal.Zero
	}
	p := g.Current.Div(g.Target).Mul(hundred).Round(2)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// Remaining is max(target-current, 0).
func (g *Goal) Remaining() decimal.Decimal {
	r := g.Target.Sub(g.Current)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
