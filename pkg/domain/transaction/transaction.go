// Package transaction holds the ledger entry type and its posting rules.
package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies a ledger entry.
type Type string

const (
	Income       Type = "income"
	Expense      Type = "expense"
	Transfer     Type = "transfer"
	GoalDeposit  Type = "goal_deposit"
	GoalWithdraw Type = "goal_withdraw"
)

var (
	ErrTransactionNotFound   = fmt.Errorf("%w: transaction not found", domain.ErrNotFound)
	ErrAmountNotPositive     = fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidArgument)
	ErrUnknownType           = fmt.Errorf("%w: unknown transaction type", domain.ErrInvalidArgument)
	ErrDestinationRequired   = fmt.Errorf("%w: transfer requires a destination account", domain.ErrInvalidArgument)
	ErrDestinationNotAllowed = fmt.Errorf("%w: only transfers may have a destination account", domain.ErrInvalidArgument)
	ErrSelfTransfer          = fmt.Errorf("%w: cannot transfer to the same account", domain.ErrInvalidOperation)
	ErrGoalRequired          = fmt.Errorf("%w: goal contribution requires a goal", domain.ErrInvalidArgument)
	ErrGoalNotAllowed        = fmt.Errorf("%w: only goal contributions may reference a goal", domain.ErrInvalidArgument)
	ErrDescriptionTooLong    = fmt.Errorf("%w: description must be at most 500 characters", domain.ErrInvalidArgument)
)

// ParseType accepts the wire name of a Type, case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrUnknownType
	}
	return t, nil
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case Income, Expense, Transfer, GoalDeposit, GoalWithdraw:
		return true
	}
	return false
}

// IsGoalContribution reports whether t moves money into or out of a goal.
func (t Type) IsGoalContribution() bool {
	return t == GoalDeposit || t == GoalWithdraw
}

// Transaction is a single immutable-typed ledger entry.
type Transaction struct {
	ID                   uuid.UUID
	AccountID            uuid.UUID
	CategoryID           uuid.UUID
	Amount               decimal.Decimal
	Date                 time.Time
	Description          string
	Notes                string
	IsRecurring          bool
	Type                 Type
	DestinationAccountID *uuid.UUID
	GoalID               *uuid.UUID
}

// Validate checks the shape rules that need no store lookups.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrUnknownType
	}
	if !t.Amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if len([]rune(t.Description)) > 500 {
		return ErrDescriptionTooLong
	}
	hasDest := t.DestinationAccountID != nil && *t.DestinationAccountID != uuid.Nil
	hasGoal := t.GoalID != nil && *t.GoalID != uuid.Nil
	switch {
	case t.Type == Transfer && !hasDest:
		return ErrDestinationRequired
	case t.Type == Transfer && *t.DestinationAccountID == t.AccountID:
		return ErrSelfTransfer
	case t.Type != Transfer && hasDest:
		return ErrDestinationNotAllowed
	case t.Type.IsGoalContribution() && !hasGoal:
		return ErrGoalRequired
	case !t.Type.IsGoalContribution() && hasGoal:
		return ErrGoalNotAllowed
	}
	return nil
}

// EffectOn returns the signed change this entry applies to accountID.
func (t Transaction) EffectOn(accountID uuid.UUID) decimal.Decimal {
	effect := decimal.Zero
	if t.AccountID == accountID {
		switch t.Type {
		case Income, GoalWithdraw:
			effect = effect.Add(t.Amount)
		case Expense, Transfer, GoalDeposit:
			effect = effect.Sub(t.Amount)
		}
	}
	if t.Type == Transfer && t.DestinationAccountID != nil && *t.DestinationAccountID == accountID {
		effect = effect.Add(t.Amount)
	}
	return effect
}

// Affected lists the accounts whose balance this entry changes.
func (t Transaction) Affected() []uuid.UUID {
	ids := []uuid.UUID{t.AccountID}
	if t.Type == Transfer && t.DestinationAccountID != nil {
		ids = append(ids, *t.DestinationAccountID)
	}
	return ids
}
