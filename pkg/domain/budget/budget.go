package budget

import (
	"fmt"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrBudgetNotFound  = fmt.Errorf("%w: budget not found", domain.ErrNotFound)
	ErrNotOwner        = fmt.Errorf("%w: budget does not belong to you", domain.ErrForbidden)
	ErrDuplicateBudget = fmt.Errorf(
		"%w: a budget already exists for this category and period",
		domain.ErrInvalidOperation,
	)
	ErrInvalidMonth     = fmt.Errorf("%w: month must be between 1 and 12", domain.ErrInvalidArgument)
	ErrInvalidYear      = fmt.Errorf("%w: year must be between 2000 and 2100", domain.ErrInvalidArgument)
	ErrLimitNotPositive = fmt.Errorf("%w: limit must be greater than zero", domain.ErrInvalidArgument)
	hundred             = decimal.NewFromInt(100)
)

// Period is a calendar month.
type Period struct {
	Month int
	Year  int
}

// Validate checks month and year bounds.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 2000 || p.Year > 2100 {
		return ErrInvalidYear
	}
	return nil
}

// Range returns the half-open UTC interval [first day, first day of next month).
func (p Period) Range() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ValidateLimit rejects non-positive limits.
func ValidateLimit(limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return ErrLimitNotPositive
	}
	return nil
}

// Status is the spending position of a budget.
type Status struct {
	Limit          decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	PercentageUsed decimal.Decimal
	IsExceeded     bool
}

// Evaluate computes the status for a limit and the amount spent. A zero
// limit yields a zero percentage.
func Evaluate(limit, spent decimal.Decimal) Status {
	pct := decimal.Zero
	if !limit.IsZero() {
		pct = spent.Div(limit).Mul(hundred).Round(2)
	}
	return Status{
		Limit:          limit,
		Spent:          spent,
		Remaining:      limit.Sub(spent),
		PercentageUsed: pct,
		IsExceeded:     spent.GreaterThan(limit),
	}
}
