package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardSummary aggregates income and spending over a date range.
type DashboardSummary struct {
	Start          time.Time          `json:"start"`
	End            time.Time          `json:"end"`
	TotalIncome    decimal.Decimal    `json:"total_income"`
	TotalExpenses  decimal.Decimal    `json:"total_expenses"`
	Balance        decimal.Decimal    `json:"balance"`
	TopCategories  []CategorySpending `json:"top_categories"`
	MonthlyHistory []MonthlyTotals    `json:"monthly_history"`
	Comparison     MonthComparison    `json:"comparison"`
}

// CategorySpending is one row of the top expense categories.
type CategorySpending struct {
	CategoryID       uuid.UUID       `json:"category_id"`
	CategoryName     string          `json:"category_name"`
	Color            string          `json:"color,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Percentage       decimal.Decimal `json:"percentage"`
	TransactionCount int64           `json:"transaction_count"`
}

// MonthlyTotals is one calendar month of the trailing history.
type MonthlyTotals struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// MonthComparison compares a month to the one before it.
type MonthComparison struct {
	CurrentIncome            decimal.Decimal `json:"current_income"`
	PreviousIncome           decimal.Decimal `json:"previous_income"`
	IncomeChange             decimal.Decimal `json:"income_change"`
	IncomeChangePercentage   decimal.Decimal `json:"income_change_percentage"`
	CurrentExpenses          decimal.Decimal `json:"current_expenses"`
	PreviousExpenses         decimal.Decimal `json:"previous_expenses"`
	ExpensesChange           decimal.Decimal `json:"expenses_change"`
	ExpensesChangePercentage decimal.Decimal `json:"expenses_change_percentage"`
}
