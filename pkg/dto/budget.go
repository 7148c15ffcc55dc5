package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetRead is a read-optimized DTO for budget queries.
type BudgetRead struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	Limit      decimal.Decimal `json:"limit"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BudgetCreate is a DTO for creating a budget.
type BudgetCreate struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID uuid.UUID
	Month      int
	Year       int
	Limit      decimal.Decimal
}

// BudgetUpdate is a DTO for a partial budget update.
type BudgetUpdate struct {
	Limit *decimal.Decimal
}

// BudgetStatus reports the spending position of one budget.
type BudgetStatus struct {
	BudgetID       uuid.UUID       `json:"budget_id"`
	UserID         uuid.UUID       `json:"user_id"`
	CategoryID     uuid.UUID       `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	Limit          decimal.Decimal `json:"limit"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	IsExceeded     bool            `json:"is_exceeded"`
}
