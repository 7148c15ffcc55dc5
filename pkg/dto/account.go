package dto

import (
	"time"

	"github.com/amirasaad/finshare/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRead is a read-optimized DTO for account queries.
type AccountRead struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Type           account.Type    `json:"type"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	IsActive       bool            `json:"is_active"`
	Color          string          `json:"color,omitempty"`
	Icon           string          `json:"icon,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountCreate is a DTO for creating a new account.
type AccountCreate struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Type           account.Type
	InitialBalance decimal.Decimal
	Color          string
	Icon           string
}

// AccountUpdate is a DTO for updating one or more fields of an account.
type AccountUpdate struct {
	Name     *string
	Type     *account.Type
	IsActive *bool
	Color    *string
	Icon     *string
}

// AccountWithBalance pairs an account with its derived current balance.
type AccountWithBalance struct {
	AccountRead
	CurrentBalance decimal.Decimal `json:"current_balance"`
}
