package dto

import (
	"time"

	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRead is a read-optimized DTO for transaction queries.
type TransactionRead struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               uuid.UUID        `json:"user_id"`
	AccountID            uuid.UUID        `json:"account_id"`
	CategoryID           uuid.UUID        `json:"category_id"`
	Amount               decimal.Decimal  `json:"amount"`
	Date                 time.Time        `json:"date"`
	Description          string           `json:"description"`
	Notes                string           `json:"notes,omitempty"`
	IsRecurring          bool             `json:"is_recurring"`
	Type                 transaction.Type `json:"type"`
	DestinationAccountID *uuid.UUID       `json:"destination_account_id,omitempty"`
	GoalID               *uuid.UUID       `json:"goal_id,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// ToDomain converts the read model into the ledger entry type.
func (t *TransactionRead) ToDomain() transaction.Transaction {
	return transaction.Transaction{
		ID:                   t.ID,
		AccountID:            t.AccountID,
		CategoryID:           t.CategoryID,
		Amount:               t.Amount,
		Date:                 t.Date,
		Description:          t.Description,
		Notes:                t.Notes,
		IsRecurring:          t.IsRecurring,
		Type:                 t.Type,
		DestinationAccountID: t.DestinationAccountID,
		GoalID:               t.GoalID,
	}
}

// TransactionCreate is a DTO for creating a new transaction.
type TransactionCreate struct {
	ID                   uuid.UUID
	AccountID            uuid.UUID
	CategoryID           uuid.UUID
	Amount               decimal.Decimal
	Date                 time.Time
	Description          string
	Notes                string
	IsRecurring          bool
	Type                 transaction.Type
	DestinationAccountID *uuid.UUID
	GoalID               *uuid.UUID
}

// TransactionUpdate is a DTO for the mutable fields of a transaction.
// Type and accounts never change after creation.
type TransactionUpdate struct {
	Amount      *decimal.Decimal
	CategoryID  *uuid.UUID
	Date        *time.Time
	Description *string
	Notes       *string
	IsRecurring *bool
	GoalID      *uuid.UUID
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       *transaction.Type
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// TransactionPage is one page of a transaction listing.
type TransactionPage struct {
	Items    []*TransactionRead `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// CategoryTotal is the summed amount of one category over a range.
type CategoryTotal struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

// TypeTotals holds the income and expense sums over a range.
type TypeTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}
