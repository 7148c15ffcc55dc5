package transaction

import (
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest represents the request body for posting a
// transaction.
type CreateTransactionRequest struct {
	AccountID            uuid.UUID       `json:"account_id" validate:"required"`
	CategoryID           uuid.UUID       `json:"category_id" validate:"required"`
	Amount               decimal.Decimal `json:"amount"`
	Date                 string          `json:"date"`
	Description          string          `json:"description" validate:"required,max=255"`
	Notes                string          `json:"notes" validate:"max=1000"`
	IsRecurring          bool            `json:"is_recurring"`
	Type                 string          `json:"type" validate:"required,oneof=income expense transfer goal_deposit goal_withdraw"`
	DestinationAccountID *uuid.UUID      `json:"destination_account_id"`
	GoalID               *uuid.UUID      `json:"goal_id"`
}

// UpdateTransactionRequest carries the fields to change. Type and accounts
// are fixed at creation.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Date        *string          `json:"date"`
	Description *string          `json:"description" validate:"omitempty,max=255"`
	Notes       *string          `json:"notes" validate:"omitempty,max=1000"`
	IsRecurring *bool            `json:"is_recurring"`
	GoalID      *uuid.UUID       `json:"goal_id"`
}

func (r CreateTransactionRequest) toDTO() (dto.TransactionCreate, error) {
	in := dto.TransactionCreate{
		AccountID:            r.AccountID,
		CategoryID:           r.CategoryID,
		Amount:               r.Amount,
		Description:          r.Description,
		Notes:                r.Notes,
		IsRecurring:          r.IsRecurring,
		Type:                 transaction.Type(r.Type),
		DestinationAccountID: r.DestinationAccountID,
		GoalID:               r.GoalID,
	}
	date, err := common.ParseDate(r.Date)
	if err != nil {
		return in, err
	}
	if date != nil {
		in.Date = *date
	}
	return in, nil
}

func (r UpdateTransactionRequest) toDTO() (dto.TransactionUpdate, error) {
	u := dto.TransactionUpdate{
		Amount:      r.Amount,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		Notes:       r.Notes,
		IsRecurring: r.IsRecurring,
		GoalID:      r.GoalID,
	}
	if r.Date != nil {
		date, err := common.ParseDate(*r.Date)
		if err != nil {
			return u, err
		}
		u.Date = date
	}
	return u, nil
}
