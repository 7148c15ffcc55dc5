package account

import (
	"github.com/amirasaad/finshare/pkg/domain/account"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents the request body for creating an account.
type CreateAccountRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	Type           string          `json:"type" validate:"required,oneof=checking savings wallet investment credit_card"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Color          string          `json:"color" validate:"max=7"`
	Icon           string          `json:"icon" validate:"max=50"`
}

// UpdateAccountRequest carries the fields to change; omitted fields keep
// their value.
type UpdateAccountRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Type     *string `json:"type" validate:"omitempty,oneof=checking savings wallet investment credit_card"`
	IsActive *bool   `json:"is_active"`
	Color    *string `json:"color" validate:"omitempty,max=7"`
	Icon     *string `json:"icon" validate:"omitempty,max=50"`
}

// BalanceResponse is the body of GET /accounts/:id/balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (r CreateAccountRequest) toDTO() dto.AccountCreate {
	return dto.AccountCreate{
		Name:           r.Name,
		Type:           account.Type(r.Type),
		InitialBalance: r.InitialBalance,
		Color:          r.Color,
		Icon:           r.Icon,
	}
}

func (r UpdateAccountRequest) toDTO() dto.AccountUpdate {
	u := dto.AccountUpdate{
		Name:     r.Name,
		IsActive: r.IsActive,
		Color:    r.Color,
		Icon:     r.Icon,
	}
	if r.Type != nil {
		t := account.Type(*r.Type)
		u.Type = &t
	}
	return u
}
