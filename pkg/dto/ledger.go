package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceRead is a materialized account balance.
type BalanceRead struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	RebuiltAt *time.Time      `json:"rebuilt_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DriftReport is the outcome of rebuilding one account's stored balance.
type DriftReport struct {
	AccountID uuid.UUID       `json:"account_id"`
	Stored    decimal.Decimal `json:"stored"`
	Replayed  decimal.Decimal `json:"replayed"`
	Drift     decimal.Decimal `json:"drift"`
	Corrected bool            `json:"corrected"`
}
