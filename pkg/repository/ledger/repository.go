package ledger

import (
	"context"

	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository stores materialized account balances.
type Repository interface {
	// Get returns the stored balance or domain.ErrNotFound.
	Get(ctx context.Context, accountID uuid.UUID) (*dto.BalanceRead, error)

	// Init inserts a balance row for a new account.
	Init(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error

	// Adjust adds delta to the stored balance when the stored version equals
	// version; otherwise it fails with domain.ErrConflict.
	Adjust(ctx context.Context, accountID uuid.UUID, version int64, delta decimal.Decimal) error

	// Reset overwrites the stored balance after a rebuild, creating the row
	// when missing.
	Reset(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error

	Delete(ctx context.Context, accountID uuid.UUID) error
}
