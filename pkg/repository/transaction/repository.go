package transaction

import (
	"context"
	"time"

	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for ledger entry access. Listings and
// aggregates take the owning user ids produced by the scope resolver.
type Repository interface {
	Create(ctx context.Context, create dto.TransactionCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.TransactionUpdate) error
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForAccount returns every entry where the account is the source or
	// the transfer destination.
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]*dto.TransactionRead, error)

	// CountForAccount counts entries referencing the account on either side.
	CountForAccount(ctx context.Context, accountID uuid.UUID) (int64, error)

	// List pages through entries of accounts owned by userIDs, newest first.
	List(ctx context.Context, userIDs []uuid.UUID, filter dto.TransactionFilter) ([]*dto.TransactionRead, int64, error)

	// SumForCategory sums entries of one type and category in [from, to).
	SumForCategory(
		ctx context.Context,
		userIDs []uuid.UUID,
		categoryID uuid.UUID,
		typ transaction.Type,
		from, to time.Time,
	) (decimal.Decimal, error)

	// TotalsByType sums income and expense entries in [from, to).
	TotalsByType(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) (dto.TypeTotals, error)

	// TotalsByCategory sums entries of one type per category in [from, to),
	// largest first.
	TotalsByCategory(
		ctx context.Context,
		userIDs []uuid.UUID,
		typ transaction.Type,
		from, to time.Time,
	) ([]dto.CategoryTotal, error)
}
