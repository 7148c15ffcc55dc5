package budget

import (
	"context"

	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines the interface for budget data access operations.
type Repository interface {
	Create(ctx context.Context, create dto.BudgetCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.BudgetUpdate) error
	Get(ctx context.Context, id uuid.UUID) (*dto.BudgetRead, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUsers lists live budgets of userIDs, optionally for one month.
	ListByUsers(ctx context.Context, userIDs []uuid.UUID, month, year *int) ([]*dto.BudgetRead, error)

	// Exists reports whether a live budget already covers the key.
	Exists(ctx context.Context, userID, categoryID uuid.UUID, month, year int) (bool, error)
}
