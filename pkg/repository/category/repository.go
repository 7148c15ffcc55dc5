package category

import (
	"context"

	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines the interface for category data access operations.
type Repository interface {
	Create(ctx context.Context, create dto.CategoryCreate) error
	CreateMany(ctx context.Context, creates []dto.CategoryCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.CategoryUpdate) error
	Get(ctx context.Context, id uuid.UUID) (*dto.CategoryRead, error)
	// ListByUser lists a user's categories, optionally of one type.
	ListByUser(ctx context.Context, userID uuid.UUID, typ *category.Type) ([]*dto.CategoryRead, error)
	// Delete soft-deletes a category.
	Delete(ctx context.Context, id uuid.UUID) error
}
