package account

import (
	"context"

	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines the interface for account data access operations with
// support for CQRS (Command/Query Responsibility Segregation).
type Repository interface {
	// Create inserts a new account record from a DTO.
	Create(ctx context.Context, create dto.AccountCreate) error

	// Update updates an existing account by its ID using a DTO.
	Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error

	// Get retrieves an account by its ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error)

	// ListByUsers lists the accounts owned by any of userIDs.
	ListByUsers(ctx context.Context, userIDs []uuid.UUID, activeOnly bool) ([]*dto.AccountRead, error)

	// Delete removes an account row permanently.
	Delete(ctx context.Context, id uuid.UUID) error
}
