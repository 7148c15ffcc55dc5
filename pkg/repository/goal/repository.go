package goal

import (
	"context"

	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines the interface for goal and goal participant access.
type Repository interface {
	Create(ctx context.Context, create dto.GoalCreate) error
	Get(ctx context.Context, id uuid.UUID) (*dto.GoalRead, error)

	// Update applies the fields when the stored version equals version,
	// bumping it; otherwise it fails with domain.ErrConflict.
	Update(ctx context.Context, id uuid.UUID, version int64, update dto.GoalUpdate) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ListVisible lists goals owned by, or shared with, any of userIDs.
	ListVisible(ctx context.Context, userIDs []uuid.UUID, completed *bool) ([]*dto.GoalRead, error)

	// ListSharedWith lists goals where userID participates but is not the owner.
	ListSharedWith(ctx context.Context, userID uuid.UUID) ([]*dto.GoalRead, error)

	// ListParticipating lists live goals where userID has a participant row.
	ListParticipating(ctx context.Context, userID uuid.UUID) ([]*dto.GoalRead, error)

	AddUser(ctx context.Context, goalID, userID uuid.UUID, isOwner bool) error
	RemoveUser(ctx context.Context, goalID, userID uuid.UUID) error
	// GetUser returns the participant row or domain.ErrNotFound.
	GetUser(ctx context.Context, goalID, userID uuid.UUID) (*dto.GoalUserRead, error)
	ListUsers(ctx context.Context, goalID uuid.UUID) ([]*dto.GoalUserRead, error)
}
