package group

import (
	"context"

	"github.com/amirasaad/finshare/pkg/domain/group"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines the interface for user groups and memberships. It also
// serves as the scope.Directory used to resolve visibility.
type Repository interface {
	scope.Directory

	Create(ctx context.Context, create dto.GroupCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.GroupUpdate) error
	Get(ctx context.Context, id uuid.UUID) (*dto.GroupRead, error)
	GetByInviteCode(ctx context.Context, code string) (*dto.GroupRead, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	// Delete soft-deletes the group and its memberships.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser lists live groups where userID is a live member.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*dto.GroupRead, error)

	AddMember(ctx context.Context, groupID, userID uuid.UUID, role group.Role) error
	// RemoveMember soft-deletes a membership.
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	// GetMember returns the live membership or domain.ErrNotFound.
	GetMember(ctx context.Context, groupID, userID uuid.UUID) (*dto.GroupMemberRead, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*dto.GroupMemberRead, error)
}
