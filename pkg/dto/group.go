package dto

import (
	"time"

	"github.com/amirasaad/finshare/pkg/domain/group"
	"github.com/google/uuid"
)

// GroupRead is a read-optimized DTO for user group queries.
type GroupRead struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupCreate is a DTO for creating a group.
type GroupCreate struct {
	ID          uuid.UUID
	Name        string
	Description string
	InviteCode  string
	CreatedBy   uuid.UUID
}

// GroupUpdate is a DTO for a partial group update.
type GroupUpdate struct {
	Name        *string
	Description *string
	InviteCode  *string
}

// GroupMemberRead is a live membership row.
type GroupMemberRead struct {
	ID       uuid.UUID  `json:"id"`
	GroupID  uuid.UUID  `json:"group_id"`
	UserID   uuid.UUID  `json:"user_id"`
	Username string     `json:"username,omitempty"`
	Email    string     `json:"email,omitempty"`
	Role     group.Role `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// GroupView is a group as seen by one of its members.
type GroupView struct {
	GroupRead
	Role        group.Role         `json:"role"`
	MemberCount int                `json:"member_count"`
	Members     []*GroupMemberRead `json:"members,omitempty"`
}
