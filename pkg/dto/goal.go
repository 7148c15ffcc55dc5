package dto

import (
	"time"

	"github.com/amirasaad/finshare/pkg/domain/goal"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalRead is a read-optimized DTO for goal queries.
type GoalRead struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	StartDate     time.Time       `json:"start_date"`
	TargetDate    *time.Time      `json:"target_date,omitempty"`
	IsCompleted   bool            `json:"is_completed"`
	Color         string          `json:"color,omitempty"`
	Icon          string          `json:"icon,omitempty"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToDomain converts the read model into the goal state machine.
func (g *GoalRead) ToDomain() *goal.Goal {
	return &goal.Goal{
		ID:          g.ID,
		OwnerID:     g.UserID,
		Name:        g.Name,
		Description: g.Description,
		Target:      g.TargetAmount,
		Current:     g.CurrentAmount,
		StartDate:   g.StartDate,
		TargetDate:  g.TargetDate,
		IsCompleted: g.IsCompleted,
		Version:     g.Version,
	}
}

// GoalCreate is a DTO for creating a goal.
type GoalCreate struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Description   string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	StartDate     time.Time
	TargetDate    *time.Time
	IsCompleted   bool
	Color         string
	Icon          string
}

// GoalUpdate is a DTO for a partial goal update guarded by the row version.
type GoalUpdate struct {
	Name          *string
	Description   *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	StartDate     *time.Time
	TargetDate    *time.Time
	// ClearTargetDate removes the target date; TargetDate is ignored.
	ClearTargetDate bool
	IsCompleted     *bool
	Color           *string
	Icon            *string
}

// GoalView is a goal enriched with its derived progress for the caller.
type GoalView struct {
	GoalRead
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
	IsOwner            bool            `json:"is_owner"`
	Users              []*GoalUserRead `json:"users,omitempty"`
}

// GoalUserRead is a participant of a goal.
type GoalUserRead struct {
	GoalID   uuid.UUID `json:"goal_id"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	IsOwner  bool      `json:"is_owner"`
	AddedAt  time.Time `json:"added_at"`
}
