// Package events declares the domain events published after a unit of
// work commits.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is anything published on the event bus.
type Event interface {
	Type() string
}

// EventType names an event on the wire.
type EventType string

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

const (
	EventTypeGoalCompleted         EventType = "Goal.Completed"
	EventTypeGoalReopened          EventType = "Goal.Reopened"
	EventTypeTransactionPosted     EventType = "Transaction.Posted"
	EventTypeTransactionRemoved    EventType = "Transaction.Removed"
	EventTypeGroupMemberJoined     EventType = "Group.MemberJoined"
	EventTypeBalanceDriftCorrected EventType = "Ledger.DriftCorrected"
)

// Meta carries the fields every event shares.
type Meta struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMeta stamps a fresh event id and time for userID.
func NewMeta(userID uuid.UUID) Meta {
	return Meta{ID: uuid.New(), UserID: userID, OccurredAt: time.Now().UTC()}
}

// GoalCompleted fires when a goal's current amount reaches its target.
type GoalCompleted struct {
	Meta
	GoalID  uuid.UUID       `json:"goal_id"`
	Current decimal.Decimal `json:"current"`
	Target  decimal.Decimal `json:"target"`
}

func (GoalCompleted) Type() string { return EventTypeGoalCompleted.String() }

// GoalReopened fires when a completed goal drops below its target.
type GoalReopened struct {
	Meta
	GoalID  uuid.UUID       `json:"goal_id"`
	Current decimal.Decimal `json:"current"`
	Target  decimal.Decimal `json:"target"`
}

func (GoalReopened) Type() string { return EventTypeGoalReopened.String() }

// TransactionPosted fires after a transaction is created or edited.
type TransactionPosted struct {
	Meta
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Edited        bool            `json:"edited"`
}

func (TransactionPosted) Type() string { return EventTypeTransactionPosted.String() }

// TransactionRemoved fires after a transaction is deleted.
type TransactionRemoved struct {
	Meta
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
}

func (TransactionRemoved) Type() string { return EventTypeTransactionRemoved.String() }

// GroupMemberJoined fires when a user joins a group by invite code.
type GroupMemberJoined struct {
	Meta
	GroupID uuid.UUID `json:"group_id"`
}

func (GroupMemberJoined) Type() string { return EventTypeGroupMemberJoined.String() }

// BalanceDriftCorrected fires when a ledger rebuild rewrites a stored balance.
type BalanceDriftCorrected struct {
	Meta
	AccountID uuid.UUID       `json:"account_id"`
	Stored    decimal.Decimal `json:"stored"`
	Replayed  decimal.Decimal `json:"replayed"`
}

func (BalanceDriftCorrected) Type() string { return EventTypeBalanceDriftCorrected.String() }
