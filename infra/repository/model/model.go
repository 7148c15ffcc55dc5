// Package model holds the gorm persistence models shared by the repository
// implementations. Soft-deletable rows embed Base; gorm then hides deleted
// rows from every query that doesn't opt out with Unscoped.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base carries the identity and lifecycle columns of soft-deletable rows.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate assigns an ID when the caller didn't.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User represents a user record in the database.
type User struct {
	Base
	Username string `gorm:"uniqueIndex;not null;size:50"`
	Email    string `gorm:"uniqueIndex;not null;size:255"`
	Password string `gorm:"not null"`
	Names    string `gorm:"size:255"`
}

// Account is a money container owned by one user. Its balance is derived
// from transactions, never stored here.
type Account struct {
	Base
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"size:100;not null"`
	Type           string          `gorm:"size:20;not null"`
	InitialBalance decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	Color          string          `gorm:"size:20"`
	Icon           string          `gorm:"size:50"`
}

// Category classifies transactions as income or expense.
type Category struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name   string    `gorm:"size:100;not null"`
	Type   string    `gorm:"size:20;not null"`
	Color  string    `gorm:"size:20"`
	Icon   string    `gorm:"size:50"`
}

// Transaction is a ledger entry. Rows are hard-deleted.
type Transaction struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount               decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Date                 time.Time       `gorm:"not null;index"`
	Description          string          `gorm:"size:500"`
	Notes                string          `gorm:"size:1000"`
	IsRecurring          bool            `gorm:"not null;default:false"`
	Type                 string          `gorm:"size:20;not null;index"`
	DestinationAccountID *uuid.UUID      `gorm:"type:uuid;index"`
	GoalID               *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BeforeCreate assigns an ID when the caller didn't.
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Budget caps spending for one category in one calendar month.
type Budget struct {
	Base
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Month      int             `gorm:"not null"`
	Year       int             `gorm:"not null"`
	Limit      decimal.Decimal `gorm:"column:limit_amount;type:numeric(18,2);not null"`
}

// Goal is a savings target. Version guards concurrent contribution writes.
type Goal struct {
	Base
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"size:100;not null"`
	Description   string          `gorm:"size:500"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	StartDate     time.Time       `gorm:"not null"`
	TargetDate    *time.Time
	IsCompleted   bool   `gorm:"not null;default:false"`
	Color         string `gorm:"size:20"`
	Icon          string `gorm:"size:50"`
	Version       int64  `gorm:"not null;default:1"`
}

// GoalUser links a participant to a goal.
type GoalUser struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	GoalID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_goal_user"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_goal_user"`
	IsOwner bool      `gorm:"not null;default:false"`
	AddedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an ID when the caller didn't.
func (g *GoalUser) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// UserGroup pools users that may see each other's data.
type UserGroup struct {
	Base
	Name        string    `gorm:"size:100;not null"`
	Description string    `gorm:"size:500"`
	InviteCode  string    `gorm:"size:8;not null;index"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
}

// UserGroupMember is a membership row; leaving soft-deletes it.
type UserGroupMember struct {
	Base
	GroupID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Role     string    `gorm:"size:10;not null"`
	JoinedAt time.Time `gorm:"not null"`
}

// AccountBalance is the optional materialized balance of an account.
type AccountBalance struct {
	AccountID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Balance   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	Version   int64           `gorm:"not null;default:1"`
	RebuiltAt *time.Time
	UpdatedAt time.Time
}

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Account{},
		&Category{},
		&Transaction{},
		&Budget{},
		&Goal{},
		&GoalUser{},
		&UserGroup{},
		&UserGroupMember{},
		&AccountBalance{},
	}
}
