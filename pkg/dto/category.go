package dto

import (
	"time"

	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/google/uuid"
)

// CategoryRead is a read-optimized DTO for category queries.
type CategoryRead struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Name      string        `json:"name"`
	Type      category.Type `json:"type"`
	Color     string        `json:"color,omitempty"`
	Icon      string        `json:"icon,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CategoryCreate is a DTO for creating a category.
type CategoryCreate struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Type   category.Type
	Color  string
	Icon   string
}

// CategoryUpdate is a DTO for a partial category update.
type CategoryUpdate struct {
	Name  *string
	Color *string
	Icon  *string
}
