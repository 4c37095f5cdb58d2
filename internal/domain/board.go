package domain

import (
	"time"
)

// Board is a kanban/list view inside a single space. Boards carry no
// membership of their own; access is inherited through Space → Workspace.
type Board struct {
	ID      string `json:"id" db:"id"`
	SpaceID string `json:"spaceId" db:"space_id"`
	Name    string `json:"name" db:"name"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
