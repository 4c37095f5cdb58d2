package domain

import (
	"time"
)

// SpaceRole is a space-local role. Space roles drive space-level business
// logic (notifications, defaults) and are NOT consulted by the access-control
// core, which resolves permissions from the owning workspace's role.
type SpaceRole string

const (
	SpaceRoleViewer SpaceRole = "viewer"
	SpaceRoleMember SpaceRole = "member"
	SpaceRoleAdmin  SpaceRole = "admin"
)

// IsValid checks if the space role is one of the defined constants.
func (r SpaceRole) IsValid() bool {
	switch r {
	case SpaceRoleViewer, SpaceRoleMember, SpaceRoleAdmin:
		return true
	default:
		return false
	}
}

// Space is a project grouping inside a single workspace.
type Space struct {
	ID          string `json:"id" db:"id"`
	WorkspaceID string `json:"workspaceId" db:"workspace_id"`
	Name        string `json:"name" db:"name"`
	Archived    bool   `json:"archived" db:"archived"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// SpaceMember is a space-local membership row.
type SpaceMember struct {
	SpaceID string    `json:"spaceId" db:"space_id"`
	UserID  string    `json:"userId" db:"user_id"`
	Role    SpaceRole `json:"role" db:"role"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
