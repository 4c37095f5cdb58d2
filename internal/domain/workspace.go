package domain

import (
	"time"
)

// Workspace is the root tenant container. Every space, board and task is
// reachable from exactly one workspace, and all access-control decisions are
// resolved against the workspace the resource belongs to.
type Workspace struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	OwnerID string `json:"ownerId" db:"owner_id"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsOwner reports whether the given user is the recorded workspace owner.
// The owner is implicitly authorized even without a membership row.
func (w *Workspace) IsOwner(userID string) bool {
	return userID != "" && w.OwnerID == userID
}

// WorkspaceMember is the membership of a user in a workspace with the
// assigned workspace role. Junction table: (workspace_id, user_id) unique.
type WorkspaceMember struct {
	WorkspaceID string `json:"workspaceId" db:"workspace_id"`
	UserID      string `json:"userId" db:"user_id"`
	Role        Role   `json:"role" db:"role"`

	InvitedBy *string   `json:"invitedBy,omitempty" db:"invited_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
