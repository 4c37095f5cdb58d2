package domain

// =====================================================
// Workspace Role Constants (Type Safety)
// =====================================================

// Role represents a workspace-level role. Roles are resolved per workspace:
// a user may be an admin in one workspace and a viewer in another.
type Role string

const (
	// RoleOwner is the workspace owner. The workspace's recorded owner
	// resolves to this role even without a membership row.
	RoleOwner Role = "owner"

	// RoleAdmin has full access including member management.
	RoleAdmin Role = "admin"

	// RoleMember can create and update resources but not manage members
	// or delete containers.
	RoleMember Role = "member"

	// RoleViewer has read-only access to workspace resources.
	RoleViewer Role = "viewer"

	// RoleSuperAdmin is a workspace-level escalation used by support
	// tooling. Treated like RoleOwner by the permission matrix.
	RoleSuperAdmin Role = "super_admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// =====================================================
// System Role Constants (Orthogonal Axis)
// =====================================================

// SystemRole is the account-wide role axis. It gates whether the workspace
// role hierarchy check runs at all; it never grants a specific permission.
type SystemRole string

const (
	SystemRoleUser       SystemRole = "user"
	SystemRoleModerator  SystemRole = "moderator"
	SystemRoleAdmin      SystemRole = "admin"
	SystemRoleSuperAdmin SystemRole = "super_admin"
)

// IsValid reports whether the system role is on the recognized allow-list.
// An unrecognized system role denies the request before any workspace role
// resolution happens.
func (s SystemRole) IsValid() bool {
	switch s {
	case SystemRoleUser, SystemRoleModerator, SystemRoleAdmin, SystemRoleSuperAdmin:
		return true
	default:
		return false
	}
}

// =====================================================
// Aggregate Role Set
// =====================================================

// WorkspaceRoleEntry is one row of a user's aggregate role set.
type WorkspaceRoleEntry struct {
	WorkspaceID string `json:"workspaceId" db:"workspace_id"`
	Role        Role   `json:"role" db:"role"`
}

// UserRoleSet is the precomputed role aggregate for an authenticated user.
// It is loaded once per request and consulted for every resource the request
// touches, so resolution never goes back to the store mid-request.
type UserRoleSet struct {
	UserID         string               `json:"userId"`
	SystemRole     SystemRole           `json:"systemRole"`
	WorkspaceRoles []WorkspaceRoleEntry `json:"workspaceRoles"`
}

// RoleIn returns the user's explicit membership role in the given workspace,
// or ok=false if no membership row exists. The owner fallback is applied by
// the role resolver, not here.
func (s *UserRoleSet) RoleIn(workspaceID string) (Role, bool) {
	for _, entry := range s.WorkspaceRoles {
		if entry.WorkspaceID == workspaceID {
			return entry.Role, true
		}
	}
	return "", false
}
