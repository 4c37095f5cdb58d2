package authz

import (
	"boardstack-api/internal/domain"
)

// ResolveRole determines the user's effective role in a workspace.
//
// Order matters and is deliberate:
//  1. The system role allow-list is checked first; an unrecognized system
//     role denies before any workspace resolution happens.
//  2. An explicit membership entry is authoritative. It wins even when the
//     user is also the recorded owner: a deliberately assigned (possibly
//     downgraded) membership role is never silently overridden by the
//     owner shortcut.
//  3. Absent a membership entry, the recorded workspace owner resolves to a
//     transient "owner" role. This fallback is an invariant, not a bug: the
//     owner keeps access even when no membership row was ever written.
//  4. Otherwise the user has no access to the workspace at all.
func ResolveRole(roles *domain.UserRoleSet, ws *domain.Workspace) (domain.Role, *Error) {
	if !roles.SystemRole.IsValid() {
		return "", ErrInvalidSystemRole()
	}

	if role, ok := roles.RoleIn(ws.ID); ok {
		return role, nil
	}

	if ws.IsOwner(roles.UserID) {
		return domain.RoleOwner, nil
	}

	return "", ErrNoWorkspaceAccess()
}
