package authz

import (
	"testing"

	"boardstack-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRole_ExplicitMembership(t *testing.T) {
	ws := &domain.Workspace{ID: "W1", OwnerID: "u-owner"}
	roles := roleSet("u-member", domain.SystemRoleUser,
		domain.WorkspaceRoleEntry{WorkspaceID: "W1", Role: domain.RoleMember},
		domain.WorkspaceRoleEntry{WorkspaceID: "W2", Role: domain.RoleAdmin},
	)

	role, err := ResolveRole(roles, ws)

	require.Nil(t, err)
	assert.Equal(t, domain.RoleMember, role)
}

// The recorded owner resolves to "owner" even with no membership row.
func TestResolveRole_OwnerFallbackWithoutMembership(t *testing.T) {
	ws := &domain.Workspace{ID: "W1", OwnerID: "u-owner"}
	roles := roleSet("u-owner", domain.SystemRoleUser)

	role, err := ResolveRole(roles, ws)

	require.Nil(t, err)
	assert.Equal(t, domain.RoleOwner, role)
}

// An explicit membership row wins over owner status: a deliberately assigned
// role is never silently overridden by the owner shortcut.
func TestResolveRole_ExplicitMembershipWinsOverOwner(t *testing.T) {
	ws := &domain.Workspace{ID: "W1", OwnerID: "u-owner"}
	roles := roleSet("u-owner", domain.SystemRoleUser,
		domain.WorkspaceRoleEntry{WorkspaceID: "W1", Role: domain.RoleViewer},
	)

	role, err := ResolveRole(roles, ws)

	require.Nil(t, err)
	assert.Equal(t, domain.RoleViewer, role)
}

func TestResolveRole_NoAccess(t *testing.T) {
	ws := &domain.Workspace{ID: "W1", OwnerID: "u-owner"}
	roles := roleSet("u-stranger", domain.SystemRoleUser,
		domain.WorkspaceRoleEntry{WorkspaceID: "W2", Role: domain.RoleAdmin},
	)

	_, err := ResolveRole(roles, ws)

	require.NotNil(t, err)
	assert.Equal(t, CodeNoWorkspaceAccess, err.Code)
}

// An unrecognized system role denies before any workspace resolution, with
// its own classification: even the owner is refused.
func TestResolveRole_InvalidSystemRole(t *testing.T) {
	ws := &domain.Workspace{ID: "W1", OwnerID: "u-owner"}
	roles := roleSet("u-owner", domain.SystemRole("banned"))

	_, err := ResolveRole(roles, ws)

	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidSystemRole, err.Code)
}

func TestResolveRole_AllSystemRolesOnAllowList(t *testing.T) {
	ws := &domain.Workspace{ID: "W1", OwnerID: "u-owner"}

	for _, sys := range []domain.SystemRole{
		domain.SystemRoleUser,
		domain.SystemRoleModerator,
		domain.SystemRoleAdmin,
		domain.SystemRoleSuperAdmin,
	} {
		t.Run(string(sys), func(t *testing.T) {
			role, err := ResolveRole(roleSet("u-owner", sys), ws)
			require.Nil(t, err)
			assert.Equal(t, domain.RoleOwner, role)
		})
	}
}
