package authz

import (
	"net/http"
	"testing"

	"boardstack-api/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMatrix_DenyByDefault(t *testing.T) {
	m := NewMatrix()

	tests := []struct {
		name   string
		role   domain.Role
		path   string
		method string
	}{
		{"UnknownRole", domain.Role("intern"), "/task/Tk1", http.MethodGet},
		{"EmptyRole", domain.Role(""), "/workspace/W1", http.MethodGet},
		{"UnknownNamespace", domain.RoleOwner, "/billing/invoice", http.MethodGet},
		{"ViewerWrite", domain.RoleViewer, "/task/Tk1", http.MethodPatch},
		{"ViewerDelete", domain.RoleViewer, "/board/B1", http.MethodDelete},
		{"MemberArchiveSpace", domain.RoleMember, "/space/S1/archive", http.MethodPost},
		{"MemberManageMembers", domain.RoleMember, "/workspace/W1/members", http.MethodPost},
		{"AdminDeleteWorkspace", domain.RoleAdmin, "/workspace/W1", http.MethodDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, m.HasPermission(tt.role, tt.path, tt.method),
				"expected deny for (%s, %s, %s)", tt.role, tt.path, tt.method)
		})
	}
}

func TestMatrix_Allows(t *testing.T) {
	m := NewMatrix()

	tests := []struct {
		name   string
		role   domain.Role
		path   string
		method string
	}{
		{"OwnerDeleteWorkspace", domain.RoleOwner, "/workspace/W1", http.MethodDelete},
		{"OwnerArchiveSpace", domain.RoleOwner, "/space/S1/archive", http.MethodPost},
		{"SuperAdminAnything", domain.RoleSuperAdmin, "/board/B1/export", http.MethodGet},
		{"AdminManageMembers", domain.RoleAdmin, "/workspace/W1/members", http.MethodPost},
		{"AdminArchiveSpace", domain.RoleAdmin, "/space/S1/archive", http.MethodPost},
		{"MemberReadSpace", domain.RoleMember, "/space/S1", http.MethodGet},
		{"MemberEditTask", domain.RoleMember, "/task/Tk1", http.MethodPatch},
		{"MemberCreateBoard", domain.RoleMember, "/board", http.MethodPost},
		{"ViewerReadTask", domain.RoleViewer, "/task/Tk1", http.MethodGet},
		{"ViewerReadWorkspace", domain.RoleViewer, "/workspace/W1", http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, m.HasPermission(tt.role, tt.path, tt.method),
				"expected allow for (%s, %s, %s)", tt.role, tt.path, tt.method)
		})
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/space/:id", "/space/S1", true},
		{"/space/:id", "/space/:id", true},
		{"/space/:id", "/space/S1/archive", false},
		{"/space/*", "/space/S1/archive", true},
		{"/space/*", "/space", false},
		{"/space", "/space", true},
		{"/space", "/board", false},
		{"/workspace/:id/members", "/workspace/W1/members", true},
		{"/workspace/:id/members", "/workspace/W1/settings", false},
		{"/task/:id", "/task", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPattern(tt.pattern, tt.path))
		})
	}
}

// A single rule with a :param wildcard must cover every concrete sub-path,
// so the matrix stays small regardless of how many entities exist.
func TestMatrix_ParameterizedRuleCoversConcreteIDs(t *testing.T) {
	m := NewMatrix()

	for _, id := range []string{"S1", "a-b-c", "01HV5TZ0"} {
		assert.True(t, m.HasPermission(domain.RoleViewer, "/space/"+id, http.MethodGet))
		assert.False(t, m.HasPermission(domain.RoleViewer, "/space/"+id, http.MethodDelete))
	}
}
