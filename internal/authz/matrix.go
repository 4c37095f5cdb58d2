package authz

import (
	"net/http"
	"strings"

	"boardstack-api/internal/domain"
)

// =====================================================
// Role Matrix
// =====================================================
//
// The matrix is pure data keyed by role: a list of (path pattern, methods)
// rules over the logical namespaces /workspace, /space, /board and /task.
// A pattern segment of the form ":name" matches any single path segment and
// a trailing "*" matches one or more remaining segments. Absence of a
// matching rule is a deny; there are no deny rules.

// rule is one allow entry: a path pattern plus the methods it covers.
type rule struct {
	pattern string
	methods []string
}

// Matrix answers "may this role perform this method on this logical path".
type Matrix struct {
	rules map[domain.Role][]rule
}

var readOnly = []string{http.MethodGet, http.MethodHead}

var allMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost,
	http.MethodPut, http.MethodPatch, http.MethodDelete,
}

var editMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch}

// NewMatrix builds the default role matrix. Loaded once at process start;
// the table is never mutated afterwards, so lookups are safe concurrently.
func NewMatrix() *Matrix {
	full := []rule{
		{"/workspace", allMethods},
		{"/workspace/*", allMethods},
		{"/space", allMethods},
		{"/space/*", allMethods},
		{"/board", allMethods},
		{"/board/*", allMethods},
		{"/task", allMethods},
		{"/task/*", allMethods},
	}

	return &Matrix{rules: map[domain.Role][]rule{
		domain.RoleOwner:      full,
		domain.RoleSuperAdmin: full,

		// Admins manage everything except deleting the workspace itself.
		domain.RoleAdmin: {
			{"/workspace", readOnly},
			{"/workspace/:id", []string{http.MethodGet, http.MethodHead, http.MethodPatch, http.MethodPut}},
			{"/workspace/:id/*", allMethods},
			{"/space", allMethods},
			{"/space/*", allMethods},
			{"/board", allMethods},
			{"/board/*", allMethods},
			{"/task", allMethods},
			{"/task/*", allMethods},
		},

		// Members read everything and work with boards and tasks; they do
		// not archive spaces, manage members or delete containers.
		domain.RoleMember: {
			{"/workspace", readOnly},
			{"/workspace/:id", readOnly},
			{"/workspace/:id/members", readOnly},
			{"/space", readOnly},
			{"/space/:id", readOnly},
			{"/board", append(readOnly, editMethods...)},
			{"/board/:id", append(readOnly, editMethods...)},
			{"/board/:id/*", readOnly},
			{"/task", allMethods},
			{"/task/*", allMethods},
		},

		domain.RoleViewer: {
			{"/workspace", readOnly},
			{"/workspace/:id", readOnly},
			{"/space", readOnly},
			{"/space/:id", readOnly},
			{"/board", readOnly},
			{"/board/:id", readOnly},
			{"/task", readOnly},
			{"/task/:id", readOnly},
		},
	}}
}

// HasPermission reports whether the role may perform method on path.
// Unknown role, unknown path or uncovered method all default to false.
func (m *Matrix) HasPermission(role domain.Role, path, method string) bool {
	for _, r := range m.rules[role] {
		if !matchPattern(r.pattern, path) {
			continue
		}
		for _, allowed := range r.methods {
			if allowed == method {
				return true
			}
		}
	}
	return false
}

// matchPattern matches a rule pattern against a logical path segment by
// segment. ":name" matches any one segment; a final "*" matches the rest of
// the path (at least one segment). The path itself may also carry ":name"
// placeholders when the caller supplies an operation template rather than a
// concrete id; a pattern wildcard segment matches those too.
func matchPattern(pattern, path string) bool {
	pSegs := splitPath(pattern)
	tSegs := splitPath(path)

	for i, seg := range pSegs {
		if seg == "*" {
			// Trailing wildcard: consumes the remainder, which must be
			// non-empty so "/space/*" does not match "/space".
			return i == len(pSegs)-1 && len(tSegs) > i
		}
		if i >= len(tSegs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != tSegs[i] {
			return false
		}
	}
	return len(pSegs) == len(tSegs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
