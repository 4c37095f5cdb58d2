package authz

import (
	"fmt"
	"net/http"

	"boardstack-api/internal/domain"
)

// Code classifies a terminal authorization failure. None of these are retried
// internally; middleware maps them straight to an HTTP response.
type Code string

const (
	// CodeMissingResourceID - the request carried no resource id in any of
	// the supported locations (route param, body field).
	CodeMissingResourceID Code = "MISSING_RESOURCE_ID"

	// CodeEntityNotFound - the entity, or a link in its containment chain,
	// does not exist. Carries the kind of the missing entity.
	CodeEntityNotFound Code = "ENTITY_NOT_FOUND"

	// CodeNoWorkspaceAccess - the user has no resolvable role in the owning
	// workspace: no membership row and not the recorded owner.
	CodeNoWorkspaceAccess Code = "NO_WORKSPACE_ACCESS"

	// CodeInvalidSystemRole - the user's system role is not on the
	// recognized allow-list. Distinct from NO_WORKSPACE_ACCESS.
	CodeInvalidSystemRole Code = "INVALID_SYSTEM_ROLE"

	// CodePermissionDenied - the role matrix has no allow entry for
	// (role, path, method).
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// CodeRateLimited - the per-user sliding window cap was exceeded.
	CodeRateLimited Code = "RATE_LIMITED"

	// CodeCollaboratorFailure - an entity store call failed or was
	// cancelled. Surfaced as a server error, never as a deny, so monitoring
	// can tell "intentionally denied" from "system degraded".
	CodeCollaboratorFailure Code = "COLLABORATOR_FAILURE"
)

// Error is a classified authorization failure.
type Error struct {
	Code Code

	// Kind names the missing entity for CodeEntityNotFound.
	Kind Kind

	// Role, Path and Method describe the denied matrix lookup for
	// CodePermissionDenied.
	Role   domain.Role
	Path   string
	Method string

	// Err is the wrapped collaborator error for CodeCollaboratorFailure.
	Err error
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeEntityNotFound:
		return fmt.Sprintf("%s not found", e.Kind)
	case CodePermissionDenied:
		return fmt.Sprintf("role %q is not permitted to %s %s", e.Role, e.Method, e.Path)
	case CodeCollaboratorFailure:
		return fmt.Sprintf("entity store failure: %v", e.Err)
	case CodeNoWorkspaceAccess:
		return "no access to this workspace"
	case CodeInvalidSystemRole:
		return "unrecognized system role"
	case CodeMissingResourceID:
		return "missing resource id"
	case CodeRateLimited:
		return "rate limit exceeded"
	default:
		return string(e.Code)
	}
}

// Unwrap exposes the collaborator error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the classification to its HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeMissingResourceID:
		return http.StatusBadRequest
	case CodeEntityNotFound:
		return http.StatusNotFound
	case CodeNoWorkspaceAccess, CodeInvalidSystemRole, CodePermissionDenied:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrMissingResourceID builds a MISSING_RESOURCE_ID failure.
func ErrMissingResourceID() *Error {
	return &Error{Code: CodeMissingResourceID}
}

// ErrEntityNotFound builds an ENTITY_NOT_FOUND failure naming the missing kind.
func ErrEntityNotFound(kind Kind) *Error {
	return &Error{Code: CodeEntityNotFound, Kind: kind}
}

// ErrNoWorkspaceAccess builds a NO_WORKSPACE_ACCESS failure.
func ErrNoWorkspaceAccess() *Error {
	return &Error{Code: CodeNoWorkspaceAccess}
}

// ErrInvalidSystemRole builds an INVALID_SYSTEM_ROLE failure.
func ErrInvalidSystemRole() *Error {
	return &Error{Code: CodeInvalidSystemRole}
}

// ErrPermissionDenied builds a PERMISSION_DENIED failure for a matrix miss.
func ErrPermissionDenied(role domain.Role, path, method string) *Error {
	return &Error{Code: CodePermissionDenied, Role: role, Path: path, Method: method}
}

// ErrRateLimited builds a RATE_LIMITED failure.
func ErrRateLimited() *Error {
	return &Error{Code: CodeRateLimited}
}

// ErrCollaboratorFailure wraps a store error. Cancellation and timeouts land
// here too: availability must not be masked as an authorization decision.
func ErrCollaboratorFailure(err error) *Error {
	return &Error{Code: CodeCollaboratorFailure, Err: err}
}
