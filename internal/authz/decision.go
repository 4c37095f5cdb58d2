package authz

import (
	"context"

	"boardstack-api/internal/domain"
)

// Authorizer combines the entity resolver, the role resolver and the role
// matrix into one allow/deny decision per resource. It holds no per-request
// state: repeated identical checks against unchanged entities and roles yield
// identical decisions.
type Authorizer struct {
	resolver *EntityResolver
	matrix   *Matrix
}

// NewAuthorizer builds an authorizer over the given resolver and matrix.
func NewAuthorizer(resolver *EntityResolver, matrix *Matrix) *Authorizer {
	return &Authorizer{resolver: resolver, matrix: matrix}
}

// ResolveChain exposes pure chain resolution, with no role or matrix
// check, for callers that established access by other means and still
// need the entity.
func (a *Authorizer) ResolveChain(ctx context.Context, kind Kind, id string) (*Chain, *Error) {
	return a.resolver.Resolve(ctx, kind, id)
}

// Decide is the strict matrix check: the matrix must explicitly allow
// (role, path, method). Returns nil on allow.
func (a *Authorizer) Decide(role domain.Role, path, method string) *Error {
	if a.matrix.HasPermission(role, path, method) {
		return nil
	}
	return ErrPermissionDenied(role, path, method)
}

// AuthorizeResource resolves the entity chain for (kind, id), resolves the
// user's workspace role and applies the strict matrix check against
// (path, method). Used by the workspace, space and board guards.
//
// All three kinds use the strict check. The looser "any workspace role
// suffices" shortcut is reserved for task visibility (AuthorizeTaskRead).
func (a *Authorizer) AuthorizeResource(ctx context.Context, roles *domain.UserRoleSet, kind Kind, id, path, method string) (*Chain, *Error) {
	chain, err := a.resolver.Resolve(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	role, err := ResolveRole(roles, chain.Workspace)
	if err != nil {
		return nil, err
	}

	if derr := a.Decide(role, path, method); derr != nil {
		return nil, derr
	}
	return chain, nil
}

// AuthorizeTaskRead governs task visibility.
//
// Direct access first: an assignee, the reporter or a watcher always sees
// the task, whatever their workspace role (including none). The short-circuit
// only requires the task itself to exist; the chain walk is skipped entirely.
//
// Otherwise any resolvable workspace role suffices: this endpoint gates
// visibility, not mutation, so no per-path matrix lookup happens.
func (a *Authorizer) AuthorizeTaskRead(ctx context.Context, roles *domain.UserRoleSet, taskID string) (*Chain, *Error) {
	chain, task, err := a.resolver.ResolveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.HasDirectReadAccess(roles.UserID) {
		chain.Task = task
		return chain, nil
	}

	chain, err = a.resolver.ResolveTaskChain(ctx, task)
	if err != nil {
		return nil, err
	}

	if _, rerr := ResolveRole(roles, chain.Workspace); rerr != nil {
		return nil, rerr
	}
	return chain, nil
}

// AuthorizeTaskWrite governs task mutation.
//
// The direct-access grant is narrower than for reads: assignee or reporter
// only, never a watcher. Task participants keep write access to their own
// tasks even when their workspace role would deny the path.
//
// Without direct access the full chain is resolved and the strict matrix
// check runs against the request's (path, method).
func (a *Authorizer) AuthorizeTaskWrite(ctx context.Context, roles *domain.UserRoleSet, taskID, path, method string) (*Chain, *Error) {
	chain, task, err := a.resolver.ResolveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.HasDirectWriteAccess(roles.UserID) {
		chain.Task = task
		return chain, nil
	}

	chain, err = a.resolver.ResolveTaskChain(ctx, task)
	if err != nil {
		return nil, err
	}

	role, rerr := ResolveRole(roles, chain.Workspace)
	if rerr != nil {
		return nil, rerr
	}

	if derr := a.Decide(role, path, method); derr != nil {
		return nil, derr
	}
	return chain, nil
}
