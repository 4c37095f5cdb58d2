package authz

import (
	"context"
	"errors"

	"boardstack-api/internal/domain"
)

// Kind identifies a resource kind in the containment hierarchy.
type Kind string

const (
	KindWorkspace Kind = "workspace"
	KindSpace     Kind = "space"
	KindBoard     Kind = "board"
	KindTask      Kind = "task"
)

// PathPrefix returns the logical namespace for matrix lookups.
func (k Kind) PathPrefix() string {
	return "/" + string(k)
}

// =====================================================
// Store contracts
// =====================================================
//
// The core only ever reads entities, one lookup per chain link, and must be
// able to tell "missing" (domain.ErrNotFound) from "store unavailable"
// (anything else). Implementations live in internal/repo.

// WorkspaceStore looks up workspaces by id.
type WorkspaceStore interface {
	GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error)
}

// SpaceStore looks up spaces by id.
type SpaceStore interface {
	GetSpace(ctx context.Context, id string) (*domain.Space, error)
}

// BoardStore looks up boards by id.
type BoardStore interface {
	GetBoard(ctx context.Context, id string) (*domain.Board, error)
}

// TaskStore looks up tasks by id, including assignee and watcher lists.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (*domain.Task, error)
}

// UserRoleStore loads a user's aggregate role set: system role plus one
// (workspaceId, role) entry per membership. Loaded once per authenticated
// request, not per resource.
type UserRoleStore interface {
	GetUserRoles(ctx context.Context, userID string) (*domain.UserRoleSet, error)
}

// =====================================================
// Entity Resolver
// =====================================================

// Chain is the resolved containment chain for a resource. Fields above the
// requested kind are always populated on success (a resolved board carries
// its space and workspace); fields below are nil.
//
// Exception: a task granted through the direct-access allowlist is returned
// with only the Task populated, since the short-circuit never touches the
// rest of the chain.
type Chain struct {
	Workspace *domain.Workspace
	Space     *domain.Space
	Board     *domain.Board
	Task      *domain.Task
}

// EntityResolver walks a resource's containment chain up to the owning
// workspace. Every missing link is a NotFound naming the missing kind, never
// a deny; every store failure is a collaborator failure, never a deny.
type EntityResolver struct {
	workspaces WorkspaceStore
	spaces     SpaceStore
	boards     BoardStore
	tasks      TaskStore
}

// NewEntityResolver wires the resolver to its entity stores.
func NewEntityResolver(w WorkspaceStore, s SpaceStore, b BoardStore, t TaskStore) *EntityResolver {
	return &EntityResolver{workspaces: w, spaces: s, boards: b, tasks: t}
}

// Resolve loads the entity of the given kind and walks upward to the owning
// workspace, returning the full chain so callers never repeat a lookup.
func (r *EntityResolver) Resolve(ctx context.Context, kind Kind, id string) (*Chain, *Error) {
	if id == "" {
		return nil, ErrMissingResourceID()
	}

	switch kind {
	case KindWorkspace:
		ws, err := r.lookupWorkspace(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Chain{Workspace: ws}, nil

	case KindSpace:
		return r.resolveSpace(ctx, id)

	case KindBoard:
		return r.resolveBoard(ctx, id)

	case KindTask:
		_, task, err := r.ResolveTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return r.ResolveTaskChain(ctx, task)

	default:
		return nil, ErrMissingResourceID()
	}
}

// ResolveTask loads just the task, deferring the rest of the chain to
// ResolveTaskChain. Split out because the task direct-access short-circuit
// needs the task before deciding whether the chain walk is necessary at all.
func (r *EntityResolver) ResolveTask(ctx context.Context, id string) (*Chain, *domain.Task, *Error) {
	if id == "" {
		return nil, nil, ErrMissingResourceID()
	}
	task, err := r.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, nil, classifyLookup(err, KindTask)
	}
	return &Chain{}, task, nil
}

// ResolveTaskChain walks Board → Space → Workspace for an already-loaded task.
func (r *EntityResolver) ResolveTaskChain(ctx context.Context, task *domain.Task) (*Chain, *Error) {
	chain, err := r.resolveBoard(ctx, task.BoardID)
	if err != nil {
		return nil, err
	}
	chain.Task = task
	return chain, nil
}

func (r *EntityResolver) resolveSpace(ctx context.Context, id string) (*Chain, *Error) {
	space, err := r.spaces.GetSpace(ctx, id)
	if err != nil {
		return nil, classifyLookup(err, KindSpace)
	}
	ws, werr := r.lookupWorkspace(ctx, space.WorkspaceID)
	if werr != nil {
		return nil, werr
	}
	return &Chain{Workspace: ws, Space: space}, nil
}

func (r *EntityResolver) resolveBoard(ctx context.Context, id string) (*Chain, *Error) {
	board, err := r.boards.GetBoard(ctx, id)
	if err != nil {
		return nil, classifyLookup(err, KindBoard)
	}
	chain, serr := r.resolveSpace(ctx, board.SpaceID)
	if serr != nil {
		return nil, serr
	}
	chain.Board = board
	return chain, nil
}

func (r *EntityResolver) lookupWorkspace(ctx context.Context, id string) (*domain.Workspace, *Error) {
	ws, err := r.workspaces.GetWorkspace(ctx, id)
	if err != nil {
		return nil, classifyLookup(err, KindWorkspace)
	}
	return ws, nil
}

// classifyLookup separates "entity missing" from "store degraded".
func classifyLookup(err error, kind Kind) *Error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrEntityNotFound(kind)
	}
	return ErrCollaboratorFailure(err)
}
