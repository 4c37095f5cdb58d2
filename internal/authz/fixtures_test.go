package authz

import (
	"context"
	"errors"

	"boardstack-api/internal/domain"
)

// fakeStores is an in-memory implementation of all four entity store
// contracts plus the user role store. Lookups count calls so tests can
// assert the resolver never repeats work.
type fakeStores struct {
	workspaces map[string]*domain.Workspace
	spaces     map[string]*domain.Space
	boards     map[string]*domain.Board
	tasks      map[string]*domain.Task
	roles      map[string]*domain.UserRoleSet

	failWith error
	lookups  int
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		workspaces: map[string]*domain.Workspace{},
		spaces:     map[string]*domain.Space{},
		boards:     map[string]*domain.Board{},
		tasks:      map[string]*domain.Task{},
		roles:      map[string]*domain.UserRoleSet{},
	}
}

func (f *fakeStores) GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	if err := f.pre(ctx); err != nil {
		return nil, err
	}
	if ws, ok := f.workspaces[id]; ok {
		return ws, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStores) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	if err := f.pre(ctx); err != nil {
		return nil, err
	}
	if s, ok := f.spaces[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStores) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	if err := f.pre(ctx); err != nil {
		return nil, err
	}
	if b, ok := f.boards[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStores) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if err := f.pre(ctx); err != nil {
		return nil, err
	}
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStores) GetUserRoles(ctx context.Context, userID string) (*domain.UserRoleSet, error) {
	if err := f.pre(ctx); err != nil {
		return nil, err
	}
	if rs, ok := f.roles[userID]; ok {
		return rs, nil
	}
	return &domain.UserRoleSet{UserID: userID, SystemRole: domain.SystemRoleUser}, nil
}

func (f *fakeStores) pre(ctx context.Context) error {
	f.lookups++
	if f.failWith != nil {
		return f.failWith
	}
	return ctx.Err()
}

var errStoreDown = errors.New("connection refused")

// seedHierarchy populates W1 ⊃ S1 ⊃ B1 ⊃ Tk1 with owner u-owner and task
// reporter u-reporter, the end-to-end fixture most tests build on.
func seedHierarchy(f *fakeStores) {
	f.workspaces["W1"] = &domain.Workspace{ID: "W1", Name: "Acme", OwnerID: "u-owner"}
	f.spaces["S1"] = &domain.Space{ID: "S1", WorkspaceID: "W1", Name: "Product"}
	f.boards["B1"] = &domain.Board{ID: "B1", SpaceID: "S1", Name: "Sprint"}
	f.tasks["Tk1"] = &domain.Task{
		ID:         "Tk1",
		BoardID:    "B1",
		Title:      "Ship it",
		ReporterID: "u-reporter",
		Assignees:  []string{"u-assignee"},
		Watchers:   []string{"u-watcher"},
	}
}

func roleSet(userID string, system domain.SystemRole, entries ...domain.WorkspaceRoleEntry) *domain.UserRoleSet {
	return &domain.UserRoleSet{UserID: userID, SystemRole: system, WorkspaceRoles: entries}
}
