package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boardstack-api/internal/auth"
	"boardstack-api/internal/authz"
	"boardstack-api/internal/config"
	"boardstack-api/internal/domain"
	"boardstack-api/internal/http/handler"
	"boardstack-api/internal/http/middleware"
	"boardstack-api/internal/observability/logger"
	"boardstack-api/internal/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "router-test-secret"
	testIssuer   = "boardstack-web"
	testAudience = "boardstack-api"
)

// memStore backs every persistence contract the router needs, seeded with
// the W1 > S1 > B1 > Tk1 hierarchy owned by u-owner, task reported by
// u-reporter.
type memStore struct {
	workspaces map[string]*domain.Workspace
	spaces     map[string]*domain.Space
	boards     map[string]*domain.Board
	tasks      map[string]*domain.Task
	roles      map[string]*domain.UserRoleSet
	revoked    map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		workspaces: map[string]*domain.Workspace{
			"W1": {ID: "W1", Name: "Acme", OwnerID: "u-owner"},
		},
		spaces: map[string]*domain.Space{
			"S1": {ID: "S1", WorkspaceID: "W1", Name: "Product"},
		},
		boards: map[string]*domain.Board{
			"B1": {ID: "B1", SpaceID: "S1", Name: "Sprint"},
		},
		tasks: map[string]*domain.Task{
			"Tk1": {ID: "Tk1", BoardID: "B1", Title: "Ship it", Status: domain.TaskStatusTodo, ReporterID: "u-reporter"},
		},
		roles: map[string]*domain.UserRoleSet{
			"u-member": {UserID: "u-member", SystemRole: domain.SystemRoleUser,
				WorkspaceRoles: []domain.WorkspaceRoleEntry{{WorkspaceID: "W1", Role: domain.RoleMember}}},
		},
		revoked: map[string]int64{},
	}
}

func (s *memStore) GetWorkspace(_ context.Context, id string) (*domain.Workspace, error) {
	if w, ok := s.workspaces[id]; ok {
		return w, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetSpace(_ context.Context, id string) (*domain.Space, error) {
	if sp, ok := s.spaces[id]; ok {
		return sp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetBoard(_ context.Context, id string) (*domain.Board, error) {
	if b, ok := s.boards[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetTask(_ context.Context, id string) (*domain.Task, error) {
	if t, ok := s.tasks[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetUserRoles(_ context.Context, userID string) (*domain.UserRoleSet, error) {
	if rs, ok := s.roles[userID]; ok {
		return rs, nil
	}
	return &domain.UserRoleSet{UserID: userID, SystemRole: domain.SystemRoleUser}, nil
}

func (s *memStore) ListMembers(_ context.Context, workspaceID string) ([]domain.WorkspaceMember, error) {
	var members []domain.WorkspaceMember
	for _, rs := range s.roles {
		for _, entry := range rs.WorkspaceRoles {
			if entry.WorkspaceID == workspaceID {
				members = append(members, domain.WorkspaceMember{
					WorkspaceID: workspaceID, UserID: rs.UserID, Role: entry.Role,
				})
			}
		}
	}
	return members, nil
}

func (s *memStore) AddMember(_ context.Context, m *domain.WorkspaceMember) error {
	rs := s.roles[m.UserID]
	if rs == nil {
		rs = &domain.UserRoleSet{UserID: m.UserID, SystemRole: domain.SystemRoleUser}
		s.roles[m.UserID] = rs
	}
	rs.WorkspaceRoles = append(rs.WorkspaceRoles, domain.WorkspaceRoleEntry{WorkspaceID: m.WorkspaceID, Role: m.Role})
	return nil
}

func (s *memStore) ArchiveSpace(_ context.Context, id string) (*domain.Space, error) {
	sp, ok := s.spaces[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sp.Archived = true
	return sp, nil
}

func (s *memStore) ListTasksByBoard(_ context.Context, boardID string) ([]domain.Task, error) {
	var tasks []domain.Task
	for _, t := range s.tasks {
		if t.BoardID == boardID {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}

func (s *memStore) UpdateTask(_ context.Context, id string, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	return t, nil
}

func (s *memStore) RevokeTokens(_ context.Context, userID string) (int64, error) {
	s.revoked[userID]++
	return 1, nil
}

func testRouter(t *testing.T, store *memStore, limit int) http.Handler {
	t.Helper()

	log, err := logger.New("boardstack-api-test", "error")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTHS256Secret:         testSecret,
		JWTIssuer:              testIssuer,
		JWTAudience:            testAudience,
		JWTClockSkewSeconds:    60,
		RateLimitMax:           limit,
		RateLimitWindowMinutes: 15,
		OTELServiceName:        "boardstack-api-test",
		Port:                   "0",
	}

	resolver := authz.NewEntityResolver(store, store, store, store)
	access := middleware.AccessDeps{
		Authorizer: authz.NewAuthorizer(resolver, authz.NewMatrix()),
		Users:      store,
	}

	return buildRouter(RouterDeps{
		Cfg:         cfg,
		Log:         log,
		Validator:   auth.NewHS256Validator([]byte(testSecret), testIssuer, testAudience, cfg.JWTClockSkew()),
		Users:       store,
		Access:      access,
		RateLimiter: ratelimit.NewMemoryLimiter(limit, cfg.RateLimitWindow()),

		WorkspaceHandler: handler.NewWorkspaceHandler(store),
		SpaceHandler:     handler.NewSpaceHandler(store),
		BoardHandler:     handler.NewBoardHandler(store),
		TaskHandler:      handler.NewTaskHandler(store),
		UserHandler:      handler.NewUserHandler(store),
	})
}

func doRequest(r http.Handler, method, target, userID string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		token, _ := auth.SignTestToken([]byte(testSecret), testIssuer, testAudience,
			userID, domain.SystemRoleUser, time.Now().Add(time.Hour))
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r := testRouter(t, newMemStore(), 10)

	rec := doRequest(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresAuth(t *testing.T) {
	r := testRouter(t, newMemStore(), 10)

	rec := doRequest(r, http.MethodGet, "/v1/workspaces/W1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Owner has no membership row but resolves through the owner fallback.
func TestRouter_OwnerFallback(t *testing.T) {
	r := testRouter(t, newMemStore(), 10)

	rec := doRequest(r, http.MethodGet, "/v1/workspaces/W1", "u-owner", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// The reporter may edit the task through direct access, with no workspace
// role at all; a stranger is turned away at the workspace boundary.
func TestRouter_TaskEditEndToEnd(t *testing.T) {
	store := newMemStore()
	r := testRouter(t, store, 10)

	rec := doRequest(r, http.MethodPatch, "/v1/tasks/Tk1", "u-reporter", `{"title":"Shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shipped", store.tasks["Tk1"].Title)

	rec = doRequest(r, http.MethodPatch, "/v1/tasks/Tk1", "u-stranger", `{"title":"Hijack"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NO_WORKSPACE_ACCESS", resp.Error.Code)
}

func TestRouter_MemberCannotArchiveSpace(t *testing.T) {
	r := testRouter(t, newMemStore(), 10)

	// Members read spaces but do not archive them.
	rec := doRequest(r, http.MethodGet, "/v1/spaces/S1", "u-member", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodPost, "/v1/spaces/S1/archive", "u-member", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_BoardExportViaAnyOf(t *testing.T) {
	r := testRouter(t, newMemStore(), 10)

	rec := doRequest(r, http.MethodGet, "/v1/boards/B1/export", "u-member", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tasks"`)

	rec = doRequest(r, http.MethodGet, "/v1/boards/B1/export", "u-stranger", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// The self-service branch grants without any workspace role, and the handler
// still gets a fully resolved board out of it.
func TestRouter_BoardExportSelfServiceBranch(t *testing.T) {
	r := testRouter(t, newMemStore(), 10)

	rec := doRequest(r, http.MethodGet, "/v1/boards/B1/export", "u-stranger", `{"userId":"u-stranger"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"board"`)
	assert.Contains(t, rec.Body.String(), `"B1"`)

	// Naming someone else falls through to the board check and denies.
	rec = doRequest(r, http.MethodGet, "/v1/boards/B1/export", "u-stranger", `{"userId":"u-owner"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// Token revocation is owner-gated and rate limited: the cap applies to the
// authenticated user across requests.
func TestRouter_RevokeTokensRateLimited(t *testing.T) {
	store := newMemStore()
	r := testRouter(t, store, 3)

	rec := doRequest(r, http.MethodDelete, "/v1/users/u-other/tokens", "u-owner", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "only the resource owner revokes their tokens")

	for i := 0; i < 3; i++ {
		rec = doRequest(r, http.MethodDelete, "/v1/users/u-owner/tokens", "u-owner", "")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec = doRequest(r, http.MethodDelete, "/v1/users/u-owner/tokens", "u-owner", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, int64(3), store.revoked["u-owner"])
}

func TestRouter_BrokenChainIsNotFound(t *testing.T) {
	store := newMemStore()
	delete(store.spaces, "S1")
	r := testRouter(t, store, 10)

	rec := doRequest(r, http.MethodGet, "/v1/boards/B1", "u-owner", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ENTITY_NOT_FOUND")
}
