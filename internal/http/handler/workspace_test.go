package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"boardstack-api/internal/authz"
	"boardstack-api/internal/domain"
	"boardstack-api/internal/http/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkspaceStore struct {
	members []domain.WorkspaceMember
	addErr  error
	listErr error
	lastAdd *domain.WorkspaceMember
}

func (f *fakeWorkspaceStore) ListMembers(_ context.Context, _ string) ([]domain.WorkspaceMember, error) {
	return f.members, f.listErr
}

func (f *fakeWorkspaceStore) AddMember(_ context.Context, m *domain.WorkspaceMember) error {
	f.lastAdd = m
	return f.addErr
}

func withChain(r *http.Request, chain *authz.Chain) *http.Request {
	return r.WithContext(middleware.SetChainForTesting(r.Context(), chain))
}

func testChain() *authz.Chain {
	return &authz.Chain{Workspace: &domain.Workspace{ID: "W1", Name: "Acme", OwnerID: "u-owner"}}
}

func TestWorkspaceHandler_GetWorkspace(t *testing.T) {
	h := NewWorkspaceHandler(&fakeWorkspaceStore{})

	req := withChain(httptest.NewRequest(http.MethodGet, "/v1/workspaces/W1", nil), testChain())
	rec := httptest.NewRecorder()
	h.GetWorkspace(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK   bool             `json:"ok"`
		Data domain.Workspace `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "W1", resp.Data.ID)
}

func TestWorkspaceHandler_GetWorkspace_NoChain(t *testing.T) {
	h := NewWorkspaceHandler(&fakeWorkspaceStore{})

	rec := httptest.NewRecorder()
	h.GetWorkspace(rec, httptest.NewRequest(http.MethodGet, "/v1/workspaces/W1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWorkspaceHandler_ListMembers_Empty(t *testing.T) {
	h := NewWorkspaceHandler(&fakeWorkspaceStore{})

	req := withChain(httptest.NewRequest(http.MethodGet, "/v1/workspaces/W1/members", nil), testChain())
	rec := httptest.NewRecorder()
	h.ListMembers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// Empty list serializes as [], never null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestWorkspaceHandler_AddMember(t *testing.T) {
	store := &fakeWorkspaceStore{}
	h := NewWorkspaceHandler(store)

	body := `{"userId":"u-2","role":"member"}`
	req := withChain(httptest.NewRequest(http.MethodPost, "/v1/workspaces/W1/members", strings.NewReader(body)), testChain())
	rec := httptest.NewRecorder()
	h.AddMember(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, store.lastAdd)
	assert.Equal(t, "W1", store.lastAdd.WorkspaceID)
	assert.Equal(t, "u-2", store.lastAdd.UserID)
	assert.Equal(t, domain.RoleMember, store.lastAdd.Role)
}

func TestWorkspaceHandler_AddMember_RejectsBadRole(t *testing.T) {
	h := NewWorkspaceHandler(&fakeWorkspaceStore{})

	for _, body := range []string{
		`{"userId":"u-2","role":"super_admin"}`,
		`{"userId":"u-2","role":"emperor"}`,
		`{"userId":"u-2"}`,
	} {
		req := withChain(httptest.NewRequest(http.MethodPost, "/v1/workspaces/W1/members", strings.NewReader(body)), testChain())
		rec := httptest.NewRecorder()
		h.AddMember(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}
