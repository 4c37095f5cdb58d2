package handler

import (
	"context"
	"errors"
	"net/http"

	"boardstack-api/internal/domain"
	"boardstack-api/internal/http/httperr"
	"boardstack-api/internal/http/middleware"
	"boardstack-api/internal/observability/logger"
	"boardstack-api/internal/repo"

	"go.uber.org/zap"
)

// WorkspaceStore is the persistence surface the workspace handlers need.
type WorkspaceStore interface {
	ListMembers(ctx context.Context, workspaceID string) ([]domain.WorkspaceMember, error)
	AddMember(ctx context.Context, m *domain.WorkspaceMember) error
}

type WorkspaceHandler struct {
	workspaces WorkspaceStore
}

func NewWorkspaceHandler(workspaces WorkspaceStore) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// GetWorkspace handles GET /v1/workspaces/{workspaceId}.
// The access guard already resolved the workspace, so this is a straight
// read from the request context.
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Workspace == nil {
		httperr.InternalError(w, ctx)
		return
	}

	writeData(w, http.StatusOK, chain.Workspace)
}

// ListMembers handles GET /v1/workspaces/{workspaceId}/members
func (h *WorkspaceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Workspace == nil {
		httperr.InternalError(w, ctx)
		return
	}

	members, err := h.workspaces.ListMembers(ctx, chain.Workspace.ID)
	if err != nil {
		log.Error(ctx, "failed to list workspace members",
			logger.Module("workspace"), logger.Action("list_members"),
			zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}

	if members == nil {
		members = []domain.WorkspaceMember{}
	}
	writeData(w, http.StatusOK, members)
}

// AddMemberRequest is the payload for inviting a user into a workspace.
type AddMemberRequest struct {
	UserID string      `json:"userId" validate:"required"`
	Role   domain.Role `json:"role" validate:"required"`
}

// AddMember handles POST /v1/workspaces/{workspaceId}/members
func (h *WorkspaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Workspace == nil {
		httperr.InternalError(w, ctx)
		return
	}

	var req AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// System roles never appear in membership rows.
	if !req.Role.IsValid() || req.Role == domain.RoleSuperAdmin {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter,
			"role must be one of: owner, admin, member, viewer")
		return
	}

	member := &domain.WorkspaceMember{
		WorkspaceID: chain.Workspace.ID,
		UserID:      req.UserID,
		Role:        req.Role,
	}
	if err := h.workspaces.AddMember(ctx, member); err != nil {
		if errors.Is(err, repo.ErrDuplicateMember) {
			httperr.WriteError(w, ctx, http.StatusConflict, "DUPLICATE_MEMBER",
				"user is already a member of this workspace")
			return
		}
		log.Error(ctx, "failed to add workspace member",
			logger.Module("workspace"), logger.Action("add_member"),
			zap.String("user_id", req.UserID),
			zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}

	log.Info(ctx, "workspace member added",
		logger.Module("workspace"), logger.Action("add_member"),
		zap.String("workspace_id", chain.Workspace.ID),
		zap.String("user_id", req.UserID),
		zap.String("role", string(req.Role)))

	writeData(w, http.StatusCreated, member)
}
