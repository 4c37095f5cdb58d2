package handler

import (
	"context"
	"errors"
	"net/http"

	"boardstack-api/internal/domain"
	"boardstack-api/internal/http/httperr"
	"boardstack-api/internal/http/middleware"
	"boardstack-api/internal/observability/logger"

	"go.uber.org/zap"
)

// SpaceStore is the persistence surface the space handlers need.
type SpaceStore interface {
	ArchiveSpace(ctx context.Context, id string) (*domain.Space, error)
}

type SpaceHandler struct {
	spaces SpaceStore
}

func NewSpaceHandler(spaces SpaceStore) *SpaceHandler {
	return &SpaceHandler{spaces: spaces}
}

// GetSpace handles GET /v1/spaces/{spaceId}
func (h *SpaceHandler) GetSpace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Space == nil {
		httperr.InternalError(w, ctx)
		return
	}

	writeData(w, http.StatusOK, chain.Space)
}

// ArchiveSpace handles POST /v1/spaces/{spaceId}/archive. Archiving is
// idempotent: re-archiving an archived space succeeds and changes nothing.
func (h *SpaceHandler) ArchiveSpace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Space == nil {
		httperr.InternalError(w, ctx)
		return
	}

	space, err := h.spaces.ArchiveSpace(ctx, chain.Space.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The guard resolved it moments ago; a concurrent delete won.
			httperr.WriteError(w, ctx, http.StatusNotFound, "ENTITY_NOT_FOUND", "space not found")
			return
		}
		log.Error(ctx, "failed to archive space",
			logger.Module("space"), logger.Action("archive"),
			zap.String("space_id", chain.Space.ID),
			zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}

	log.Info(ctx, "space archived",
		logger.Module("space"), logger.Action("archive"),
		zap.String("space_id", space.ID),
		zap.String("workspace_id", space.WorkspaceID))

	writeData(w, http.StatusOK, space)
}
