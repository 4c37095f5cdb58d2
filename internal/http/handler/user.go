package handler

import (
	"context"
	"net/http"

	"boardstack-api/internal/http/httperr"
	"boardstack-api/internal/observability/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserStore is the persistence surface the user handlers need.
type UserStore interface {
	RevokeTokens(ctx context.Context, userID string) (int64, error)
}

type UserHandler struct {
	users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// RevokeTokens handles DELETE /v1/users/{userId}/tokens. Guarded by
// resource ownership and the per-user rate limiter.
func (h *UserHandler) RevokeTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	userID := chi.URLParam(r, "userId")
	if userID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingParameter, "userId is required")
		return
	}

	revoked, err := h.users.RevokeTokens(ctx, userID)
	if err != nil {
		log.Error(ctx, "failed to revoke tokens",
			logger.Module("user"), logger.Action("revoke_tokens"),
			zap.String("user_id", userID),
			zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}

	log.Info(ctx, "tokens revoked",
		logger.Module("user"), logger.Action("revoke_tokens"),
		zap.String("user_id", userID),
		zap.Int64("revoked", revoked))

	writeData(w, http.StatusOK, map[string]int64{"revoked": revoked})
}
