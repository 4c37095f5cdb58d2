package handler

import (
	"context"
	"net/http"

	"boardstack-api/internal/domain"
	"boardstack-api/internal/http/httperr"
	"boardstack-api/internal/http/middleware"
	"boardstack-api/internal/observability/logger"

	"go.uber.org/zap"
)

// BoardStore is the persistence surface the board handlers need.
type BoardStore interface {
	ListTasksByBoard(ctx context.Context, boardID string) ([]domain.Task, error)
}

type BoardHandler struct {
	boards BoardStore
}

func NewBoardHandler(boards BoardStore) *BoardHandler {
	return &BoardHandler{boards: boards}
}

// GetBoard handles GET /v1/boards/{boardId}
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Board == nil {
		httperr.InternalError(w, ctx)
		return
	}

	writeData(w, http.StatusOK, chain.Board)
}

// BoardExport is the full dump of a board with its tasks.
type BoardExport struct {
	Board *domain.Board `json:"board"`
	Tasks []domain.Task `json:"tasks"`
}

// ExportBoard handles GET /v1/boards/{boardId}/export
func (h *BoardHandler) ExportBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Board == nil {
		httperr.InternalError(w, ctx)
		return
	}

	tasks, err := h.boards.ListTasksByBoard(ctx, chain.Board.ID)
	if err != nil {
		log.Error(ctx, "failed to export board",
			logger.Module("board"), logger.Action("export"),
			zap.String("board_id", chain.Board.ID),
			zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	log.Info(ctx, "board exported",
		logger.Module("board"), logger.Action("export"),
		zap.String("board_id", chain.Board.ID),
		zap.Int("task_count", len(tasks)))

	writeData(w, http.StatusOK, BoardExport{Board: chain.Board, Tasks: tasks})
}
