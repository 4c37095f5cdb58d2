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

// TaskStore is the persistence surface the task handlers need.
type TaskStore interface {
	UpdateTask(ctx context.Context, id string, req *domain.UpdateTaskRequest) (*domain.Task, error)
}

type TaskHandler struct {
	tasks TaskStore
}

func NewTaskHandler(tasks TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// GetTask handles GET /v1/tasks/{taskId}. The visibility guard resolved the
// task already, whether through direct access or the hierarchy walk.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Task == nil {
		httperr.InternalError(w, ctx)
		return
	}

	writeData(w, http.StatusOK, chain.Task)
}

// UpdateTask handles PATCH /v1/tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	chain, ok := middleware.ChainFromContext(ctx)
	if !ok || chain.Task == nil {
		httperr.InternalError(w, ctx)
		return
	}

	var req domain.UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateTask(ctx, chain.Task.ID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			httperr.WriteError(w, ctx, http.StatusNotFound, "ENTITY_NOT_FOUND", "task not found")
			return
		}
		log.Error(ctx, "failed to update task",
			logger.Module("task"), logger.Action("update"),
			zap.String("task_id", chain.Task.ID),
			zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}

	log.Info(ctx, "task updated",
		logger.Module("task"), logger.Action("update"),
		zap.String("task_id", task.ID))

	writeData(w, http.StatusOK, task)
}
