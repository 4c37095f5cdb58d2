package repo

import (
	"context"
	"errors"
	"fmt"

	"boardstack-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository handles database operations for tasks, including the
// assignee and watcher lists that drive direct task access.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// GetTask retrieves a task by id with its assignee and watcher lists in one
// round trip. Returns domain.ErrNotFound when no row exists.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	query := `
		SELECT t.id, t.board_id, t.title, t.description, t.status,
		       t.reporter_id, t.due_date, t.created_at, t.updated_at,
		       COALESCE(a.user_ids, '{}') AS assignees,
		       COALESCE(w.user_ids, '{}') AS watchers
		FROM tasks t
		LEFT JOIN (
			SELECT task_id, array_agg(user_id ORDER BY user_id) AS user_ids
			FROM task_assignees GROUP BY task_id
		) a ON a.task_id = t.id
		LEFT JOIN (
			SELECT task_id, array_agg(user_id ORDER BY user_id) AS user_ids
			FROM task_watchers GROUP BY task_id
		) w ON w.task_id = t.id
		WHERE t.id = $1
	`

	var t domain.Task
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
		&t.ReporterID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		&t.Assignees, &t.Watchers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query task: %w", err)
	}

	return &t, nil
}

// UpdateTask applies a partial update, only touching the fields present in
// the request, and returns the updated task.
func (r *TaskRepository) UpdateTask(ctx context.Context, id string, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	query := `UPDATE tasks SET updated_at = NOW()`
	args := []interface{}{}
	argIdx := 1

	if req.Title != nil {
		query += fmt.Sprintf(", title = $%d", argIdx)
		args = append(args, *req.Title)
		argIdx++
	}
	if req.Description != nil {
		query += fmt.Sprintf(", description = $%d", argIdx)
		args = append(args, *req.Description)
		argIdx++
	}
	if req.Status != nil {
		query += fmt.Sprintf(", status = $%d", argIdx)
		args = append(args, *req.Status)
		argIdx++
	}
	if req.DueDate != nil {
		query += fmt.Sprintf(", due_date = $%d", argIdx)
		args = append(args, *req.DueDate)
		argIdx++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIdx)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetTask(ctx, id)
}
