package repo

import (
	"context"
	"errors"
	"fmt"

	"boardstack-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BoardRepository handles database operations for boards.
type BoardRepository struct {
	pool *pgxpool.Pool
}

func NewBoardRepository(pool *pgxpool.Pool) *BoardRepository {
	return &BoardRepository{pool: pool}
}

// GetBoard retrieves a board by id. Returns domain.ErrNotFound when no row
// exists.
func (r *BoardRepository) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	query := `
		SELECT id, space_id, name, created_at, updated_at
		FROM boards
		WHERE id = $1
	`

	var b domain.Board
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.SpaceID, &b.Name, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query board: %w", err)
	}

	return &b, nil
}

// ListTasksByBoard retrieves every task on a board including the assignee
// and watcher lists, for the export endpoint. Ordered by creation time so
// exports are stable.
func (r *BoardRepository) ListTasksByBoard(ctx context.Context, boardID string) ([]domain.Task, error) {
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
		WHERE t.board_id = $1
		ORDER BY t.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("query board tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
			&t.ReporterID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
			&t.Assignees, &t.Watchers,
		); err != nil {
			return nil, fmt.Errorf("scan board task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate board tasks: %w", err)
	}

	return tasks, nil
}
