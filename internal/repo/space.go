package repo

import (
	"context"
	"errors"
	"fmt"

	"boardstack-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SpaceRepository handles database operations for spaces.
type SpaceRepository struct {
	pool *pgxpool.Pool
}

func NewSpaceRepository(pool *pgxpool.Pool) *SpaceRepository {
	return &SpaceRepository{pool: pool}
}

// GetSpace retrieves a space by id. Returns domain.ErrNotFound when no row
// exists.
func (r *SpaceRepository) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	query := `
		SELECT id, workspace_id, name, archived, created_at, updated_at
		FROM spaces
		WHERE id = $1
	`

	var s domain.Space
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.WorkspaceID, &s.Name, &s.Archived, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query space: %w", err)
	}

	return &s, nil
}

// ArchiveSpace marks a space archived. Archived spaces stay resolvable so
// existing boards and tasks remain readable; only this flag flips.
func (r *SpaceRepository) ArchiveSpace(ctx context.Context, id string) (*domain.Space, error) {
	query := `
		UPDATE spaces
		SET archived = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING id, workspace_id, name, archived, created_at, updated_at
	`

	var s domain.Space
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.WorkspaceID, &s.Name, &s.Archived, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("archive space: %w", err)
	}

	return &s, nil
}
