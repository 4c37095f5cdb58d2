package repo

import (
	"context"
	"errors"
	"fmt"

	"boardstack-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateMember indicates the user already has a membership row in the
// workspace.
var ErrDuplicateMember = errors.New("user is already a member of this workspace")

// WorkspaceRepository handles database operations for workspaces and their
// memberships. Concrete struct over the pool, no interface on this side; the
// authorization layer declares the narrow read contracts it needs.
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GetWorkspace retrieves a workspace by id. Returns domain.ErrNotFound when
// no row exists so the caller can classify the miss.
func (r *WorkspaceRepository) GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`

	var w domain.Workspace
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query workspace: %w", err)
	}

	return &w, nil
}

// ListMembers retrieves all membership rows of a workspace, newest first.
func (r *WorkspaceRepository) ListMembers(ctx context.Context, workspaceID string) ([]domain.WorkspaceMember, error) {
	query := `
		SELECT workspace_id, user_id, role, invited_by, created_at, updated_at
		FROM workspace_members
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query workspace members: %w", err)
	}
	defer rows.Close()

	var members []domain.WorkspaceMember
	for rows.Next() {
		var m domain.WorkspaceMember
		if err := rows.Scan(
			&m.WorkspaceID, &m.UserID, &m.Role,
			&m.InvitedBy, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workspace member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspace members: %w", err)
	}

	return members, nil
}

// AddMember inserts a membership row. (workspace_id, user_id) is unique;
// a conflict maps to ErrDuplicateMember.
func (r *WorkspaceRepository) AddMember(ctx context.Context, m *domain.WorkspaceMember) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role, invited_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		m.WorkspaceID, m.UserID, m.Role, m.InvitedBy,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateMember
		}
		return fmt.Errorf("insert workspace member: %w", err)
	}

	return nil
}
