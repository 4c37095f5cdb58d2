package repo

import (
	"context"
	"errors"
	"fmt"

	"boardstack-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users and their aggregate
// role data.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetUserRoles loads the user's system role plus every workspace membership
// in one aggregate. Guards consult this set for each resource a request
// touches, so it is fetched once per request and cached in the context.
func (r *UserRepository) GetUserRoles(ctx context.Context, userID string) (*domain.UserRoleSet, error) {
	var systemRole domain.SystemRole
	err := r.pool.QueryRow(ctx,
		`SELECT system_role FROM users WHERE id = $1`, userID,
	).Scan(&systemRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user system role: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT workspace_id, role
		FROM workspace_members
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user workspace roles: %w", err)
	}
	defer rows.Close()

	roles := &domain.UserRoleSet{UserID: userID, SystemRole: systemRole}
	for rows.Next() {
		var entry domain.WorkspaceRoleEntry
		if err := rows.Scan(&entry.WorkspaceID, &entry.Role); err != nil {
			return nil, fmt.Errorf("scan workspace role: %w", err)
		}
		roles.WorkspaceRoles = append(roles.WorkspaceRoles, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspace roles: %w", err)
	}

	return roles, nil
}

// RevokeTokens deletes every refresh token belonging to the user. Guarded by
// resource ownership and the per-user rate limiter at the route level.
func (r *UserRepository) RevokeTokens(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
