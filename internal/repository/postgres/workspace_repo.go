package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id int32) (*domain.Workspace, error) {
	ws, err := scanWorkspace(r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM workspaces WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return ws, nil
}

// GetByUserAuth0ID retrieves a workspace through its owner's Auth0 ID
func (r *WorkspaceRepository) GetByUserAuth0ID(ctx context.Context, auth0ID string) (*domain.Workspace, error) {
	query := `
		SELECT w.id, w.user_id, w.name, w.created_at
		FROM workspaces w
		JOIN users u ON u.id = w.user_id
		WHERE u.auth0_id = $1`

	ws, err := scanWorkspace(r.pool.QueryRow(ctx, query, auth0ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return ws, nil
}

// CreateForUser creates a workspace owned by the given user
func (r *WorkspaceRepository) CreateForUser(ctx context.Context, userID uuid.UUID, name string) (*domain.Workspace, error) {
	query := `
		INSERT INTO workspaces (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at`

	return scanWorkspace(r.pool.QueryRow(ctx, query, userID, name))
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := row.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.CreatedAt); err != nil {
		return nil, err
	}
	return &ws, nil
}
