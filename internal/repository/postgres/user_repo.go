package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, auth0_id, email, name, picture_url, created_at, updated_at`

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateOrGetByAuth0ID inserts the user on first login and returns the
// existing row on later ones
func (r *UserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	query := `
		INSERT INTO users (auth0_id, email, name, picture_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth0_id) DO UPDATE
		SET email = EXCLUDED.email
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, auth0ID, email, name, pictureURL))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Auth0ID, &user.Email, &user.Name, &user.PictureURL,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
