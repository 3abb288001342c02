package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user. Identity is owned by the
// hosted auth provider; this row mirrors the claims we care about.
type User struct {
	ID         uuid.UUID `json:"id"`
	Auth0ID    string    `json:"auth0Id"`
	Email      string    `json:"email"`
	Name       *string   `json:"name"`
	PictureURL *string   `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*User, error)
}
