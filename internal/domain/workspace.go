package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Workspace scopes a user's notes. Every note row carries a
// workspace id and all repository access is keyed by it.
type Workspace struct {
	ID        int32     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	GetByID(ctx context.Context, id int32) (*Workspace, error)
	GetByUserAuth0ID(ctx context.Context, auth0ID string) (*Workspace, error)
	CreateForUser(ctx context.Context, userID uuid.UUID, name string) (*Workspace, error)
}
