package service

import (
	"context"
	"errors"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// WorkspaceService resolves workspaces for authenticated users and
// provisions both user and workspace on first login
type WorkspaceService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(userRepo domain.UserRepository, workspaceRepo domain.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
	}
}

// ResolveWorkspace returns the workspace ID for an Auth0 identity,
// creating the user row and a default workspace when missing
func (s *WorkspaceService) ResolveWorkspace(ctx context.Context, auth0ID, email, name string) (int32, error) {
	ws, err := s.workspaceRepo.GetByUserAuth0ID(ctx, auth0ID)
	if err == nil {
		return ws.ID, nil
	}
	if !errors.Is(err, domain.ErrWorkspaceNotFound) {
		return 0, err
	}

	var namePtr *string
	if name != "" {
		namePtr = &name
	}
	user, err := s.userRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, namePtr, nil)
	if err != nil {
		return 0, err
	}

	ws, err = s.workspaceRepo.CreateForUser(ctx, user.ID, "My Notes")
	if err != nil {
		return 0, err
	}

	log.Info().Str("auth0_id", auth0ID).Int32("workspace_id", ws.ID).Msg("Provisioned workspace for new user")
	return ws.ID, nil
}

// GetUser returns the user row for an Auth0 identity
func (s *WorkspaceService) GetUser(ctx context.Context, auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(ctx, auth0ID)
}
