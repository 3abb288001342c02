package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/middleware"
	"github.com/inkwell-notes/inkwell-backend/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	workspaceService *service.WorkspaceService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(workspaceService *service.WorkspaceService) *AuthHandler {
	return &AuthHandler{workspaceService: workspaceService}
}

// MeResponse describes the authenticated user and their workspace
type MeResponse struct {
	User        UserResponse `json:"user"`
	WorkspaceID int32        `json:"workspaceId"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       *string `json:"name"`
	PictureURL *string `json:"pictureUrl"`
}

// Me handles GET /api/v1/auth/me. The auth middleware has already
// provisioned user and workspace by the time this runs.
func (h *AuthHandler) Me(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.workspaceService.GetUser(c.Request().Context(), auth0ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to load user")
		return NewInternalError(c, "Failed to load user")
	}

	return c.JSON(http.StatusOK, MeResponse{
		User: UserResponse{
			ID:         user.ID.String(),
			Email:      user.Email,
			Name:       user.Name,
			PictureURL: user.PictureURL,
		},
		WorkspaceID: middleware.GetWorkspaceID(c),
	})
}
