package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/middleware"
	"github.com/inkwell-notes/inkwell-backend/internal/service"
	"github.com/inkwell-notes/inkwell-backend/internal/websocket"
)

// TemplateHandler handles template-related HTTP requests
type TemplateHandler struct {
	templateService *service.TemplateService
	publisher       websocket.EventPublisher
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService *service.TemplateService, publisher websocket.EventPublisher) *TemplateHandler {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &TemplateHandler{templateService: templateService, publisher: publisher}
}

// TemplateResponse represents a template in API responses
type TemplateResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListTemplates handles GET /api/v1/templates
func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	templates := h.templateService.ListTemplates()

	response := make([]TemplateResponse, len(templates))
	for i, tmpl := range templates {
		response[i] = TemplateResponse{
			ID:          tmpl.ID,
			Name:        tmpl.Name,
			Description: tmpl.Description,
		}
	}

	return c.JSON(http.StatusOK, response)
}

// InstantiateTemplate handles POST /api/v1/templates/:id/notes
func (h *TemplateHandler) InstantiateTemplate(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	templateID := c.Param("id")

	note, err := h.templateService.InstantiateTemplate(c.Request().Context(), workspaceID, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			return NewNotFoundError(c, "Template not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("template_id", templateID).Msg("Failed to instantiate template")
		return NewInternalError(c, "Failed to create note from template")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("template_id", templateID).
		Str("note_id", note.ID.String()).
		Msg("Note created from template")
	h.publisher.Publish(workspaceID, websocket.NoteCreated(toNoteResponse(note)))

	return c.JSON(http.StatusCreated, toNoteResponse(note))
}
