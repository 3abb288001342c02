package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/middleware"
	"github.com/inkwell-notes/inkwell-backend/internal/service"
	"github.com/inkwell-notes/inkwell-backend/internal/websocket"
)

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	noteService *service.NoteService
	publisher   websocket.EventPublisher
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(noteService *service.NoteService, publisher websocket.EventPublisher) *NoteHandler {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &NoteHandler{noteService: noteService, publisher: publisher}
}

// CreateNoteRequest represents the create note request body
type CreateNoteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	PlainText string `json:"plainText"`
}

// SaveNoteRequest represents the save note request body
type SaveNoteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	PlainText string `json:"plainText"`
}

// PinNoteRequest represents the pin/unpin request body
type PinNoteRequest struct {
	Pinned bool `json:"pinned"`
}

// NoteResponse represents a note in API responses
type NoteResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	PlainText  string  `json:"plainText"`
	Pinned     bool    `json:"pinned"`
	TemplateID *string `json:"templateId,omitempty"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

// TaskResponse represents a detected task line
type TaskResponse struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// CreateNote handles POST /api/v1/notes
func (h *NoteHandler) CreateNote(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	note, err := h.noteService.CreateNote(c.Request().Context(), workspaceID, service.CreateNoteInput{
		Title:     req.Title,
		Content:   req.Content,
		PlainText: req.PlainText,
	})
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create note")
		return NewInternalError(c, "Failed to create note")
	}

	log.Info().Int32("workspace_id", workspaceID).Str("note_id", note.ID.String()).Msg("Note created")
	h.publisher.Publish(workspaceID, websocket.NoteCreated(toNoteResponse(note)))

	return c.JSON(http.StatusCreated, toNoteResponse(note))
}

// ListNotes handles GET /api/v1/notes. An optional q parameter runs a
// full-text search instead of a plain listing.
func (h *NoteHandler) ListNotes(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	query := c.QueryParam("q")

	notes, err := h.noteService.SearchNotes(c.Request().Context(), workspaceID, query)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to list notes")
		return NewInternalError(c, "Failed to list notes")
	}

	response := make([]NoteResponse, len(notes))
	for i, note := range notes {
		response[i] = toNoteResponse(note)
	}

	return c.JSON(http.StatusOK, response)
}

// GetNote handles GET /api/v1/notes/:id
func (h *NoteHandler) GetNote(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid note ID", nil)
	}

	note, err := h.noteService.GetNote(c.Request().Context(), workspaceID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return NewNotFoundError(c, "Note not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("note_id", id.String()).Msg("Failed to get note")
		return NewInternalError(c, "Failed to get note")
	}

	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// SaveNote handles PUT /api/v1/notes/:id. This is the HTTP twin of
// the editor session's autosave commit: an upsert of the full draft.
func (h *NoteHandler) SaveNote(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid note ID", nil)
	}

	var req SaveNoteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	note, err := h.noteService.SaveNote(c.Request().Context(), workspaceID, id, req.Title, req.Content, req.PlainText)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return NewNotFoundError(c, "Note not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("note_id", id.String()).Msg("Failed to save note")
		return NewInternalError(c, "Failed to save note")
	}

	h.publisher.Publish(workspaceID, websocket.NoteUpdated(toNoteResponse(note)))

	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// PinNote handles PATCH /api/v1/notes/:id/pin
func (h *NoteHandler) PinNote(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid note ID", nil)
	}

	var req PinNoteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	note, err := h.noteService.SetPinned(c.Request().Context(), workspaceID, id, req.Pinned)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return NewNotFoundError(c, "Note not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("note_id", id.String()).Msg("Failed to pin note")
		return NewInternalError(c, "Failed to pin note")
	}

	h.publisher.Publish(workspaceID, websocket.NotePinned(toNoteResponse(note)))

	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// DeleteNote handles DELETE /api/v1/notes/:id
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid note ID", nil)
	}

	if err := h.noteService.DeleteNote(c.Request().Context(), workspaceID, id); err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return NewNotFoundError(c, "Note not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("note_id", id.String()).Msg("Failed to delete note")
		return NewInternalError(c, "Failed to delete note")
	}

	log.Info().Int32("workspace_id", workspaceID).Str("note_id", id.String()).Msg("Note deleted")
	h.publisher.Publish(workspaceID, websocket.NoteDeleted(map[string]string{"id": id.String()}))

	return c.NoContent(http.StatusNoContent)
}

// GetTasks handles GET /api/v1/notes/:id/tasks
func (h *NoteHandler) GetTasks(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid note ID", nil)
	}

	tasks, err := h.noteService.DetectTasks(c.Request().Context(), workspaceID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return NewNotFoundError(c, "Note not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("note_id", id.String()).Msg("Failed to detect tasks")
		return NewInternalError(c, "Failed to detect tasks")
	}

	response := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = TaskResponse{Line: task.Line, Text: task.Text}
	}

	return c.JSON(http.StatusOK, response)
}

// Helper function to convert domain.Note to NoteResponse
func toNoteResponse(note *domain.Note) NoteResponse {
	return NoteResponse{
		ID:         note.ID.String(),
		Title:      note.Title,
		Content:    note.Content,
		PlainText:  note.PlainText,
		Pinned:     note.Pinned,
		TemplateID: note.TemplateID,
		CreatedAt:  note.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  note.UpdatedAt.Format(time.RFC3339),
	}
}
