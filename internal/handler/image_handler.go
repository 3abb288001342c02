package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-notes/inkwell-backend/internal/middleware"
	"github.com/inkwell-notes/inkwell-backend/internal/service"
)

// ImageHandler handles note attachment uploads
type ImageHandler struct {
	imageService *service.ImageService
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// UploadImageResponse represents the upload response
type UploadImageResponse struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// UploadImage handles POST /api/v1/notes/:id/images
func (h *ImageHandler) UploadImage(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	if h.imageService == nil || !h.imageService.IsEnabled() {
		return NewServiceUnavailableError(c, "Image uploads are disabled (storage not configured)")
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid note ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	metadata, err := h.imageService.ProcessAndUpload(c.Request().Context(), workspaceID, noteID, data, file.Filename)
	if err != nil {
		switch err {
		case service.ErrImageTooLarge:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case service.ErrInvalidFormat:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, GIF"},
			})
		case service.ErrImageTooSmall:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case service.ErrInvalidImageData:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		default:
			log.Error().Err(err).Int32("workspace_id", workspaceID).Str("note_id", noteID.String()).Msg("Failed to upload image")
			return NewInternalError(c, "Failed to upload image")
		}
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("note_id", noteID.String()).
		Str("image_id", metadata.ID).
		Msg("Image uploaded")

	return c.JSON(http.StatusCreated, UploadImageResponse{
		ID:           metadata.ID,
		ThumbnailURL: metadata.ThumbnailURL,
		DisplayURL:   metadata.DisplayURL,
		OriginalURL:  metadata.OriginalURL,
	})
}
