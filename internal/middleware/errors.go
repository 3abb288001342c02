package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
)

// problemDetails represents an RFC 7807 Problem Details response
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error types
const (
	errorTypeUnauthorized = "https://inkwell.app/errors/unauthorized"
	errorTypeNotFound     = "https://inkwell.app/errors/not-found"
	errorTypeInternal     = "https://inkwell.app/errors/internal"
)

// ErrorHandler converts uncaught errors into RFC 7807 problem
// responses. Handler-level errors are mapped there; this catches what
// escapes, including 401s raised by the auth middleware.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	title := "Internal Server Error"
	problemType := errorTypeInternal
	detail := ""

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			detail = msg
		}
		switch status {
		case http.StatusUnauthorized:
			title = "Unauthorized"
			problemType = errorTypeUnauthorized
		case http.StatusNotFound:
			title = "Not Found"
			problemType = errorTypeNotFound
		default:
			title = http.StatusText(status)
			problemType = errorTypeInternal
		}
	case errors.Is(err, domain.ErrNoteNotFound), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
		problemType = errorTypeNotFound
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled error")
		detail = ""
	}

	if jsonErr := c.JSON(status, problemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	}); jsonErr != nil {
		log.Error().Err(jsonErr).Msg("Failed to write error response")
	}
}
