package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-notes/inkwell-backend/internal/autosave"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/websocket"
)

// JWTValidator validates JWT tokens and returns the workspace ID
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (workspaceID int32, err error)
}

// WebSocketHandler upgrades connections and runs an editor session
// per connection. Each session owns an autosave controller fed by the
// inbound message stream.
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	store          autosave.Store
	logger         zerolog.Logger
	debounce       time.Duration
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, store autosave.Store, logger zerolog.Logger, debounce time.Duration, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		store:          store,
		logger:         logger,
		debounce:       debounce,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	workspaceID, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	session := &editorSession{
		workspaceID: workspaceID,
		hub:         h.hub,
	}

	client := websocket.NewClient(conn, workspaceID, h.hub, session.handleMessage, session.close)
	session.client = client

	session.controller = autosave.NewController(workspaceID, h.store, session, h.logger, autosave.Config{
		DebounceWindow: h.debounce,
		OnSaved:        session.noteSaved,
	})

	h.hub.Register(client)

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Msg("Editor session connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

// editorSession ties one WebSocket connection to one autosave
// controller. Inbound messages drive the controller; the controller
// reports back through the Surface and OnSaved callbacks.
type editorSession struct {
	workspaceID int32
	client      *websocket.Client
	controller  *autosave.Controller
	hub         *websocket.Hub
}

// handleMessage dispatches a single inbound editor message
func (s *editorSession) handleMessage(data []byte) {
	msg, err := websocket.ParseClientMessage(data)
	if err != nil {
		log.Debug().Err(err).Str("client_id", s.client.ID()).Msg("Dropping malformed editor message")
		return
	}

	switch msg.Type {
	case websocket.MessageNoteSelected:
		noteID := uuid.Nil
		if msg.NoteID != "" {
			noteID, err = uuid.Parse(msg.NoteID)
			if err != nil {
				s.sendEvent(websocket.NoteError(map[string]string{"detail": "invalid note id"}))
				return
			}
		}
		if err := s.controller.OnActiveNoteChanged(context.Background(), noteID); err != nil {
			detail := "failed to load note"
			if errors.Is(err, domain.ErrNoteNotFound) {
				detail = "note not found"
			}
			s.sendEvent(websocket.NoteError(map[string]string{
				"id":     msg.NoteID,
				"detail": detail,
			}))
		}

	case websocket.MessageContentChanged:
		s.controller.OnContentChanged(msg.Content, msg.PlainText)

	case websocket.MessageTitleEdited:
		s.controller.OnTitleEdited(msg.Title)

	default:
		log.Debug().
			Str("type", msg.Type).
			Str("client_id", s.client.ID()).
			Msg("Unknown editor message type")
	}
}

// ShowNote implements autosave.Surface by delivering the loaded note
// to this session only
func (s *editorSession) ShowNote(note *domain.Note) {
	s.sendEvent(websocket.NoteLoaded(toNoteResponse(note)))
}

// noteSaved reports a committed autosave to this session and fans the
// change out to the workspace's other clients
func (s *editorSession) noteSaved(note *domain.Note) {
	s.sendEvent(websocket.NoteSaved(toNoteResponse(note)))
	s.hub.BroadcastExcept(s.workspaceID, s.client.ID(), websocket.NoteSaved(toNoteResponse(note)))
}

// close releases the session's autosave controller
func (s *editorSession) close() {
	if s.controller != nil {
		s.controller.Close()
	}
	log.Info().
		Int32("workspace_id", s.workspaceID).
		Str("client_id", s.client.ID()).
		Msg("Editor session closed")
}

func (s *editorSession) sendEvent(event websocket.Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize session event")
		return
	}
	if err := s.client.Send(data); err != nil {
		log.Debug().Err(err).Str("client_id", s.client.ID()).Msg("Failed to send session event")
	}
}
