package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of change an event announces
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeSaved   EventType = "saved"
	EventTypePinned  EventType = "pinned"
	EventTypeLoaded  EventType = "loaded"
	EventTypeError   EventType = "error"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeNote EntityType = "note"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "note.saved"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "note"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NoteCreated creates a note.created event
func NoteCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeNote, payload)
}

// NoteUpdated creates a note.updated event
func NoteUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeNote, payload)
}

// NoteDeleted creates a note.deleted event
func NoteDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeNote, payload)
}

// NoteSaved creates a note.saved event announcing a committed autosave
func NoteSaved(payload interface{}) Event {
	return NewEvent(EventTypeSaved, EntityTypeNote, payload)
}

// NotePinned creates a note.pinned event
func NotePinned(payload interface{}) Event {
	return NewEvent(EventTypePinned, EntityTypeNote, payload)
}

// NoteLoaded creates a note.loaded event sent to a single editor
// session after it selects a note
func NoteLoaded(payload interface{}) Event {
	return NewEvent(EventTypeLoaded, EntityTypeNote, payload)
}

// NoteError creates a note.error event for a single editor session
func NoteError(payload interface{}) Event {
	return NewEvent(EventTypeError, EntityTypeNote, payload)
}

// Editor session message types sent by clients over the socket
const (
	MessageNoteSelected   = "note.selected"
	MessageContentChanged = "content.changed"
	MessageTitleEdited    = "title.edited"
)

// ClientMessage is an inbound editor session message. NoteID is empty
// on note.selected when the client deselects the current note.
type ClientMessage struct {
	Type      string `json:"type"`
	NoteID    string `json:"noteId,omitempty"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	PlainText string `json:"plainText,omitempty"`
}

// ParseClientMessage decodes an inbound editor session message
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid client message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("client message missing type")
	}
	return &msg, nil
}
