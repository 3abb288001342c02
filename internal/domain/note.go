package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrNoteTitleEmpty = errors.New("note title is required")
)

// UntitledSentinel is the placeholder title treated as "no title given".
// A note carrying it is eligible for title derivation on save.
const UntitledSentinel = "Untitled"

// Note represents a single rich-text note.
//
// Content is the raw markup captured from the editing surface and is
// persisted verbatim; PlainText is the flattened rendering supplied
// alongside it, used only for search and title derivation.
type Note struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID int32     `json:"workspaceId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PlainText   string    `json:"plainText"`
	Pinned      bool      `json:"pinned"`
	TemplateID  *string   `json:"templateId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NoteDraft is the projection of a note written by an autosave commit.
type NoteDraft struct {
	Title     string
	Content   string
	PlainText string
	UpdatedAt time.Time
}

// NoteRepository defines the interface for note data access
type NoteRepository interface {
	Create(ctx context.Context, note *Note) (*Note, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*Note, error)
	ListByWorkspace(ctx context.Context, workspaceID int32) ([]*Note, error)
	Search(ctx context.Context, workspaceID int32, query string) ([]*Note, error)
	Upsert(ctx context.Context, workspaceID int32, id uuid.UUID, draft NoteDraft) (*Note, error)
	SetPinned(ctx context.Context, workspaceID int32, id uuid.UUID, pinned bool) (*Note, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
}
