package search

import (
	"time"

	"github.com/google/uuid"
)

// Result is a single note search hit returned to the caller.
type Result struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	Pinned    bool      `json:"pinned"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Query describes a note search request.
type Query struct {
	Text        string
	WorkspaceID int32
	Limit       int
}

// Searcher can execute a full-text search over notes.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push notes into a search index.
type Indexer interface {
	IndexNote(rec NoteRecord) error
	DeleteNote(id uuid.UUID) error
}

// NoteRecord is the projection of a note we index.
type NoteRecord struct {
	ID          string `json:"id"`
	WorkspaceID int32  `json:"workspaceId"`
	Title       string `json:"title"`
	PlainText   string `json:"plainText"`
	Pinned      bool   `json:"pinned"`
	UpdatedAt   int64  `json:"updatedAt"`
}
