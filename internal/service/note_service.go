package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/autosave"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/markdown"
	"github.com/inkwell-notes/inkwell-backend/internal/search"
	"github.com/rs/zerolog/log"
)

// NoteService handles note business logic
type NoteService struct {
	noteRepo domain.NoteRepository
	searcher search.Searcher
	indexer  search.Indexer
}

// NewNoteService creates a new NoteService. searcher and indexer are
// optional; without them search runs against the database.
func NewNoteService(noteRepo domain.NoteRepository, searcher search.Searcher, indexer search.Indexer) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		searcher: searcher,
		indexer:  indexer,
	}
}

// CreateNoteInput contains input for creating a note
type CreateNoteInput struct {
	Title      string
	Content    string
	PlainText  string
	TemplateID *string
}

// CreateNote creates a new note. An absent title is derived from the
// plain text the same way autosave derives one.
func (s *NoteService) CreateNote(ctx context.Context, workspaceID int32, input CreateNoteInput) (*domain.Note, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = autosave.DeriveTitle(input.PlainText)
	}

	note := &domain.Note{
		WorkspaceID: workspaceID,
		Title:       title,
		Content:     input.Content,
		PlainText:   input.PlainText,
		TemplateID:  input.TemplateID,
	}

	created, err := s.noteRepo.Create(ctx, note)
	if err != nil {
		return nil, err
	}

	s.indexNote(created)
	return created, nil
}

// GetNote retrieves a note by ID
func (s *NoteService) GetNote(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Note, error) {
	return s.noteRepo.GetByID(ctx, workspaceID, id)
}

// ListNotes retrieves all notes in a workspace, pinned first
func (s *NoteService) ListNotes(ctx context.Context, workspaceID int32) ([]*domain.Note, error) {
	return s.noteRepo.ListByWorkspace(ctx, workspaceID)
}

// SaveNote persists the latest title/content/plain text for a note by
// upsert, the same write the autosave path issues. Content is stored
// verbatim.
func (s *NoteService) SaveNote(ctx context.Context, workspaceID int32, id uuid.UUID, title, content, plainText string) (*domain.Note, error) {
	if strings.TrimSpace(title) == "" || title == domain.UntitledSentinel {
		title = autosave.DeriveTitle(plainText)
	}

	draft := domain.NoteDraft{
		Title:     title,
		Content:   content,
		PlainText: plainText,
		UpdatedAt: time.Now().UTC(),
	}

	note, err := s.noteRepo.Upsert(ctx, workspaceID, id, draft)
	if err != nil {
		return nil, err
	}

	s.indexNote(note)
	return note, nil
}

// SetPinned pins or unpins a note
func (s *NoteService) SetPinned(ctx context.Context, workspaceID int32, id uuid.UUID, pinned bool) (*domain.Note, error) {
	note, err := s.noteRepo.SetPinned(ctx, workspaceID, id, pinned)
	if err != nil {
		return nil, err
	}
	s.indexNote(note)
	return note, nil
}

// DeleteNote removes a note and its search index entry
func (s *NoteService) DeleteNote(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	if err := s.noteRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}

	if s.indexer != nil {
		// Best effort; a stale index entry is filtered out on read.
		if err := s.indexer.DeleteNote(id); err != nil {
			log.Warn().Err(err).Str("note_id", id.String()).Msg("Failed to remove note from search index")
		}
	}
	return nil
}

// SearchNotes runs a full-text search through the search index when it
// is healthy and falls back to the database otherwise.
func (s *NoteService) SearchNotes(ctx context.Context, workspaceID int32, query string) ([]*domain.Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.noteRepo.ListByWorkspace(ctx, workspaceID)
	}

	if s.searcher != nil && s.searcher.Healthy() {
		results, _, err := s.searcher.Search(search.Query{
			Text:        query,
			WorkspaceID: workspaceID,
		})
		if err == nil {
			return s.resolveResults(ctx, workspaceID, results)
		}
		log.Warn().Err(err).Msg("Search index query failed, falling back to database")
	}

	return s.noteRepo.Search(ctx, workspaceID, query)
}

// DetectTasks returns the task-intent lines of a note's plain text
func (s *NoteService) DetectTasks(ctx context.Context, workspaceID int32, id uuid.UUID) ([]markdown.Task, error) {
	note, err := s.noteRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	return markdown.DetectTasks(note.PlainText), nil
}

// resolveResults maps index hits back to stored rows, dropping hits
// whose note no longer exists.
func (s *NoteService) resolveResults(ctx context.Context, workspaceID int32, results []search.Result) ([]*domain.Note, error) {
	notes := make([]*domain.Note, 0, len(results))
	for _, r := range results {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			continue
		}
		note, err := s.noteRepo.GetByID(ctx, workspaceID, id)
		if err != nil {
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (s *NoteService) indexNote(note *domain.Note) {
	if s.indexer == nil {
		return
	}
	rec := search.NoteRecord{
		ID:          note.ID.String(),
		WorkspaceID: note.WorkspaceID,
		Title:       note.Title,
		PlainText:   note.PlainText,
		Pinned:      note.Pinned,
		UpdatedAt:   note.UpdatedAt.Unix(),
	}
	if err := s.indexer.IndexNote(rec); err != nil {
		log.Warn().Err(err).Str("note_id", note.ID.String()).Msg("Failed to index note")
	}
}
