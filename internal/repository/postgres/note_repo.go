package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NoteRepository implements domain.NoteRepository using PostgreSQL
type NoteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

const noteColumns = `id, workspace_id, title, content, plain_text, pinned, template_id, created_at, updated_at`

// Create inserts a new note and returns the stored row
func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	query := `
		INSERT INTO notes (id, workspace_id, title, content, plain_text, pinned, template_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + noteColumns

	id := note.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, query,
		id, note.WorkspaceID, note.Title, note.Content, note.PlainText, note.Pinned, note.TemplateID)
	return scanNote(row)
}

// GetByID retrieves a note by its ID within a workspace
func (r *NoteRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND workspace_id = $2`

	note, err := scanNote(r.pool.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// ListByWorkspace retrieves all notes in a workspace, pinned notes
// first, most recently updated within each group
func (r *NoteRepository) ListByWorkspace(ctx context.Context, workspaceID int32) ([]*domain.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE workspace_id = $1
		ORDER BY pinned DESC, updated_at DESC`

	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// Search retrieves notes whose title or plain text matches the query.
// This is the fallback path when the search index is unavailable.
func (r *NoteRepository) Search(ctx context.Context, workspaceID int32, query string) ([]*domain.Note, error) {
	sql := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE workspace_id = $1
		  AND (title ILIKE '%' || $2 || '%' OR plain_text ILIKE '%' || $2 || '%')
		ORDER BY pinned DESC, updated_at DESC`

	rows, err := r.pool.Query(ctx, sql, workspaceID, query)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// Upsert inserts the note row or, when the id already exists in the
// workspace, overwrites its title, content, plain text and timestamp.
// Content is written exactly as received.
func (r *NoteRepository) Upsert(ctx context.Context, workspaceID int32, id uuid.UUID, draft domain.NoteDraft) (*domain.Note, error) {
	query := `
		INSERT INTO notes (id, workspace_id, title, content, plain_text, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    content = EXCLUDED.content,
		    plain_text = EXCLUDED.plain_text,
		    updated_at = EXCLUDED.updated_at
		WHERE notes.workspace_id = EXCLUDED.workspace_id
		RETURNING ` + noteColumns

	note, err := scanNote(r.pool.QueryRow(ctx, query,
		id, workspaceID, draft.Title, draft.Content, draft.PlainText, draft.UpdatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflicting id belongs to another workspace.
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("upsert note: %w", err)
	}
	return note, nil
}

// SetPinned updates a note's pinned flag
func (r *NoteRepository) SetPinned(ctx context.Context, workspaceID int32, id uuid.UUID, pinned bool) (*domain.Note, error) {
	query := `
		UPDATE notes SET pinned = $3
		WHERE id = $1 AND workspace_id = $2
		RETURNING ` + noteColumns

	note, err := scanNote(r.pool.QueryRow(ctx, query, id, workspaceID, pinned))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// Delete removes a note
func (r *NoteRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var note domain.Note
	err := row.Scan(
		&note.ID, &note.WorkspaceID, &note.Title, &note.Content, &note.PlainText,
		&note.Pinned, &note.TemplateID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func collectNotes(rows pgx.Rows) ([]*domain.Note, error) {
	var notes []*domain.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
