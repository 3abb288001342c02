package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/search"
)

// UpsertCall records a single upsert issued against MockNoteRepository
type UpsertCall struct {
	WorkspaceID int32
	ID          uuid.UUID
	Draft       domain.NoteDraft
}

// MockNoteRepository is an in-memory implementation of
// domain.NoteRepository. Upsert latency and failure are controllable
// so autosave behavior can be exercised deterministically.
type MockNoteRepository struct {
	mu           sync.Mutex
	Notes        map[uuid.UUID]*domain.Note
	UpsertErr    error
	UpsertDelays []time.Duration // consumed one per Upsert call, in order
	upsertCalls  []UpsertCall
}

// NewMockNoteRepository creates a new MockNoteRepository
func NewMockNoteRepository() *MockNoteRepository {
	return &MockNoteRepository{
		Notes: make(map[uuid.UUID]*domain.Note),
	}
}

// AddNote seeds a note
func (m *MockNoteRepository) AddNote(note *domain.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notes[note.ID] = note
}

// UpsertCalls returns a copy of the recorded upsert calls
func (m *MockNoteRepository) UpsertCalls() []UpsertCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]UpsertCall, len(m.upsertCalls))
	copy(calls, m.upsertCalls)
	return calls
}

// Create creates a new note
func (m *MockNoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	m.Notes[note.ID] = note
	return note, nil
}

// GetByID retrieves a note by ID
func (m *MockNoteRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.Notes[id]
	if !ok || note.WorkspaceID != workspaceID {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

// ListByWorkspace lists notes for a workspace, pinned first
func (m *MockNoteRepository) ListByWorkspace(ctx context.Context, workspaceID int32) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pinned, rest []*domain.Note
	for _, note := range m.Notes {
		if note.WorkspaceID != workspaceID {
			continue
		}
		if note.Pinned {
			pinned = append(pinned, note)
		} else {
			rest = append(rest, note)
		}
	}
	return append(pinned, rest...), nil
}

// Search returns notes whose title or plain text contains the query
func (m *MockNoteRepository) Search(ctx context.Context, workspaceID int32, query string) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var result []*domain.Note
	for _, note := range m.Notes {
		if note.WorkspaceID != workspaceID {
			continue
		}
		if strings.Contains(strings.ToLower(note.Title), q) || strings.Contains(strings.ToLower(note.PlainText), q) {
			result = append(result, note)
		}
	}
	return result, nil
}

// Upsert inserts or updates a note by ID
func (m *MockNoteRepository) Upsert(ctx context.Context, workspaceID int32, id uuid.UUID, draft domain.NoteDraft) (*domain.Note, error) {
	m.mu.Lock()
	var delay time.Duration
	if len(m.UpsertDelays) > 0 {
		delay = m.UpsertDelays[0]
		m.UpsertDelays = m.UpsertDelays[1:]
	}
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}

	m.upsertCalls = append(m.upsertCalls, UpsertCall{WorkspaceID: workspaceID, ID: id, Draft: draft})

	note, ok := m.Notes[id]
	if !ok {
		note = &domain.Note{
			ID:          id,
			WorkspaceID: workspaceID,
			CreatedAt:   draft.UpdatedAt,
		}
		m.Notes[id] = note
	}
	note.Title = draft.Title
	note.Content = draft.Content
	note.PlainText = draft.PlainText
	note.UpdatedAt = draft.UpdatedAt
	return note, nil
}

// SetPinned updates a note's pinned flag
func (m *MockNoteRepository) SetPinned(ctx context.Context, workspaceID int32, id uuid.UUID, pinned bool) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.Notes[id]
	if !ok || note.WorkspaceID != workspaceID {
		return nil, domain.ErrNoteNotFound
	}
	note.Pinned = pinned
	return note, nil
}

// Delete removes a note
func (m *MockNoteRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.Notes[id]
	if !ok || note.WorkspaceID != workspaceID {
		return domain.ErrNoteNotFound
	}
	delete(m.Notes, id)
	return nil
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu    sync.Mutex
	Users map[string]*domain.User
	ByID  map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	mu         sync.Mutex
	Workspaces map[int32]*domain.Workspace
	ByAuth0ID  map[string]*domain.Workspace
	nextID     int32
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{
		Workspaces: make(map[int32]*domain.Workspace),
		ByAuth0ID:  make(map[string]*domain.Workspace),
	}
}

// AddWorkspace seeds a workspace, optionally bound to an Auth0 ID
func (m *MockWorkspaceRepository) AddWorkspace(ws *domain.Workspace, auth0ID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Workspaces[ws.ID] = ws
	if auth0ID != "" {
		m.ByAuth0ID[auth0ID] = ws
	}
}

// GetByID retrieves a workspace by ID
func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id int32) (*domain.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws, ok := m.Workspaces[id]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetByUserAuth0ID retrieves a workspace by its owner's Auth0 ID
func (m *MockWorkspaceRepository) GetByUserAuth0ID(ctx context.Context, auth0ID string) (*domain.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws, ok := m.ByAuth0ID[auth0ID]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// CreateForUser creates a workspace owned by the given user
func (m *MockWorkspaceRepository) CreateForUser(ctx context.Context, userID uuid.UUID, name string) (*domain.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ws := &domain.Workspace{
		ID:        m.nextID,
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	m.Workspaces[ws.ID] = ws
	return ws, nil
}

// MockSearcher is a mock implementation of search.Searcher
type MockSearcher struct {
	Results   []search.Result
	Total     int
	SearchErr error
	IsHealthy bool
	Queries   []search.Query
}

// NewMockSearcher creates a healthy mock searcher
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{IsHealthy: true}
}

// Search records the query and returns the configured results
func (m *MockSearcher) Search(q search.Query) ([]search.Result, int, error) {
	m.Queries = append(m.Queries, q)
	if m.SearchErr != nil {
		return nil, 0, m.SearchErr
	}
	return m.Results, m.Total, nil
}

// Healthy reports the configured health state
func (m *MockSearcher) Healthy() bool {
	return m.IsHealthy
}

// MockIndexer is a mock implementation of search.Indexer
type MockIndexer struct {
	Indexed    []search.NoteRecord
	Deleted    []uuid.UUID
	IndexErr  error
	DeleteErr error
}

// NewMockIndexer creates a new MockIndexer
func NewMockIndexer() *MockIndexer {
	return &MockIndexer{}
}

// IndexNote records the indexed document
func (m *MockIndexer) IndexNote(rec search.NoteRecord) error {
	if m.IndexErr != nil {
		return m.IndexErr
	}
	m.Indexed = append(m.Indexed, rec)
	return nil
}

// DeleteNote records the deleted document ID
func (m *MockIndexer) DeleteNote(id uuid.UUID) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}
