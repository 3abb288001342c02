package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWindow = 40 * time.Millisecond

// settle is long enough for a pending timer plus the commit to finish
const settle = 5 * testWindow

type recordingSurface struct {
	mu    sync.Mutex
	shown []*domain.Note
}

func (s *recordingSurface) ShowNote(note *domain.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, note)
}

func (s *recordingSurface) Shown() []*domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := make([]*domain.Note, len(s.shown))
	copy(notes, s.shown)
	return notes
}

func setupController(t *testing.T) (*Controller, *testutil.MockNoteRepository, *recordingSurface, uuid.UUID) {
	t.Helper()

	repo := testutil.NewMockNoteRepository()
	noteID := uuid.New()
	repo.AddNote(&domain.Note{
		ID:          noteID,
		WorkspaceID: 1,
		Title:       domain.UntitledSentinel,
		Content:     "<p>stored</p>",
		PlainText:   "stored",
	})

	surface := &recordingSurface{}
	ctrl := NewController(1, repo, surface, zerolog.Nop(), Config{DebounceWindow: testWindow})
	t.Cleanup(ctrl.Close)
	return ctrl, repo, surface, noteID
}

func TestController_DebounceCoalescing(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnContentChanged("<p>H</p>", "H")
	time.Sleep(10 * time.Millisecond)
	ctrl.OnContentChanged("<p>He</p>", "He")
	time.Sleep(10 * time.Millisecond)
	ctrl.OnContentChanged("<p>Hel</p>", "Hel")

	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 1, "a burst within the window must produce exactly one commit")
	assert.Equal(t, "<p>Hel</p>", calls[0].Draft.Content, "commit must carry the last payload of the burst")
	assert.Equal(t, "Hel", calls[0].Draft.PlainText)
	assert.Equal(t, noteID, calls[0].ID)
}

func TestController_SpacedEventsCommitSeparately(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnContentChanged("<p>one</p>", "one")
	time.Sleep(settle)
	ctrl.OnContentChanged("<p>two</p>", "two")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "<p>one</p>", calls[0].Draft.Content)
	assert.Equal(t, "<p>two</p>", calls[1].Draft.Content)
}

func TestController_EmptyContentGuard(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnContentChanged("", "")
	time.Sleep(settle)

	assert.Empty(t, repo.UpsertCalls(), "a cleared note must not be persisted")

	ctrl.OnContentChanged("<p><br></p>", "  \n  ")
	time.Sleep(settle)

	assert.Empty(t, repo.UpsertCalls(), "whitespace-only plain text must not be persisted")
}

func TestController_NoActiveNoteGuard(t *testing.T) {
	ctrl, repo, _, _ := setupController(t)

	ctrl.OnContentChanged("<p>orphan</p>", "orphan")
	time.Sleep(settle)

	assert.Empty(t, repo.UpsertCalls(), "no commit without a selected note")
}

func TestController_ContentPurity(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	html := `<h1 style="color:red">Heading</h1><ul><li>a &amp; b</li></ul>`
	ctrl.OnContentChanged(html, "Heading\na & b")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, html, calls[0].Draft.Content, "content must pass through byte for byte")
	assert.Equal(t, "Heading", calls[0].Draft.Title, "derivation runs on plain text only")
}

func TestController_TitleFallbackFromContent(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnContentChanged("<p>First real line</p><p>Second line</p>", "\n\n  First real line\nSecond line")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "First real line", calls[0].Draft.Title)
}

func TestController_ExplicitTitlePrecedence(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnTitleEdited("My Notes")
	ctrl.OnContentChanged("<p>body text</p>", "body text")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "My Notes", calls[0].Draft.Title, "explicit title wins, derivation never runs")
}

func TestController_SentinelTitleTriggersDerivation(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnTitleEdited(domain.UntitledSentinel)
	ctrl.OnContentChanged("<p>Meeting notes</p>", "Meeting notes")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Meeting notes", calls[0].Draft.Title)
}

func TestController_TitleEditUsesLoadedContent(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	// Title-only edit, no content change since the note was loaded.
	ctrl.OnTitleEdited("Renamed")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Renamed", calls[0].Draft.Title)
	assert.Equal(t, "<p>stored</p>", calls[0].Draft.Content, "title-only save keeps the loaded content")
}

func TestController_CommitUsesLatestTitle(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnContentChanged("<p>body</p>", "body")
	time.Sleep(10 * time.Millisecond)
	ctrl.OnTitleEdited("Newest Title")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Newest Title", calls[0].Draft.Title, "commit must read the title through the live cell, not a snapshot")
}

func TestController_NoteSwitchCancelsPendingCommit(t *testing.T) {
	ctrl, repo, _, noteA := setupController(t)
	noteB := uuid.New()
	repo.AddNote(&domain.Note{ID: noteB, WorkspaceID: 1, Title: "B", Content: "<p>b</p>", PlainText: "b"})

	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteA))
	ctrl.OnContentChanged("<p>edit for A</p>", "edit for A")

	// Switch before A's window elapses.
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteB))
	time.Sleep(settle)

	for _, call := range repo.UpsertCalls() {
		assert.NotEqual(t, noteA, call.ID, "A's pending edit must not be committed")
		assert.NotEqual(t, "edit for A", call.Draft.Content, "A's payload must never land on B")
	}
}

func TestController_NoteSwitchResetsStatus(t *testing.T) {
	ctrl, repo, _, noteA := setupController(t)
	noteB := uuid.New()
	repo.AddNote(&domain.Note{ID: noteB, WorkspaceID: 1, Title: "B", Content: "<p>b</p>", PlainText: "b"})

	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteA))
	ctrl.OnContentChanged("<p>saved</p>", "saved")
	time.Sleep(settle)

	_, saved := ctrl.LastSavedAt()
	require.True(t, saved)

	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteB))
	_, saved = ctrl.LastSavedAt()
	assert.False(t, saved, "status belongs to the previous note and must reset")
}

func TestController_DeselectCancelsAndLoadsNothing(t *testing.T) {
	ctrl, repo, surface, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))
	ctrl.OnContentChanged("<p>pending</p>", "pending")

	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), uuid.Nil))
	time.Sleep(settle)

	assert.Empty(t, repo.UpsertCalls())
	assert.Len(t, surface.Shown(), 1, "only the initial selection loads a note")
}

func TestController_LoadShowsStoredNote(t *testing.T) {
	ctrl, _, surface, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	shown := surface.Shown()
	require.Len(t, shown, 1)
	assert.Equal(t, noteID, shown[0].ID)
	assert.Equal(t, "<p>stored</p>", shown[0].Content)
}

func TestController_LoadFailureSurfaced(t *testing.T) {
	ctrl, _, surface, _ := setupController(t)

	err := ctrl.OnActiveNoteChanged(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	assert.Empty(t, surface.Shown())
}

func TestController_SaveFailureKeepsStatusAndRetriesOnNextEdit(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	repo.UpsertErr = errors.New("network down")
	ctrl.OnContentChanged("<p>lost</p>", "lost")
	time.Sleep(settle)

	_, saved := ctrl.LastSavedAt()
	assert.False(t, saved, "a failed commit is never promoted to saved")
	assert.False(t, ctrl.Saving())

	// The next keystroke is the retry mechanism.
	repo.UpsertErr = nil
	ctrl.OnContentChanged("<p>recovered</p>", "recovered")
	time.Sleep(settle)

	_, saved = ctrl.LastSavedAt()
	assert.True(t, saved)
	calls := repo.UpsertCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "<p>recovered</p>", calls[0].Draft.Content)
}

func TestController_SavingFlagDuringInFlightCommit(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	repo.UpsertDelays = []time.Duration{3 * testWindow}
	ctrl.OnContentChanged("<p>slow</p>", "slow")

	time.Sleep(testWindow + testWindow/2) // timer fired, upsert sleeping
	assert.True(t, ctrl.Saving())

	time.Sleep(settle)
	assert.False(t, ctrl.Saving())
	_, saved := ctrl.LastSavedAt()
	assert.True(t, saved)
}

func TestController_StaleCommitDoesNotAdvanceStatus(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	// First commit resolves long after the second one.
	repo.UpsertDelays = []time.Duration{6 * testWindow, 0}

	ctrl.OnContentChanged("<p>first</p>", "first")
	time.Sleep(testWindow + testWindow/2) // first commit dispatched
	ctrl.OnContentChanged("<p>second</p>", "second")
	time.Sleep(10 * testWindow) // both commits resolved

	calls := repo.UpsertCalls()
	require.Len(t, calls, 2)

	// The slow first commit lands last in the mock, but status must
	// reflect the most recently issued commit.
	savedAt, saved := ctrl.LastSavedAt()
	require.True(t, saved)
	var second domain.NoteDraft
	for _, call := range calls {
		if call.Draft.Content == "<p>second</p>" {
			second = call.Draft
		}
	}
	assert.Equal(t, second.UpdatedAt, savedAt, "stale completion must not overwrite newer status")
}

func TestController_IdempotentRepeatedCommit(t *testing.T) {
	ctrl, repo, _, noteID := setupController(t)
	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))

	ctrl.OnContentChanged("<p>same</p>", "same")
	time.Sleep(settle)
	ctrl.OnContentChanged("<p>same</p>", "same")
	time.Sleep(settle)

	calls := repo.UpsertCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Draft.Content, calls[1].Draft.Content)

	note, err := repo.GetByID(context.Background(), 1, noteID)
	require.NoError(t, err)
	assert.Equal(t, "<p>same</p>", note.Content, "upsert-by-id leaves one row in the same final state")
	assert.Equal(t, "same", note.PlainText)
}

func TestController_OnSavedHook(t *testing.T) {
	repo := testutil.NewMockNoteRepository()
	noteID := uuid.New()
	repo.AddNote(&domain.Note{ID: noteID, WorkspaceID: 1, Content: "<p>x</p>", PlainText: "x"})

	var mu sync.Mutex
	var savedTitles []string
	ctrl := NewController(1, repo, nil, zerolog.Nop(), Config{
		DebounceWindow: testWindow,
		OnSaved: func(note *domain.Note) {
			mu.Lock()
			savedTitles = append(savedTitles, note.Title)
			mu.Unlock()
		},
	})
	t.Cleanup(ctrl.Close)

	require.NoError(t, ctrl.OnActiveNoteChanged(context.Background(), noteID))
	ctrl.OnContentChanged("<p>Hook test</p>", "Hook test")
	time.Sleep(settle)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, savedTitles, 1)
	assert.Equal(t, "Hook test", savedTitles[0])
}
