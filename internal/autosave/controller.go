package autosave

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultDebounceWindow is the quiet period between the last observed
// change and the commit attempt. Long enough to coalesce normal typing
// cadence, short enough that saving feels automatic.
const DefaultDebounceWindow = 1500 * time.Millisecond

// Store is the persistence collaborator the controller commits to.
// It is satisfied by domain.NoteRepository.
type Store interface {
	Upsert(ctx context.Context, workspaceID int32, id uuid.UUID, draft domain.NoteDraft) (*domain.Note, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Note, error)
}

// Surface is the editing-surface collaborator. The controller hands it
// the stored note when the active note changes so it can display the
// title and content.
type Surface interface {
	ShowNote(note *domain.Note)
}

// Config holds tunables for a Controller
type Config struct {
	// DebounceWindow overrides DefaultDebounceWindow when positive
	DebounceWindow time.Duration

	// OnSaved, when set, is invoked after every successful commit with
	// the stored row. Called outside the controller's lock.
	OnSaved func(note *domain.Note)
}

// Controller coalesces bursts of content-change events into a single
// persistence write per pause in activity, and guarantees that write
// carries the most recent content along with either the user's current
// explicit title or one derived from the content.
//
// One Controller serves one open editing surface. All public methods
// are safe for concurrent use; internal state is guarded by a single
// mutex, the Go rendition of the event-loop thread the original design
// assumes.
type Controller struct {
	workspaceID int32
	store       Store
	surface     Surface
	logger      zerolog.Logger
	window      time.Duration
	onSaved     func(note *domain.Note)

	mu      sync.Mutex
	noteID  uuid.UUID
	hasNote bool

	// title is the user's current explicit title. It is read at commit
	// time, not captured at schedule time, so a commit firing after a
	// further title edit still uses the newest value.
	title string

	// pending payload captured from the latest change event
	pendingHTML string
	pendingText string

	// timer is the owned handle for the single pending commit; a new
	// event always stops it before installing its own.
	timer *time.Timer

	// scheduledSeq identifies the newest scheduled commit; a firing
	// timer whose sequence no longer matches was superseded or
	// cancelled and must not commit.
	scheduledSeq uint64

	// dispatchedSeq is the sequence of the newest commit actually sent
	// to the store. A completion older than it may not touch status.
	dispatchedSeq uint64

	inFlight    int
	lastSavedAt time.Time
	hasSaved    bool
}

// NewController creates a Controller for one workspace's editing
// surface. The store is injected so tests can substitute a fake with
// controllable latency and failure.
func NewController(workspaceID int32, store Store, surface Surface, logger zerolog.Logger, cfg Config) *Controller {
	window := cfg.DebounceWindow
	if window <= 0 {
		window = DefaultDebounceWindow
	}

	return &Controller{
		workspaceID: workspaceID,
		store:       store,
		surface:     surface,
		logger:      logger.With().Str("component", "autosave").Logger(),
		window:      window,
		onSaved:     cfg.OnSaved,
	}
}

// OnContentChanged records the full current markup and flattened text
// of the editing surface and re-arms the debounce timer. Fire and
// forget: if N events arrive within the window of each other, exactly
// one commit is attempted, carrying the payload of the last event.
func (c *Controller) OnContentChanged(html, plainText string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingHTML = html
	c.pendingText = plainText
	c.rescheduleLocked()
}

// OnTitleEdited updates the controller's notion of the current
// explicit title and arms the same debounce-and-commit path as a
// content change, so a title-only edit is also durably saved.
func (c *Controller) OnTitleEdited(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.title = title
	c.rescheduleLocked()
}

// OnActiveNoteChanged switches the controller to a different note, or
// to none when noteID is uuid.Nil. Any commit pending for the previous
// note is cancelled, save status is reset, and the newly selected
// note is loaded from the store and handed to the surface.
//
// A pending edit dropped here is accepted because the surrounding UI
// contract has the editing surface flush the previous note before
// switching.
func (c *Controller) OnActiveNoteChanged(ctx context.Context, noteID uuid.UUID) error {
	c.mu.Lock()
	if c.timer != nil {
		if c.timer.Stop() {
			c.logger.Debug().
				Str("note_id", c.noteID.String()).
				Msg("Dropped pending save on note switch")
		}
		c.timer = nil
	}
	c.scheduledSeq++ // invalidate any commit already past its timer

	c.noteID = noteID
	c.hasNote = noteID != uuid.Nil
	c.title = ""
	c.pendingHTML = ""
	c.pendingText = ""
	c.lastSavedAt = time.Time{}
	c.hasSaved = false
	c.mu.Unlock()

	if noteID == uuid.Nil {
		return nil
	}

	note, err := c.store.GetByID(ctx, c.workspaceID, noteID)
	if err != nil {
		c.logger.Error().Err(err).Str("note_id", noteID.String()).Msg("Failed to load note")
		return err
	}

	c.mu.Lock()
	if c.noteID == noteID {
		// Seed the controller so a title-only edit commits against the
		// loaded content rather than a blank payload.
		c.title = note.Title
		c.pendingHTML = note.Content
		c.pendingText = note.PlainText
	}
	c.mu.Unlock()

	if c.surface != nil {
		c.surface.ShowNote(note)
	}
	return nil
}

// Saving reports whether a commit is currently in flight
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// LastSavedAt returns the timestamp of the last successful commit for
// the active note, and whether one has happened since it was selected.
func (c *Controller) LastSavedAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSavedAt, c.hasSaved
}

// Close cancels any pending commit. In-flight writes are not
// interrupted; only the local scheduling is cancellable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.scheduledSeq++
}

// rescheduleLocked cancels the outstanding commit timer, if any, and
// installs a new one for the current pending payload. Caller holds mu.
func (c *Controller) rescheduleLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.scheduledSeq++
	seq := c.scheduledSeq
	c.timer = time.AfterFunc(c.window, func() {
		c.commit(seq)
	})
}

// commit is invoked when the debounce timer fires. Guard conditions
// abort silently: a missing active note means there is nothing to
// attach the write to, and a blank payload must never overwrite a note
// after a race during note switch. Storage failures are logged and
// absorbed; the next keystroke re-arms the debounce path, which is the
// system's retry mechanism.
func (c *Controller) commit(seq uint64) {
	c.mu.Lock()

	if seq != c.scheduledSeq {
		// Superseded by a later event or cancelled by a note switch.
		c.mu.Unlock()
		return
	}
	c.timer = nil

	if !c.hasNote {
		c.logger.Debug().Msg("Skipping save, no active note")
		c.mu.Unlock()
		return
	}
	if strings.TrimSpace(c.pendingText) == "" {
		c.logger.Debug().Str("note_id", c.noteID.String()).Msg("Skipping save, empty content")
		c.mu.Unlock()
		return
	}

	title := c.title
	if title == "" || title == domain.UntitledSentinel {
		title = DeriveTitle(c.pendingText)
	}

	noteID := c.noteID
	draft := domain.NoteDraft{
		Title:     title,
		Content:   c.pendingHTML, // verbatim, never reprocessed
		PlainText: c.pendingText,
		UpdatedAt: time.Now().UTC(),
	}

	c.dispatchedSeq = seq
	c.inFlight++
	c.mu.Unlock()

	note, err := c.store.Upsert(context.Background(), c.workspaceID, noteID, draft)

	c.mu.Lock()
	c.inFlight--
	if err != nil {
		// Status keeps showing the previous success; the error is never
		// surfaced into the editing session.
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("note_id", noteID.String()).Msg("Autosave failed")
		return
	}
	stale := seq != c.dispatchedSeq
	if !stale && c.noteID == noteID {
		c.lastSavedAt = draft.UpdatedAt
		c.hasSaved = true
	}
	c.mu.Unlock()

	c.logger.Debug().
		Str("note_id", noteID.String()).
		Str("title", draft.Title).
		Bool("stale", stale).
		Msg("Autosaved note")

	if c.onSaved != nil {
		c.onSaved(note)
	}
}
