package search

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	meili "github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
)

const idxNotes = "inkwell_notes"

// Meili implements Searcher and Indexer via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	logger  zerolog.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the notes
// index. The caller should proceed without it if the initial
// connection fails; note search then degrades to the database path.
func NewMeili(url, apiKey string, logger zerolog.Logger) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		logger: logger.With().Str("component", "search").Logger(),
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		m.logger.Warn().Err(err).Str("url", url).Msg("Meilisearch unavailable")
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxNotes,
		PrimaryKey: "id",
	}); err != nil {
		m.logger.Debug().Err(err).Msg("Create index (may already exist)")
	}

	index := m.client.Index(idxNotes)
	filterable := []interface{}{"workspaceId", "pinned"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to update filterable attributes")
	}
	searchable := []string{"title", "plainText"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to update searchable attributes")
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info().Msg("Meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries the notes index scoped to a workspace.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	resp, err := m.client.Index(idxNotes).Search(q.Text, &meili.SearchRequest{
		Limit:                 limit,
		Filter:                []string{fmt.Sprintf("workspaceId = %d", q.WorkspaceID)},
		AttributesToHighlight: []string{"*"},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, hitToResult(hit))
	}
	return results, int(resp.EstimatedTotalHits), nil
}

// IndexNote adds or replaces a note in the search index.
func (m *Meili) IndexNote(rec NoteRecord) error {
	_, err := m.client.Index(idxNotes).AddDocuments([]NoteRecord{rec}, nil)
	return err
}

// DeleteNote removes a note from the search index.
func (m *Meili) DeleteNote(id uuid.UUID) error {
	_, err := m.client.Index(idxNotes).DeleteDocument(id.String(), nil)
	return err
}

func hitToResult(hit meili.Hit) Result {
	r := Result{
		ID:     decodeString(hit, "id"),
		Pinned: decodeBool(hit, "pinned"),
	}
	r.Title = firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title"))
	r.Snippet = firstNonBlank(decodeFormattedString(hit, "plainText"), decodeString(hit, "plainText"))
	if ts := decodeInt64(hit, "updatedAt"); ts > 0 {
		r.UpdatedAt = time.Unix(ts, 0).UTC()
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeBool(hit meili.Hit, key string) bool {
	raw, ok := hit[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return false
}

func decodeInt64(hit meili.Hit, key string) int64 {
	raw, ok := hit[key]
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	return 0
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(formatted[key], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
