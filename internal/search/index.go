// Package search maintains a full-text index over chat messages.
//
// Indexing is best effort: the store's search blob is the durable record,
// and the index can always be rebuilt from it. An indexing failure is
// logged and never fails the chat turn that triggered it.
package search

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/mapping"

	"github.com/mkessel/daynote/internal/domain"
	"github.com/mkessel/daynote/internal/logging"
)

// messageDoc is the indexed shape of one chat message.
type messageDoc struct {
	SessionID string `json:"sessionId"`
	OwnerID   string `json:"ownerId"`
	Date      string `json:"date"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Hit is one search result.
type Hit struct {
	SessionID string  `json:"sessionId"`
	Date      string  `json:"date"`
	Role      string  `json:"role"`
	Snippet   string  `json:"snippet"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

// indexMapping declares every messageDoc field explicitly. Without it
// bleve auto-detects the date key as a datetime and stored-field retrieval
// hands back "2026-08-31T00:00:00Z" instead of the session's date string.
func indexMapping() mapping.IndexMapping {
	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	content := bleve.NewTextFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("sessionId", kw)
	doc.AddFieldMappingsAt("ownerId", kw)
	doc.AddFieldMappingsAt("date", kw)
	doc.AddFieldMappingsAt("role", kw)
	doc.AddFieldMappingsAt("content", content)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Index is a bleve-backed message index.
type Index struct {
	bleve bleve.Index
	log   *logging.Logger
}

// Open opens (or creates) a disk-backed index at path.
func Open(path string, log *logging.Logger) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("opening search index: %w", err)
		}
		idx, err = bleve.New(path, indexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating search index: %w", err)
		}
	}
	return &Index{bleve: idx, log: log.Sub("search")}, nil
}

// OpenMemOnly creates an in-memory index, used by tests and the CLI.
func OpenMemOnly(log *logging.Logger) (*Index, error) {
	idx, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &Index{bleve: idx, log: log.Sub("search")}, nil
}

// Close closes the underlying index.
func (x *Index) Close() error {
	return x.bleve.Close()
}

// IndexMessage adds one message to the index. Failures are logged, not
// returned; callers never gate a turn on indexing.
func (x *Index) IndexMessage(sess *domain.ChatSession, msg domain.Message) {
	docID := fmt.Sprintf("%s/%d", sess.ID, msg.Timestamp.UnixNano())
	doc := messageDoc{
		SessionID: sess.ID,
		OwnerID:   sess.OwnerID,
		Date:      sess.Date,
		Role:      msg.Role,
		Content:   msg.Content,
	}
	if err := x.bleve.Index(docID, doc); err != nil {
		x.log.Warn().Str("doc", docID).Err(err).Msg("indexing failed")
	}
}

// Search runs a query-string query and returns up to k ranked hits.
func (x *Index) Search(q string, k int) ([]Hit, error) {
	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k, 0, false)
	searchReq.Fields = []string{"sessionId", "date", "role", "content"}
	res, err := x.bleve.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var out []Hit
	for i, hit := range res.Hits {
		h := Hit{Score: hit.Score, Rank: i + 1}
		if v, ok := hit.Fields["sessionId"].(string); ok {
			h.SessionID = v
		}
		if v, ok := hit.Fields["date"].(string); ok {
			h.Date = v
		}
		if v, ok := hit.Fields["role"].(string); ok {
			h.Role = v
		}
		if v, ok := hit.Fields["content"].(string); ok {
			h.Snippet = snippet(v)
		}
		out = append(out, h)
	}
	return out, nil
}

// snippet truncates content for result display.
func snippet(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
