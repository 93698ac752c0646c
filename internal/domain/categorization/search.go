package categorization

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

var ErrIndexClosed = errors.New("search index closed")

// SearchFuzziness is the edit distance allowed per term by the full-text tier.
const SearchFuzziness = 1

// keywordDocument is one indexed keyword.
type keywordDocument struct {
	Keyword  string  `json:"keyword"`
	Category string  `json:"category"`
	Rank     float64 `json:"rank"`
}

// SearchResult is a full-text hit on a keyword.
type SearchResult struct {
	Keyword  string
	Category string
	Rank     int
	Score    float64
}

// SearchIndex is an in-memory bleve index of the keyword table. It tolerates
// typos per term, so "STARBUKS" still finds "starbucks".
type SearchIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewSearchIndex creates an index over the given categories.
func NewSearchIndex(categories []Category) (*SearchIndex, error) {
	si := &SearchIndex{}
	if err := si.Build(categories); err != nil {
		return nil, err
	}
	return si, nil
}

func buildIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = simple.Name

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("keyword", text)
	doc.AddFieldMappingsAt("category", exact)
	doc.AddFieldMappingsAt("rank", bleve.NewNumericFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = simple.Name
	return m
}

// Build replaces the index contents with the given categories.
func (si *SearchIndex) Build(categories []Category) error {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := index.NewBatch()
	for _, r := range flatten(categories) {
		doc := keywordDocument{Keyword: r.keyword, Category: r.category, Rank: float64(r.rank)}
		if err := batch.Index(fmt.Sprintf("kw_%d", r.rank), doc); err != nil {
			_ = index.Close()
			return fmt.Errorf("index keyword %q: %w", r.keyword, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return fmt.Errorf("execute index batch: %w", err)
	}

	si.mu.Lock()
	old := si.index
	si.index = index
	si.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Search runs a fuzzy query for every description token of at least
// MinFuzzyTokenLength characters and returns keyword hits, best first.
// Keywords shorter than MinFuzzyTokenLength are never returned.
func (si *SearchIndex) Search(description string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	var terms []query.Query
	for _, t := range tokens(description) {
		if len(t) < MinFuzzyTokenLength {
			continue
		}
		q := bleve.NewFuzzyQuery(strings.ToLower(t))
		q.SetField("keyword")
		q.SetFuzziness(SearchFuzziness)
		terms = append(terms, q)
	}
	if len(terms) == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(terms...))
	req.Size = limit
	req.Fields = []string{"keyword", "category", "rank"}

	si.mu.RLock()
	defer si.mu.RUnlock()
	if si.index == nil {
		return nil, ErrIndexClosed
	}
	res, err := si.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search keywords: %w", err)
	}

	return convertResults(res), nil
}

func convertResults(res *bleve.SearchResult) []SearchResult {
	out := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := SearchResult{Score: hit.Score}
		if v, ok := hit.Fields["keyword"].(string); ok {
			r.Keyword = v
		}
		if v, ok := hit.Fields["category"].(string); ok {
			r.Category = v
		}
		if v, ok := hit.Fields["rank"].(float64); ok {
			r.Rank = int(v)
		}
		if len(r.Keyword) < MinFuzzyTokenLength || r.Category == "" {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}

// DocumentCount returns the number of indexed keywords.
func (si *SearchIndex) DocumentCount() (uint64, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	if si.index == nil {
		return 0, ErrIndexClosed
	}
	return si.index.DocCount()
}

// Close releases the index.
func (si *SearchIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()
	if si.index == nil {
		return nil
	}
	err := si.index.Close()
	si.index = nil
	return err
}
