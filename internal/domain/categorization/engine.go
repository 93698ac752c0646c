package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Match is an exact keyword hit.
type Match struct {
	Keyword  string
	Category string
	Rank     int // table position of the keyword, lower wins
}

// Engine matches every keyword of the table against a description in a single
// pass using the Aho-Corasick algorithm. Matching is case-insensitive substring
// matching, so the cost is independent of the number of keywords.
type Engine struct {
	matcher  *ahocorasick.Matcher
	patterns []string
	metadata [][]Match // per pattern; a keyword listed under two categories has two entries
	mu       sync.RWMutex
}

// NewEngine builds an engine over the given categories.
func NewEngine(categories []Category) *Engine {
	e := &Engine{}
	e.Build(categories)
	return e
}

// Build replaces the keyword automaton.
func (e *Engine) Build(categories []Category) {
	rules := flatten(categories)

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(rules) == 0 {
		e.matcher, e.patterns, e.metadata = nil, nil, nil
		return
	}

	index := make(map[string]int, len(rules))
	patterns := make([]string, 0, len(rules))
	metadata := make([][]Match, 0, len(rules))
	for _, r := range rules {
		m := Match{Keyword: r.keyword, Category: r.category, Rank: r.rank}
		if i, ok := index[r.pattern]; ok {
			metadata[i] = append(metadata[i], m)
			continue
		}
		index[r.pattern] = len(patterns)
		patterns = append(patterns, r.pattern)
		metadata = append(metadata, []Match{m})
	}

	e.patterns = patterns
	e.metadata = metadata
	e.matcher = ahocorasick.NewStringMatcher(patterns)
}

// Match returns the best keyword hit in description, or nil.
func (e *Engine) Match(description string) *Match {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.match(description)
}

// MatchBatch matches several descriptions under one lock. Entries without a hit
// are nil.
func (e *Engine) MatchBatch(descriptions []string) []*Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*Match, len(descriptions))
	for i, d := range descriptions {
		out[i] = e.match(d)
	}
	return out
}

func (e *Engine) match(description string) *Match {
	if e.matcher == nil {
		return nil
	}
	hits := e.matcher.MatchThreadSafe([]byte(strings.ToUpper(description)))

	var best *Match
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.metadata) {
			continue
		}
		for i := range e.metadata[idx] {
			m := e.metadata[idx][i]
			if best == nil || m.Rank < best.Rank {
				best = &m
			}
		}
	}
	return best
}

// PatternCount returns the number of distinct keywords loaded.
func (e *Engine) PatternCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.patterns)
}

// IsEmpty reports whether the engine has no keywords.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher == nil
}
