// Package categorization assigns spending categories to transaction
// descriptions from a keyword table.
package categorization

import (
	"context"
	"log/slog"
	"math"
	"strings"
)

const (
	ExactConfidence   = 0.9
	SearchConfidence  = 0.6
	FuzzyConfidence   = 0.5 // scaled by the fuzzy score
	NoMatchConfidence = 0.1

	DefaultFuzzyThreshold = 80
)

// Tier names the matcher that produced a result.
type Tier string

const (
	TierExact  Tier = "exact"
	TierSearch Tier = "search"
	TierFuzzy  Tier = "fuzzy"
	TierNone   Tier = "none"
)

// Result is the category assigned to one description.
type Result struct {
	Category       string
	CategoryName   string
	MasterCategory string
	Confidence     float64
	MatchedRule    string
	Tier           Tier
}

// Service categorizes descriptions through three tiers: exact keyword
// containment, typo-tolerant full-text search, then fuzzy similarity.
type Service struct {
	categories     []Category
	byID           map[string]Category
	engine         *Engine
	search         *SearchIndex
	fuzzy          *FuzzyMatcher
	fuzzyThreshold int
	logger         *slog.Logger
}

// NewService builds the matchers for categories. An empty table selects
// DefaultCategories.
func NewService(categories []Category, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(categories) == 0 {
		categories = DefaultCategories()
	}

	search, err := NewSearchIndex(categories)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	return &Service{
		categories:     categories,
		byID:           byID,
		engine:         NewEngine(categories),
		search:         search,
		fuzzy:          NewFuzzyMatcher(categories),
		fuzzyThreshold: DefaultFuzzyThreshold,
		logger:         logger,
	}, nil
}

// WithFuzzyThreshold sets the minimum fuzzy score (0-100) for the last tier.
func (s *Service) WithFuzzyThreshold(threshold int) *Service {
	if threshold > 0 && threshold <= 100 {
		s.fuzzyThreshold = threshold
	}
	return s
}

// Categories returns the active keyword table.
func (s *Service) Categories() []Category {
	return s.categories
}

// Categorize returns the category for one description. It never fails: a
// description nothing matches is "other" with NoMatchConfidence.
func (s *Service) Categorize(ctx context.Context, description string) Result {
	cleaned := cleanDescription(description)
	if m := s.engine.Match(cleaned); m != nil {
		return s.exact(m)
	}
	return s.fallback(ctx, cleaned)
}

// CategorizeBatch categorizes descriptions in order. It stops with the
// context's error when ctx is cancelled.
func (s *Service) CategorizeBatch(ctx context.Context, descriptions []string) ([]Result, error) {
	cleaned := make([]string, len(descriptions))
	for i, d := range descriptions {
		cleaned[i] = cleanDescription(d)
	}

	matches := s.engine.MatchBatch(cleaned)
	results := make([]Result, len(descriptions))
	for i, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m != nil {
			results[i] = s.exact(m)
			continue
		}
		results[i] = s.fallback(ctx, cleaned[i])
	}
	return results, nil
}

// Close releases the search index.
func (s *Service) Close() error {
	return s.search.Close()
}

func (s *Service) exact(m *Match) Result {
	return s.result(m.Category, m.Keyword, ExactConfidence, TierExact)
}

func (s *Service) fallback(ctx context.Context, cleaned string) Result {
	if cleaned == "" {
		return s.noMatch()
	}

	hits, err := s.search.Search(cleaned, 5)
	if err != nil {
		s.logger.WarnContext(ctx, "keyword search failed", "description", cleaned, "error", err)
	} else if len(hits) > 0 {
		return s.result(hits[0].Category, hits[0].Keyword, SearchConfidence, TierSearch)
	}

	if m := s.fuzzy.Match(cleaned, s.fuzzyThreshold); m != nil {
		confidence := math.Round(FuzzyConfidence*float64(m.Score)) / 100
		return s.result(m.Category, m.Keyword, confidence, TierFuzzy)
	}

	return s.noMatch()
}

func (s *Service) noMatch() Result {
	r := s.result(CategoryOther, NoMatch, NoMatchConfidence, TierNone)
	if r.CategoryName == "" {
		r.CategoryName = "Other"
		r.MasterCategory = "Other"
	}
	return r
}

func (s *Service) result(category, rule string, confidence float64, tier Tier) Result {
	c := s.byID[category]
	return Result{
		Category:       category,
		CategoryName:   c.Name,
		MasterCategory: c.MasterCategory,
		Confidence:     confidence,
		MatchedRule:    rule,
		Tier:           tier,
	}
}

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"POS ",
	"PURCHASE ",
	"DEBIT CARD ",
	"VISA DEBIT ",
	"PRE-AUTH ",
	"PREAUTHORIZED ",
}

// cleanDescription strips point-of-sale prefixes and trailing reference
// numbers ("NETFLIX*1234", "SHELL #4411") before matching.
func cleanDescription(desc string) string {
	cleaned := strings.Join(strings.Fields(desc), " ")
	upper := strings.ToUpper(cleaned)

	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			break
		}
	}

	if idx := strings.LastIndexAny(cleaned, "*#"); idx > 0 {
		ref := strings.TrimSpace(cleaned[idx+1:])
		if len(ref) <= 6 && isNumeric(ref) {
			cleaned = strings.TrimSpace(cleaned[:idx])
		}
	}
	return cleaned
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
