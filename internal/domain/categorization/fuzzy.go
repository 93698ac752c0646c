package categorization

import (
	"strings"
	"sync"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MinFuzzyTokenLength is the shortest description token compared fuzzily.
// Shorter tokens ("BUS", "ATM") are too close to unrelated words.
const MinFuzzyTokenLength = 4

// FuzzyMatch is a near-miss keyword hit.
type FuzzyMatch struct {
	Keyword   string
	Category  string
	Candidate string // the description fragment that matched
	Score     int    // 0-100
	Distance  int    // Levenshtein distance between keyword and candidate
	Rank      int
}

// FuzzyMatcher catches misspelled or run-together merchant names that the exact
// engine misses, e.g. "NETFLX.COM" or "TIMHORTONS #123".
type FuzzyMatcher struct {
	rules []keywordRule
	mu    sync.RWMutex
}

// NewFuzzyMatcher creates a matcher over the given categories.
func NewFuzzyMatcher(categories []Category) *FuzzyMatcher {
	fm := &FuzzyMatcher{}
	fm.Build(categories)
	return fm
}

// Build replaces the keyword set.
func (fm *FuzzyMatcher) Build(categories []Category) {
	rules := flatten(categories)
	fm.mu.Lock()
	fm.rules = rules
	fm.mu.Unlock()
}

// Match returns the best keyword whose score against some fragment of the
// description reaches threshold, or nil. Ties go to the earlier keyword.
func (fm *FuzzyMatcher) Match(description string, threshold int) *FuzzyMatch {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	toks := tokens(description)
	if len(toks) == 0 || len(fm.rules) == 0 {
		return nil
	}

	var best *FuzzyMatch
	for _, r := range fm.rules {
		for _, c := range candidates(toks, r.pattern) {
			score := fuzzyScore(c.text, c.pattern)
			if score < threshold {
				continue
			}
			if best != nil && (score < best.Score || (score == best.Score && r.rank >= best.Rank)) {
				continue
			}
			best = &FuzzyMatch{
				Keyword:   r.keyword,
				Category:  r.category,
				Candidate: c.text,
				Score:     score,
				Distance:  levenshteinDistance(c.text, c.pattern),
				Rank:      r.rank,
			}
		}
	}
	return best
}

// PatternCount returns the number of keywords loaded.
func (fm *FuzzyMatcher) PatternCount() int {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return len(fm.rules)
}

type candidate struct {
	text    string
	pattern string
}

// candidates pairs the keyword with every window of description tokens of the
// same word count. A multi-word keyword is also compared, spaces removed,
// against single tokens.
func candidates(toks []string, pattern string) []candidate {
	words := strings.Fields(pattern)
	var out []candidate
	for i := 0; i+len(words) <= len(toks); i++ {
		text := strings.Join(toks[i:i+len(words)], " ")
		if len(text) < MinFuzzyTokenLength {
			continue
		}
		out = append(out, candidate{text: text, pattern: pattern})
	}
	if len(words) > 1 {
		joined := strings.Join(words, "")
		for _, t := range toks {
			if len(t) >= MinFuzzyTokenLength {
				out = append(out, candidate{text: t, pattern: joined})
			}
		}
	}
	return out
}

// tokens splits an upper-cased description on anything that is not a letter,
// dropping tokens made only of digits.
func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if strings.TrimFunc(f, unicode.IsDigit) != "" {
			out = append(out, f)
		}
	}
	return out
}

// fuzzyScore rates the similarity of two upper-case strings from 0 to 100 using
// containment, Levenshtein distance and subsequence ranking.
func fuzzyScore(s1, s2 string) int {
	if s1 == s2 {
		return 100
	}
	if s1 == "" || s2 == "" {
		return 0
	}

	if strings.Contains(s1, s2) {
		return 75 + (25 * len(s2) / len(s1))
	}
	if strings.Contains(s2, s1) {
		return 75 + (25 * len(s1) / len(s2))
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := max(len(s1), len(s2))
	levenshteinScore := 100 * (maxLen - distance) / maxLen

	// RankMatch is the edit distance when s1 is a subsequence of s2, which
	// catches abbreviations such as "PHRMCY" for "PHARMACY".
	subsequenceScore := 0
	if rank := fuzzy.RankMatch(s1, s2); rank >= 0 {
		subsequenceScore = 100 * (len(s2) - rank) / len(s2)
	}

	return max(levenshteinScore, subsequenceScore)
}

func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}
