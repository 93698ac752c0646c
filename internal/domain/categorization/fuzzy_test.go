package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyMatcher_Match(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultCategories())

	tests := []struct {
		name        string
		description string
		keyword     string
		category    string
		score       int
	}{
		{"dropped letter", "NETFLX SUBSCRIPTION", "netflix", "entertainment", 85},
		{"abbreviated merchant", "AMAZN MKTP", "amazon", "shopping", 83},
		{"run-together multi-word keyword", "TIMHORTONS", "tim hortons", "food_dining", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fm.Match(tt.description, DefaultFuzzyThreshold)
			require.NotNil(t, m)
			assert.Equal(t, tt.keyword, m.Keyword)
			assert.Equal(t, tt.category, m.Category)
			assert.Equal(t, tt.score, m.Score)
		})
	}

	t.Run("reports the matched fragment", func(t *testing.T) {
		m := fm.Match("SPOTFY P1234", DefaultFuzzyThreshold)
		require.NotNil(t, m)
		assert.Equal(t, "SPOTFY", m.Candidate)
		assert.Equal(t, 1, m.Distance)
	})

	t.Run("below threshold", func(t *testing.T) {
		assert.Nil(t, fm.Match("NETFLX SUBSCRIPTION", 90))
	})

	t.Run("unrelated text", func(t *testing.T) {
		assert.Nil(t, fm.Match("ZXQV 99812", DefaultFuzzyThreshold))
	})

	t.Run("empty matcher", func(t *testing.T) {
		assert.Nil(t, NewFuzzyMatcher(nil).Match("NETFLIX", 50))
	})
}

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"STARBUCKS", "STARBUCKS", 100},
		{"STARBUCKS 001", "STARBUCKS", 92},
		{"KITTEN", "SITTING", 57},
		{"PHRMCY", "PHARMACY", 75},
		{"", "SHELL", 0},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"/"+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.want, fuzzyScore(tt.s1, tt.s2))
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"", "ABC", 3},
		{"ABC", "", 3},
		{"KITTEN", "SITTING", 3},
		{"NETFLX", "NETFLIX", 1},
		{"CAFÉ", "CAFE", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"/"+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshteinDistance(tt.s1, tt.s2))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"POS", "SHELL", "CANADA", "2B"}, tokens("pos #1234 Shell-Canada 2B"))
	assert.Empty(t, tokens(" 1234 ** "))
}

func BenchmarkFuzzyMatcher_Match(b *testing.B) {
	fm := NewFuzzyMatcher(DefaultCategories())
	for i := 0; i < b.N; i++ {
		fm.Match("NETFLX SUBSCRIPTION MONTHLY", DefaultFuzzyThreshold)
	}
}
