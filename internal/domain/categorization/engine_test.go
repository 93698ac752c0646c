package categorization

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Match(t *testing.T) {
	engine := NewEngine(DefaultCategories())

	tests := []struct {
		name        string
		description string
		category    string
		keyword     string
	}{
		{"merchant keyword", "STARBUCKS COFFEE #1234", "food_dining", "starbucks"},
		{"case insensitive", "shell canada", "gas_fuel", "shell"},
		{"substring inside token", "Netflix.com", "entertainment", "netflix"},
		{"keyword in two categories goes to the first", "WALMART SUPERCENTER", "groceries", "walmart"},
		{"earlier category wins", "UBER EATS PIZZA", "food_dining", "pizza"},
		{"multi-word keyword", "CANADIAN TIRE #0412", "shopping", "canadian tire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := engine.Match(tt.description)
			require.NotNil(t, m)
			assert.Equal(t, tt.category, m.Category)
			assert.Equal(t, tt.keyword, m.Keyword)
		})
	}

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, engine.Match("ZZQX 4411"))
	})
}

func TestEngine_MatchBatch(t *testing.T) {
	engine := NewEngine(DefaultCategories())
	got := engine.MatchBatch([]string{"LOBLAWS 1022", "ZZQX", "ROGERS WIRELESS"})
	require.Len(t, got, 3)

	require.NotNil(t, got[0])
	assert.Equal(t, "groceries", got[0].Category)
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, "bills_utilities", got[2].Category)
}

func TestEngine_DuplicateKeywordsShareAPattern(t *testing.T) {
	engine := NewEngine(DefaultCategories())
	// "walmart" and "subway" each appear under two categories.
	assert.Equal(t, 96, engine.PatternCount())
}

func TestEngine_Empty(t *testing.T) {
	engine := NewEngine(nil)
	assert.True(t, engine.IsEmpty())
	assert.Nil(t, engine.Match("STARBUCKS"))
	assert.Equal(t, []*Match{nil}, engine.MatchBatch([]string{"STARBUCKS"}))
}

func TestEngine_Rebuild(t *testing.T) {
	engine := NewEngine(DefaultCategories())
	assert.Nil(t, engine.Match("PETSMART"))

	engine.Build([]Category{{ID: "pets", Keywords: []string{"petsmart"}}})
	m := engine.Match("PETSMART #22")
	require.NotNil(t, m)
	assert.Equal(t, "pets", m.Category)
	assert.Nil(t, engine.Match("STARBUCKS"))
}

func BenchmarkEngine_Match(b *testing.B) {
	engine := NewEngine(DefaultCategories())
	descriptions := make([]string, 100)
	for i := range descriptions {
		descriptions[i] = fmt.Sprintf("POS PURCHASE MERCHANT %d TORONTO ON", i)
	}
	descriptions[50] = "STARBUCKS COFFEE TORONTO ON"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.MatchBatch(descriptions)
	}
}
