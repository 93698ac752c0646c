package categorization

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, categories []Category) *Service {
	t.Helper()
	s, err := NewService(categories, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestService_Categorize(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		description string
		want        Result
	}{
		{
			name:        "exact keyword",
			description: "POS STARBUCKS COFFEE #1234",
			want: Result{
				Category: "food_dining", CategoryName: "Food & Dining", MasterCategory: "Lifestyle",
				Confidence: ExactConfidence, MatchedRule: "starbucks", Tier: TierExact,
			},
		},
		{
			name:        "typo found by search",
			description: "NETFLX SUBSCRIPTION",
			want: Result{
				Category: "entertainment", CategoryName: "Entertainment", MasterCategory: "Lifestyle",
				Confidence: SearchConfidence, MatchedRule: "netflix", Tier: TierSearch,
			},
		},
		{
			name:        "run-together name found by fuzzy matcher",
			description: "TIMHORTONS #123",
			want: Result{
				Category: "food_dining", CategoryName: "Food & Dining", MasterCategory: "Lifestyle",
				Confidence: 0.5, MatchedRule: "tim hortons", Tier: TierFuzzy,
			},
		},
		{
			name:        "nothing matches",
			description: "ZXQV 99812",
			want: Result{
				Category: CategoryOther, CategoryName: "Other", MasterCategory: "Other",
				Confidence: NoMatchConfidence, MatchedRule: NoMatch, Tier: TierNone,
			},
		},
		{
			name:        "blank description",
			description: "   ",
			want: Result{
				Category: CategoryOther, CategoryName: "Other", MasterCategory: "Other",
				Confidence: NoMatchConfidence, MatchedRule: NoMatch, Tier: TierNone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Categorize(ctx, tt.description))
		})
	}
}

func TestService_CustomRulesWithoutOther(t *testing.T) {
	s := newTestService(t, []Category{{ID: "pets", Name: "Pets", Keywords: []string{"petsmart"}}})
	ctx := context.Background()

	got := s.Categorize(ctx, "PETSMART #22")
	assert.Equal(t, "pets", got.Category)
	assert.Equal(t, "Pets", got.CategoryName)

	got = s.Categorize(ctx, "STARBUCKS")
	assert.Equal(t, CategoryOther, got.Category)
	assert.Equal(t, "Other", got.CategoryName)
	assert.Equal(t, NoMatch, got.MatchedRule)
}

func TestService_CategorizeBatch(t *testing.T) {
	s := newTestService(t, nil)

	results, err := s.CategorizeBatch(context.Background(), []string{
		"LOBLAWS 1022", "ZXQV", "STARBUKS", "ROGERS WIRELESS",
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "groceries", results[0].Category)
	assert.Equal(t, CategoryOther, results[1].Category)
	assert.Equal(t, "food_dining", results[2].Category)
	assert.Equal(t, TierSearch, results[2].Tier)
	assert.Equal(t, "bills_utilities", results[3].Category)
}

func TestService_CategorizeBatch_Cancelled(t *testing.T) {
	s := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CategorizeBatch(ctx, []string{"LOBLAWS"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_WithFuzzyThreshold(t *testing.T) {
	s := newTestService(t, nil)
	s.WithFuzzyThreshold(0).WithFuzzyThreshold(150)
	assert.Equal(t, DefaultFuzzyThreshold, s.fuzzyThreshold)

	s.WithFuzzyThreshold(95)
	assert.Equal(t, 95, s.fuzzyThreshold)
}

// Random merchant text must always produce a known category with a
// confidence from one of the tiers.
func TestService_RandomDescriptions(t *testing.T) {
	s := newTestService(t, nil)
	faker := gofakeit.New(7)
	ctx := context.Background()

	known := map[string]bool{}
	for _, c := range s.Categories() {
		known[c.ID] = true
	}

	descriptions := make([]string, 200)
	for i := range descriptions {
		switch i % 3 {
		case 0:
			descriptions[i] = faker.Company()
		case 1:
			descriptions[i] = faker.Sentence(4)
		default:
			descriptions[i] = faker.Numerify("POS ####") + " " + faker.Word()
		}
	}

	results, err := s.CategorizeBatch(ctx, descriptions)
	require.NoError(t, err)
	for i, r := range results {
		assert.True(t, known[r.Category], "description %q got %q", descriptions[i], r.Category)
		assert.NotEmpty(t, r.MatchedRule)
		assert.Greater(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, ExactConfidence)
		assert.Equal(t, r, s.Categorize(ctx, descriptions[i]))
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"POS PURCHASE STARBUCKS", "STARBUCKS"},
		{"Purchase Loblaws", "Loblaws"},
		{"NETFLIX*1234", "NETFLIX"},
		{"SHELL #4411", "SHELL"},
		{"  UBER   TRIP  ", "UBER TRIP"},
		{"AMAZON*MKTP", "AMAZON*MKTP"},
		{"#1234", "#1234"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanDescription(tt.input))
		})
	}
}
