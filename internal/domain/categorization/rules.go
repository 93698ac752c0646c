package categorization

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// CategoryOther is assigned when no keyword matches.
	CategoryOther = "other"
	// NoMatch is the matched rule reported alongside CategoryOther.
	NoMatch = "no_match"
)

var (
	ErrNoCategories      = errors.New("rules file defines no categories")
	ErrDuplicateCategory = errors.New("duplicate category id")
)

// Category maps a set of description keywords to a category label.
// Earlier categories win when a description matches keywords of several.
type Category struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	MasterCategory string   `yaml:"master_category"`
	Keywords       []string `yaml:"keywords"`
}

type ruleFile struct {
	Categories []Category `yaml:"categories"`
}

// DefaultCategories returns the built-in keyword table.
func DefaultCategories() []Category {
	return []Category{
		{
			ID: "food_dining", Name: "Food & Dining", MasterCategory: "Lifestyle",
			Keywords: []string{"restaurant", "mcdonald", "starbucks", "tim hortons", "subway", "pizza", "coffee", "food", "dining", "cafe", "bistro", "grill", "kitchen", "burger", "taco", "sushi"},
		},
		{
			ID: "groceries", Name: "Groceries", MasterCategory: "Essential",
			Keywords: []string{"walmart", "superstore", "loblaws", "metro", "sobeys", "costco", "grocery", "supermarket", "food basics", "no frills", "freshco"},
		},
		{
			ID: "gas_fuel", Name: "Gas & Fuel", MasterCategory: "Transportation",
			Keywords: []string{"shell", "esso", "petro", "chevron", "gas", "fuel", "gasoline", "station", "pump"},
		},
		{
			ID: "shopping", Name: "Shopping", MasterCategory: "Lifestyle",
			Keywords: []string{"amazon", "target", "best buy", "canadian tire", "home depot", "ikea", "walmart", "shopping", "store", "retail"},
		},
		{
			ID: "entertainment", Name: "Entertainment", MasterCategory: "Lifestyle",
			Keywords: []string{"netflix", "spotify", "cinema", "movie", "theater", "entertainment", "gaming", "xbox", "playstation", "steam"},
		},
		{
			ID: "bills_utilities", Name: "Bills & Utilities", MasterCategory: "Essential",
			Keywords: []string{"hydro", "electricity", "gas bill", "water", "internet", "phone", "rogers", "bell", "telus", "utility", "bill"},
		},
		{
			ID: "healthcare", Name: "Healthcare", MasterCategory: "Essential",
			Keywords: []string{"pharmacy", "medical", "doctor", "hospital", "health", "dental", "vision", "prescription", "clinic"},
		},
		{
			ID: "financial_services", Name: "Financial Services", MasterCategory: "Financial",
			Keywords: []string{"bank", "atm", "fee", "interest", "transfer", "payment", "financial", "credit", "loan", "mortgage"},
		},
		{
			ID: "transportation", Name: "Transportation", MasterCategory: "Transportation",
			Keywords: []string{"uber", "lyft", "taxi", "transit", "bus", "subway", "train", "parking", "transport"},
		},
		{
			ID: CategoryOther, Name: "Other", MasterCategory: "Other",
			Keywords: []string{"misc", "other", "unknown"},
		},
	}
}

// LoadRules decodes a YAML rules document:
//
//	categories:
//	  - id: groceries
//	    name: Groceries
//	    keywords: [loblaws, metro]
//
// Keywords are trimmed and lower-cased; empty keywords are dropped.
func LoadRules(r io.Reader) ([]Category, error) {
	var f ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoCategories
		}
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, ErrNoCategories
	}

	seen := make(map[string]bool, len(f.Categories))
	out := make([]Category, 0, len(f.Categories))
	for i, c := range f.Categories {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return nil, fmt.Errorf("category %d: missing id", i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, c.ID)
		}
		seen[c.ID] = true
		if c.Name == "" {
			c.Name = c.ID
		}
		c.Keywords = normalizeKeywords(c.Keywords)
		out = append(out, c)
	}
	return out, nil
}

// LoadRulesFile reads rules from a YAML file.
func LoadRulesFile(path string) ([]Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	categories, err := LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return categories, nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.Join(strings.Fields(k), " "))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// keywordRule is one keyword of one category, flattened for the matchers.
// Rank follows table order: lower ranks win.
type keywordRule struct {
	pattern  string // upper-case
	keyword  string
	category string
	rank     int
}

func flatten(categories []Category) []keywordRule {
	var rules []keywordRule
	for _, c := range categories {
		for _, k := range c.Keywords {
			p := strings.ToUpper(strings.TrimSpace(k))
			if p == "" {
				continue
			}
			rules = append(rules, keywordRule{
				pattern:  p,
				keyword:  strings.ToLower(k),
				category: c.ID,
				rank:     len(rules),
			})
		}
	}
	return rules
}
