package normalizer

import (
	"regexp"
	"strings"
)

// MerchantInfo is the cleaned merchant behind a statement description.
type MerchantInfo struct {
	OriginalName   string `json:"original_name"`
	NormalizedName string `json:"normalized_name"`
	Category       string `json:"category,omitempty"`
}

// MerchantPattern maps a recognisable merchant spelling to a display name and,
// optionally, a category hint.
type MerchantPattern struct {
	Pattern  *regexp.Regexp
	Name     string
	Category string
}

// MerchantSanitizer strips payment-rail noise from descriptions before they are
// handed to categorization.
type MerchantSanitizer struct {
	patterns []MerchantPattern
}

func NewMerchantSanitizer() *MerchantSanitizer {
	return &MerchantSanitizer{
		patterns: defaultMerchantPatterns(),
	}
}

// Sanitize normalizes a description to its merchant.
func (s *MerchantSanitizer) Sanitize(description string) MerchantInfo {
	info := MerchantInfo{OriginalName: description}

	cleaned := cleanMerchantName(description)
	upper := strings.ToUpper(cleaned)
	for _, p := range s.patterns {
		if p.Pattern.MatchString(upper) {
			info.NormalizedName = p.Name
			info.Category = p.Category
			return info
		}
	}

	info.NormalizedName = titleCase(cleaned)
	return info
}

// AddPattern registers a custom merchant pattern ahead of the defaults.
func (s *MerchantSanitizer) AddPattern(pattern, name, category string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.patterns = append([]MerchantPattern{{Pattern: re, Name: name, Category: category}}, s.patterns...)
	return nil
}

var (
	merchantRefSuffix  = regexp.MustCompile(`\s+#?\d{4,}$`)
	merchantDateSuffix = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}/?$`)
	merchantStoreNo    = regexp.MustCompile(`\s+#\d+\b`)
)

var merchantPrefixes = []string{
	"POINT OF SALE PURCHASE ", "POINT OF SALEPURCHASE ", "DEBIT CARD PURCHASE ",
	"VISA DEBIT PURCHASE ", "INTERAC PURCHASE ", "POS PURCHASE ", "OPOS ", "APOS ",
	"MB-BILL PAYMENT ", "MB-BILLPAYMENT ", "BILL PAYMENT ", "PRE-AUTHORIZED DEBIT ",
	"PURCHASE ", "PAYMENT ", "POS ", "SQ *", "TST* ", "PAYPAL *",
}

func cleanMerchantName(raw string) string {
	result := CleanDescription(raw)

	upper := strings.ToUpper(result)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			result = result[len(prefix):]
			break
		}
	}

	result = merchantRefSuffix.ReplaceAllString(result, "")
	result = merchantDateSuffix.ReplaceAllString(result, "")
	result = merchantStoreNo.ReplaceAllString(result, "")
	result = StripProvince(result)

	return CleanDescription(result)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// defaultMerchantPatterns covers merchants common on Canadian statements. Category
// values use the categorizer's labels.
func defaultMerchantPatterns() []MerchantPattern {
	return []MerchantPattern{
		// Groceries
		{regexp.MustCompile(`LOBLAWS?`), "Loblaws", "groceries"},
		{regexp.MustCompile(`NO\s*FRILLS`), "No Frills", "groceries"},
		{regexp.MustCompile(`METRO\s`), "Metro", "groceries"},
		{regexp.MustCompile(`SOBEYS`), "Sobeys", "groceries"},
		{regexp.MustCompile(`FOOD\s*BASICS`), "Food Basics", "groceries"},
		{regexp.MustCompile(`FRESHCO`), "FreshCo", "groceries"},
		{regexp.MustCompile(`T\s*&\s*T\s*SUPERMARKET`), "T&T Supermarket", "groceries"},
		{regexp.MustCompile(`COSTCO\s*WHOLESALE`), "Costco", "groceries"},

		// Food and dining (delivery before rideshare so UBER EATS wins)
		{regexp.MustCompile(`UBER\s*\*?\s*EATS`), "Uber Eats", "food_dining"},
		{regexp.MustCompile(`DOORDASH`), "DoorDash", "food_dining"},
		{regexp.MustCompile(`SKIP\s*THE\s*DISHES`), "SkipTheDishes", "food_dining"},
		{regexp.MustCompile(`TIM\s*HORTONS?`), "Tim Hortons", "food_dining"},
		{regexp.MustCompile(`STARBUCKS`), "Starbucks", "food_dining"},
		{regexp.MustCompile(`MC\s*DONALD'?S?`), "McDonald's", "food_dining"},

		// Transportation
		{regexp.MustCompile(`\bUBER\b`), "Uber", "transportation"},
		{regexp.MustCompile(`\bLYFT\b`), "Lyft", "transportation"},
		{regexp.MustCompile(`PRESTO`), "Presto", "transportation"},
		{regexp.MustCompile(`\bTTC\b`), "TTC", "transportation"},

		// Gas
		{regexp.MustCompile(`PETRO[\s-]*CANADA`), "Petro-Canada", "gas_fuel"},
		{regexp.MustCompile(`\bESSO\b`), "Esso", "gas_fuel"},
		{regexp.MustCompile(`\bSHELL\b`), "Shell", "gas_fuel"},

		// Shopping
		{regexp.MustCompile(`AMAZON|AMZN`), "Amazon", "shopping"},
		{regexp.MustCompile(`WAL-?MART`), "Walmart", "shopping"},
		{regexp.MustCompile(`CANADIAN\s*TIRE`), "Canadian Tire", "shopping"},
		{regexp.MustCompile(`BEST\s*BUY`), "Best Buy", "shopping"},
		{regexp.MustCompile(`\bIKEA\b`), "IKEA", "shopping"},

		// Entertainment
		{regexp.MustCompile(`NETFLIX`), "Netflix", "entertainment"},
		{regexp.MustCompile(`SPOTIFY`), "Spotify", "entertainment"},
		{regexp.MustCompile(`DISNEY\s*\+|DISNEYPLUS`), "Disney+", "entertainment"},
		{regexp.MustCompile(`CINEPLEX`), "Cineplex", "entertainment"},

		// Bills
		{regexp.MustCompile(`ROGERS`), "Rogers", "bills_utilities"},
		{regexp.MustCompile(`\bBELL\s*(?:CANADA|MOBILITY)`), "Bell", "bills_utilities"},
		{regexp.MustCompile(`HYDRO\s*ONE|TORONTO\s*HYDRO`), "Hydro", "bills_utilities"},
		{regexp.MustCompile(`ENBRIDGE`), "Enbridge", "bills_utilities"},

		// Health
		{regexp.MustCompile(`SHOPPERS\s*DRUG\s*MART`), "Shoppers Drug Mart", "healthcare"},
		{regexp.MustCompile(`REXALL`), "Rexall", "healthcare"},
	}
}
