// Package parser holds the generic text extractor used when no registered
// institution format claims a document. It finds table-like regions in the page
// text, scores them, and reads one date and one amount per line. Two fallback
// tiers with lower confidence cover pages where no region scores high enough.
package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/patterns"
)

// Confidence assigned by each extraction tier.
const (
	RegionConfidence    = 0.85
	FlatConfidence      = 0.70
	MultiLineConfidence = 0.60
)

// Region scoring weights. The threshold and weights are empirical.
const (
	DefaultRegionThreshold = 5

	keywordPoints    = 2
	maxDatePoints    = 5
	maxAmountPoints  = 5
	exclusionPenalty = 3
	structureBonus   = 2
	structureLines   = 3
)

const (
	minRegionLines       = 2
	minDescriptionLength = 5
	maxDescriptionLength = 100
)

// multiLineSkip marks lines the multi-line pass never starts a block on.
var multiLineSkip = []string{"transaction date", "account balance", "interest rate", "opening balance"}

// continuationSkip marks lines that are never appended to a block's description.
var continuationSkip = []string{"transaction date", "balance", "account"}

// yearSuffix is the year left behind when a "01 Oct" style token is removed.
var yearSuffix = regexp.MustCompile(`^,?\s*(?:19|20)\d{2}\b`)

// Config tunes the extractor
type Config struct {
	RegionThreshold    int // minimum score for a region to be read
	MultiLineLookahead int // lines searched for a block's amount
	MultiLineMinFlat   int // the multi-line pass runs only below this many flat records
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		RegionThreshold:    DefaultRegionThreshold,
		MultiLineLookahead: 2,
		MultiLineMinFlat:   5,
	}
}

// GenericExtractor reads statements of unknown layout.
type GenericExtractor struct {
	config Config
}

// NewGenericExtractor creates an extractor. Zero fields fall back to defaults.
func NewGenericExtractor(config Config) *GenericExtractor {
	def := DefaultConfig()
	if config.RegionThreshold <= 0 {
		config.RegionThreshold = def.RegionThreshold
	}
	if config.MultiLineLookahead <= 0 {
		config.MultiLineLookahead = def.MultiLineLookahead
	}
	if config.MultiLineMinFlat <= 0 {
		config.MultiLineMinFlat = def.MultiLineMinFlat
	}
	return &GenericExtractor{config: config}
}

// Region is a run of table-like lines.
type Region struct {
	Lines []string
	Start int // index of the first line in the page
	Score int
}

// Extract runs ExtractPage over every page in order.
func (g *GenericExtractor) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		out.Merge(g.ExtractPage(p))
	}
	return out
}

// ExtractPage reads one page: accepted regions first, then the flat and
// multi-line fallbacks when no region produced a record.
func (g *GenericExtractor) ExtractPage(p statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	text := patterns.Preprocess(p.Text)

	regions := g.AcceptedRegions(text)
	// Records keep reading order even though regions are ranked by score.
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })
	for _, r := range regions {
		g.extractRegion(out, p.Number, r)
	}
	if out.Len() > 0 {
		return out
	}

	lines := strings.Split(text, "\n")
	used := g.extractFlat(out, p.Number, lines)
	if out.Len() < g.config.MultiLineMinFlat {
		g.extractMultiLine(out, p.Number, lines, used)
	}
	return out
}

// DetectRegions groups the text into runs of table-like lines. A blank line
// closes the current run; a non-table line closes it only when the run already
// has at least two lines.
func DetectRegions(text string) []Region {
	lines := strings.Split(text, "\n")
	var regions []Region
	var current []string

	flush := func(end int, minLines int) {
		if len(current) >= minLines && len(current) > 0 {
			regions = append(regions, Region{Lines: current, Start: end - len(current)})
		}
		current = nil
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush(i, 1)
			continue
		}
		if patterns.IsTableLike(line) {
			current = append(current, line)
			continue
		}
		flush(i, minRegionLines)
	}
	flush(len(lines), minRegionLines)
	return regions
}

// ScoreRegion rates how likely a region is to be a transaction table.
func ScoreRegion(r Region) int {
	text := strings.ToLower(strings.Join(r.Lines, "\n"))
	score := keywordPoints * patterns.CountContaining(text, patterns.TransactionKeywords)

	dates, amounts := 0, 0
	for _, line := range r.Lines {
		if patterns.HasDate(line) {
			dates++
		}
		if patterns.HasAmount(line) {
			amounts++
		}
	}
	score += min(dates, maxDatePoints) + min(amounts, maxAmountPoints)
	score -= exclusionPenalty * patterns.CountContaining(text, patterns.ExclusionKeywords)
	if len(r.Lines) >= structureLines {
		score += structureBonus
	}
	return max(0, score)
}

// AcceptedRegions returns the regions scoring at least the threshold, best first.
func (g *GenericExtractor) AcceptedRegions(text string) []Region {
	var accepted []Region
	for _, r := range DetectRegions(text) {
		r.Score = ScoreRegion(r)
		if r.Score >= g.config.RegionThreshold {
			accepted = append(accepted, r)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].Score > accepted[j].Score })
	return accepted
}

func (g *GenericExtractor) extractRegion(out *statement.Extraction, page int, r Region) {
	for _, line := range r.Lines {
		if patterns.IsHeaderLine(line) || patterns.IsSummaryLine(line) || patterns.IsNonTransaction(line) {
			continue
		}
		rec, reason := ParseLine(line, page, RegionConfidence, statement.MethodGenericRegion)
		if reason != "" {
			out.Drop(page, line, reason)
			continue
		}
		out.Add(rec)
	}
}

// extractFlat scans the whole page for lines with both a date and an amount. It
// returns the indexes of the lines it turned into records.
func (g *GenericExtractor) extractFlat(out *statement.Extraction, page int, lines []string) map[int]bool {
	used := map[int]bool{}
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || patterns.IsNonTransaction(line) {
			continue
		}
		if !patterns.HasDate(line) || !patterns.HasAmount(line) {
			continue
		}
		rec, reason := ParseLine(line, page, FlatConfidence, statement.MethodGenericFlat)
		if reason != "" {
			out.Drop(page, line, reason)
			continue
		}
		out.Add(rec)
		used[i] = true
	}
	return used
}

// extractMultiLine rebuilds transactions split over a date line, description
// lines and an amount line. Lines consumed by the flat pass are not reused.
func (g *GenericExtractor) extractMultiLine(out *statement.Extraction, page int, lines []string, used map[int]bool) {
	for i, raw := range lines {
		if used[i] {
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" || patterns.ContainsAnyFold(line, multiLineSkip) || patterns.IsNonTransaction(line) {
			continue
		}
		date, ok := patterns.FindDate(line)
		if !ok {
			continue
		}
		used[i] = true

		var parts []string
		var amount patterns.AmountMatch
		rest := removeDate(line, date.Raw)
		found := false
		if amounts := patterns.FindAmounts(rest); len(amounts) > 0 {
			amount, found = amounts[0], true
			rest = stripTokens(rest, amounts)
		}
		if desc := strings.TrimSpace(rest); desc != "" {
			parts = append(parts, desc)
		}

		for j := 1; !found && j <= g.config.MultiLineLookahead && i+j < len(lines); j++ {
			next := strings.TrimSpace(lines[i+j])
			if next == "" || used[i+j] {
				break
			}
			if amounts := patterns.FindAmounts(next); len(amounts) > 0 {
				amount, found = amounts[0], true
				used[i+j] = true
				if remaining := strings.TrimSpace(stripTokens(next, amounts)); len(remaining) > 2 {
					parts = append(parts, remaining)
				}
				break
			}
			if len(next) > minDescriptionLength && !patterns.IsNonTransaction(next) && !patterns.ContainsAnyFold(next, continuationSkip) {
				parts = append(parts, next)
				used[i+j] = true
			}
		}

		if !found {
			out.Drop(page, line, statement.DropIncompleteBlock)
			continue
		}
		if !amount.Value.IsPositive() {
			out.Drop(page, line, statement.DropZeroAmount)
			continue
		}

		desc := normalizer.DescriptionOrDefault(strings.Join(parts, " "), 3)
		if len(desc) > maxDescriptionLength {
			desc = strings.TrimSpace(desc[:maxDescriptionLength])
		}
		out.Add(statement.TransactionRecord{
			Date:             date.Normalized,
			Description:      desc,
			Amount:           amount.Value,
			Page:             page,
			ExtractionMethod: statement.MethodGenericMultiLine,
			Confidence:       MultiLineConfidence,
		})
	}
}

// ParseLine reads one date and the first amount from a line; what remains is
// the description. A non-empty reason means the line yields no record. The OCR
// extractor shares this grammar.
func ParseLine(line string, page int, confidence float64, method statement.ExtractionMethod) (statement.TransactionRecord, string) {
	date, ok := patterns.FindDate(line)
	if !ok {
		return statement.TransactionRecord{}, statement.DropNoDate
	}
	amounts := patterns.FindAmounts(line)
	if len(amounts) == 0 {
		return statement.TransactionRecord{}, statement.DropNoAmount
	}

	desc := stripTokens(removeDate(line, date.Raw), amounts)
	return statement.TransactionRecord{
		Date:             date.Normalized,
		Description:      normalizer.DescriptionOrDefault(desc, minDescriptionLength),
		Amount:           amounts[0].Value,
		Page:             page,
		ExtractionMethod: method,
		Confidence:       confidence,
	}, ""
}

// removeDate cuts the first occurrence of the date token, and the year that
// trails a day-month token.
func removeDate(line, raw string) string {
	i := strings.Index(line, raw)
	if i < 0 {
		return line
	}
	return line[:i] + " " + yearSuffix.ReplaceAllString(line[i+len(raw):], "")
}

func stripTokens(line string, amounts []patterns.AmountMatch) string {
	for _, a := range amounts {
		line = strings.Replace(line, a.Raw, " ", 1)
	}
	return line
}
