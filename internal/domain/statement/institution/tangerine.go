package institution

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// TangerineCreditCard reads the Money-Back card table:
// "15-Feb-2025 17-Feb-2025 AGENCE DE MOBILITE DUR $8.57 $0.04".
type TangerineCreditCard struct{ base }

func NewTangerineCreditCard() *TangerineCreditCard {
	return &TangerineCreditCard{base{name: NameTangerineCreditCard, confidence: 0.9}}
}

var (
	tangerineCardDetect = regexp.MustCompile(`\d{2}-[A-Z][a-z]{2}-\d{4}\s+\d{2}-[A-Z][a-z]{2}-\d{4}`)
	tangerineCardAmount = regexp.MustCompile(`-?\$[\d,]+\.\d{2}`)
	tangerineCardLine   = regexp.MustCompile(`(\d{2})-([A-Z][a-z]{2})-\d{4}\s+(\d{2})-([A-Z][a-z]{2})-\d{4}\s+(.*?)\s+(-?\$?[\d,]+\.\d{2})(?:\s+\$?([\d,]+\.\d{2}|–))?`)
	provinceToken       = regexp.MustCompile(`\s+(?:QC|ON|BC|AB|MB|SK|NB|NS|PE|NL)(?:\s|$)`)
)

func (f *TangerineCreditCard) Applies(text, _ string) bool {
	return hasAny(text, "Tangerine Money-Back Credit Card", "Money-Back Credit Card", "Here's your latest statement for your Tangerine") &&
		hasAny(text, "Credit limit", "Cash advance limit", "Money-Back Rewards", "Transaction Posted Description Category Amount Reward") &&
		!hasAny(text, "Transaction Date", "Transaction Description", "Orange Key", "Interest Paid", "Opening Balance", "Closing Balance")
}

// Extract parses every matching line. Informational blocks between table parts
// do not close the table, so no section state is kept.
func (f *TangerineCreditCard) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		for _, line := range trimmedLines(p) {
			if !f.candidate(line) {
				continue
			}
			m := tangerineCardLine.FindStringSubmatch(line)
			if m == nil {
				out.Drop(p.Number, line, statement.DropUnparsable)
				continue
			}
			date, ok := normalizer.MonthDay(m[2], m[1])
			if !ok {
				out.Drop(p.Number, line, statement.DropInvalidDate)
				continue
			}
			amount, err := normalizer.ParseAmount(m[6])
			if err != nil {
				out.Drop(p.Number, line, statement.DropNoAmount)
				continue
			}

			desc := provinceToken.ReplaceAllString(m[5], " ")
			r := f.record(p.Number, date, desc, amount)
			r.PostingDate, _ = normalizer.MonthDay(m[4], m[3])
			if m[7] != "" && m[7] != "–" {
				r.Reward = normalizer.AmountPtr(m[7])
			}
			out.Add(r)
		}
	}
	return out
}

func (f *TangerineCreditCard) candidate(line string) bool {
	if skipLine(line) || hasAnyLower(line, "transaction posted", "description", "category", "amount", "reward",
		"previous balance", "your chosen", "currently earning", "money-back",
		"purchases", "cash advances", "quebec") {
		return false
	}
	return tangerineCardDetect.MatchString(line) && tangerineCardAmount.MatchString(line) && len(line) > 25
}

// Tangerine reads savings and chequing statements. A transaction may be spread
// over up to five physical lines: a "01 Oct 2021" date line, a description line
// and an "amount balance" line.
type Tangerine struct{ base }

func NewTangerine() *Tangerine {
	return &Tangerine{base{name: NameTangerine, confidence: 0.85}}
}

// maxBlockLines bounds the lookahead for one multi-line transaction.
const maxBlockLines = 5

var (
	tangerineDate       = regexp.MustCompile(`^(\d{2})\s([A-Za-z]{3})\s\d{4}`)
	tangerineAmountWord = regexp.MustCompile(`^[\d,]+\.\d{2}$`)
	tangerineAmounts    = regexp.MustCompile(`[\d,]+\.\d{2}`)
)

var (
	tangerineCredits = []string{"interest paid", "deposit", "transfer in", "e-transfer from", "interac e-transfer from"}
	tangerineDebits  = []string{"withdrawal", "transfer to", "internet withdrawal", "fee", "charge"}
)

func (f *Tangerine) Applies(text, _ string) bool {
	return hasAny(text, "www.tangerine.ca", "Orange Key", "Tangerine Savings")
}

func (f *Tangerine) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		lines := trimmedLines(p)
		inSection := false
		for i := 0; i < len(lines); {
			line := lines[i]
			if strings.Contains(line, "Transaction Date") &&
				(strings.Contains(line, "Transaction Description") || strings.Contains(line, "Amount")) {
				inSection = true
				i++
				continue
			}
			if strings.Contains(line, "Current Interest Rate") || strings.Contains(line, "The Details -") {
				inSection = false
				i++
				continue
			}
			if !inSection || skipLine(line) || !tangerineDate.MatchString(line) {
				i++
				continue
			}
			i += f.block(out, p.Number, lines, i)
		}
	}
	return out
}

// tangerineBlock accumulates one transaction's fragments.
type tangerineBlock struct {
	date        string
	description string
	amount      string
	balance     string
}

// block assembles the transaction starting at lines[start] and returns how many
// lines it consumed.
func (f *Tangerine) block(out *statement.Extraction, page int, lines []string, start int) int {
	line := lines[start]
	m := tangerineDate.FindStringSubmatch(line)
	date, ok := normalizer.MonthDay(m[2], m[1])
	if !ok {
		out.Drop(page, line, statement.DropInvalidDate)
		return 1
	}
	b := tangerineBlock{date: date}

	words := strings.Fields(line)[3:]
	var descWords, amounts []string
	for _, w := range words {
		if tangerineAmountWord.MatchString(w) {
			amounts = append(amounts, w)
		} else {
			descWords = append(descWords, w)
		}
	}
	if len(amounts) >= 2 {
		b.description = strings.Join(descWords, " ")
		b.amount, b.balance = amounts[0], amounts[1]
		f.emit(out, page, line, b)
		return 1
	}
	b.description = strings.Join(words, " ")

	consumed := 1
	for idx := start + 1; idx < len(lines) && consumed < maxBlockLines; idx++ {
		next := lines[idx]
		if next == "" {
			consumed++
			continue
		}
		if tangerineDate.MatchString(next) {
			break
		}
		if found := tangerineAmounts.FindAllString(next, -1); len(found) >= 2 {
			b.amount, b.balance = found[0], found[1]
			consumed++
			break
		}
		if b.description == "" && !strings.ContainsFunc(next, unicode.IsDigit) {
			b.description = next
		}
		consumed++
	}

	if b.description == "" && start > 0 {
		if prev := lines[start-1]; prev != "" && !tangerineDate.MatchString(prev) {
			b.description = prev
		}
	}
	if b.amount == "" || b.description == "" {
		out.Drop(page, line, statement.DropIncompleteBlock)
		return consumed
	}
	f.emit(out, page, line, b)
	return consumed
}

func (f *Tangerine) emit(out *statement.Extraction, page int, line string, b tangerineBlock) {
	if skipLine(b.description) {
		return
	}
	lower := strings.ToLower(b.description)
	amount, ok := parseUnsigned(b.amount)
	if !ok {
		out.Drop(page, line, statement.DropNoAmount)
		return
	}
	r := f.record(page, b.date, b.description, amount)
	r.Balance = normalizer.AmountPtr(b.balance)
	r.Direction = keywordDirection(lower, tangerineCredits, tangerineDebits)
	out.Add(r)
}
