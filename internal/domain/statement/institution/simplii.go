package institution

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// Simplii reads the Cash Back Visa table. Lines look like
// "Jul 14 Jul 18 PLAYNOW.COM 8777066789 BC Hotel, Entertainment and Recreation 25.00";
// the spend-category column is glued onto the description and is cut off.
type Simplii struct{ base }

func NewSimplii() *Simplii {
	return &Simplii{base{name: NameSimplii, confidence: 0.9}}
}

var (
	simpliiDates  = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2})\s+([A-Za-z]{3})\s+(\d{1,2})\s+`)
	simpliiAmount = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*\.\d{2})$`)
)

var (
	simpliiSkip = []string{
		"card number", "total for", "total payments", "your payments", "spend categories",
		"description", "amount($)", "identifies cash back",
	}
	simpliiCategories = []string{"Hotel, Entertainment", "Personal and Household", "Home and Office"}
	simpliiCutoff     = map[string]bool{
		"Hotel,": true, "Personal": true, "Home": true, "Entertainment": true,
		"Household": true, "Office": true, "BC": true, "ON": true,
	}
	simpliiPayments = []string{"payment thank you", "paiement merci"}
)

func (f *Simplii) Applies(text, _ string) bool {
	return hasAny(text, "Simplii Financial", "Cash Back Visa", "simplii.com")
}

func (f *Simplii) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		inSection := false
		for _, line := range trimmedLines(p) {
			if (strings.Contains(line, "Trans") && strings.Contains(line, "Post") && strings.Contains(line, "date")) ||
				(strings.Contains(line, "Card number") && strings.Contains(line, "XXXX")) {
				inSection = true
				continue
			}
			if hasAnyLower(line, "total for", "total payments", "page", "information about") {
				inSection = false
				continue
			}
			if !inSection || !f.candidate(line) {
				continue
			}
			f.parse(out, p.Number, line)
		}
	}
	return out
}

func (f *Simplii) candidate(line string) bool {
	if skipLine(line) || hasAnyLower(line, simpliiSkip...) {
		return false
	}
	return simpliiDates.MatchString(line) && simpliiAmount.MatchString(line) && len(line) > 20
}

func (f *Simplii) parse(out *statement.Extraction, page int, line string) {
	dm := simpliiDates.FindStringSubmatchIndex(line)
	am := simpliiAmount.FindStringSubmatchIndex(line)
	if am[0] < dm[1] {
		out.Drop(page, line, statement.DropUnparsable)
		return
	}
	month1, day1 := line[dm[2]:dm[3]], line[dm[4]:dm[5]]
	month2, day2 := line[dm[6]:dm[7]], line[dm[8]:dm[9]]
	date, posted, ok := dualDate(month1, day1, month2, day2)
	if !ok {
		out.Drop(page, line, statement.DropInvalidDate)
		return
	}
	amount, ok := parseUnsigned(line[am[2]:am[3]])
	if !ok {
		out.Drop(page, line, statement.DropNoAmount)
		return
	}

	desc := strings.TrimSpace(line[dm[1]:am[0]])
	if hasAny(desc, simpliiCategories...) {
		desc = cutAtCategory(desc)
	}

	r := f.record(page, date, desc, amount)
	r.PostingDate = posted
	if hasAnyLower(desc, simpliiPayments...) {
		r.Direction = statement.DirectionCredit
	}
	out.Add(r)
}

// cutAtCategory keeps the words before the first category or province word.
func cutAtCategory(desc string) string {
	words := strings.Fields(desc)
	var kept []string
	for _, w := range words {
		if simpliiCutoff[w] {
			break
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return desc
	}
	return normalizer.CleanDescription(strings.Join(kept, " "))
}
