package institution

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// CIBCVisa reads the U.S. Dollar Aventura card. A purchase line may be followed by
// a "18.53 CAD @ 0.735563950**" conversion line that belongs to it.
type CIBCVisa struct{ base }

func NewCIBCVisa() *CIBCVisa {
	return &CIBCVisa{base{name: NameCIBCVisa, confidence: 0.9}}
}

var (
	cibcVisaDetect   = regexp.MustCompile(`^[A-Z]{3}\s+\d{1,2}\s+[A-Z]{3}\s+\d{1,2}`)
	cibcVisaTail     = regexp.MustCompile(`[\d,]+\.\d{2}$`)
	cibcVisaLine     = regexp.MustCompile(`^([A-Z]{3})\s+(\d{1,2})\s+([A-Z]{3})\s+(\d{1,2})\s+(.*?)\s+([\d,]+\.\d{2})$`)
	cibcVisaExchange = regexp.MustCompile(`^([\d,]+\.\d{2})\s+CAD\s+@\s+([\d.]+)`)
)

func (f *CIBCVisa) Applies(text, _ string) bool {
	return hasAny(text, "CIBC U.S. Dollar Aventura", "Aventura Gold Visa Card", "CIBC Visa", "U.S. Dollar Aventura") &&
		hasAny(text, "Amount Due", "Minimum Payment", "Credit Card", "Aventura Points", "Trans Post", "date date Description Amount") &&
		!hasAny(text, "Opening Balance", "Closing Balance", "Direct Deposit", "Account Balance Summary", "DAILY BALANCE")
}

func (f *CIBCVisa) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		lines := trimmedLines(p)
		inSection := false
		for i := 0; i < len(lines); {
			line := lines[i]
			if strings.Contains(line, "Trans Post") && i+1 < len(lines) && strings.Contains(lines[i+1], "date date Description") {
				inSection = true
				i += 2
				continue
			}
			if hasAny(line, "Information about your CIBC", "Payment options", "Interest charges", "Foreign currency") {
				inSection = false
			}
			if !inSection || !f.candidate(line) {
				i++
				continue
			}
			i += f.parse(out, p.Number, lines, i)
		}
	}
	return out
}

func (f *CIBCVisa) candidate(line string) bool {
	if skipLine(line) || hasAnyLower(line, "trans post", "date date", "description", "amount", "card number",
		"prepared for", "account number", "information about") {
		return false
	}
	return cibcVisaDetect.MatchString(line) && cibcVisaTail.MatchString(line) && len(line) > 20
}

// parse reads the purchase line at lines[i] and, when present, its conversion
// line. It returns the number of lines consumed.
func (f *CIBCVisa) parse(out *statement.Extraction, page int, lines []string, i int) int {
	line := lines[i]
	m := cibcVisaLine.FindStringSubmatch(line)
	if m == nil {
		out.Drop(page, line, statement.DropUnparsable)
		return 1
	}
	date, posted, ok := dualDate(m[1], m[2], m[3], m[4])
	if !ok {
		out.Drop(page, line, statement.DropInvalidDate)
		return 1
	}
	amount, ok := parseUnsigned(m[6])
	if !ok {
		out.Drop(page, line, statement.DropNoAmount)
		return 1
	}

	desc, location := splitLocation(m[5])
	r := f.record(page, date, desc, amount)
	r.PostingDate = posted
	r.Location = location
	r.Currency = "USD"

	consumed := 1
	if i+1 < len(lines) {
		if fx := cibcVisaExchange.FindStringSubmatch(lines[i+1]); fx != nil {
			if cad, err := normalizer.ParseAmount(fx[1]); err == nil {
				r.ExchangeInfo = fmt.Sprintf("CAD $%s @ %s", cad.StringFixed(2), fx[2])
			}
			consumed++
		}
	}
	out.Add(r)
	return consumed
}

// splitLocation treats a trailing all-caps word longer than two letters as the
// merchant location: "WWW.ALIEXPRESS.COM LONDON" -> ("WWW.ALIEXPRESS.COM", "LONDON").
func splitLocation(s string) (desc, location string) {
	words := strings.Fields(s)
	if len(words) < 2 {
		return strings.TrimSpace(s), ""
	}
	last := words[len(words)-1]
	if len(last) > 2 && strings.ToUpper(last) == last && strings.ToLower(last) != last {
		return strings.Join(words[:len(words)-1], " "), last
	}
	return strings.Join(words, " "), ""
}

// CIBC reads chequing statements. Activity starts on page 2 under "Transaction
// details"; dates are carried forward from the first line of each day.
type CIBC struct{ base }

func NewCIBC() *CIBC {
	return &CIBC{base{name: NameCIBC, confidence: 0.85}}
}

var cibcDate = regexp.MustCompile(`\b([A-Za-z]{3})\s+(\d{1,2})\b`)

var (
	cibcHeader  = []string{"date", "description", "withdrawals", "deposits", "balance"}
	cibcSkip    = []string{"opening balance", "closing balance", "balance forward", "total", "summary", "continued", "transaction details"}
	cibcCredits = []string{"deposit", "e-transfer", "transfer in", "interest", "refund", "rebate"}
	cibcDebits  = []string{
		"retail purchase", "purchase", "withdrawal", "teller withdrawal",
		"instant teller", "atm", "fee", "charge", "payment",
	}
)

func (f *CIBC) Applies(text, _ string) bool {
	return hasAny(text, "CIBC Account Statement", "CIBC", "Branch transit number")
}

func (f *CIBC) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		if p.Number < 2 || !strings.Contains(p.Text, "Transaction details") {
			continue
		}
		var carry carriedDate
		for _, line := range trimmedLines(p) {
			if line == "" || hasAnyLower(line, cibcHeader...) {
				continue
			}
			if date, raw, ok := findMonthDay(line); ok {
				carry.set(date)
				if rest := strings.TrimSpace(strings.Replace(line, raw, "", 1)); rest != "" {
					f.parseLine(out, p.Number, carry.date, rest)
				}
				continue
			}
			if !carry.ok() {
				if columnAmount.MatchString(line) {
					out.Drop(p.Number, line, statement.DropNoDate)
				}
				continue
			}
			f.parseLine(out, p.Number, carry.date, line)
		}
	}
	return out
}

// findMonthDay returns the first "Mmm D" token whose month is real.
func findMonthDay(line string) (date, raw string, ok bool) {
	for _, m := range cibcDate.FindAllStringSubmatch(line, -1) {
		if d, valid := normalizer.MonthDay(m[1], m[2]); valid {
			return d, m[0], true
		}
	}
	return "", "", false
}

func (f *CIBC) parseLine(out *statement.Extraction, page int, date, line string) {
	if len(line) < 5 || skipLine(line) || hasAnyLower(line, cibcSkip...) {
		return
	}
	r, reason := leadingAmountRecord(f.base, page, date, line)
	if reason != "" {
		out.Drop(page, line, reason)
		return
	}
	r.Direction = keywordDirection(strings.ToLower(r.Description), cibcCredits, cibcDebits)
	out.Add(r)
}
