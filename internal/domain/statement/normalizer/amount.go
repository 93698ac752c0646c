package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

var currencyMarkers = []string{"CAD", "USD", "C$", "US$", "$", "€", "£"}

// ParseAmount converts an amount token to a signed decimal.
//
//	"$1,234.56" ->  1234.56
//	"($45.00)"  ->   -45.00
//	"-$3.20"    ->    -3.20
//	"12.00-"    ->   -12.00
//	"+$5.00"    ->     5.00
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	s = strings.ReplaceAll(s, " ", "")

	negative := false
	switch {
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		negative = true
		s = strings.Trim(s, "()")
	case strings.HasSuffix(s, "-"):
		negative = true
		s = strings.TrimSuffix(s, "-")
	}

	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}

	switch {
	case strings.HasPrefix(s, "-"):
		negative = !negative
		s = strings.TrimPrefix(s, "-")
	case strings.HasPrefix(s, "+"):
		s = strings.TrimPrefix(s, "+")
	}

	// "(-$5.00)" and "($-5.00)" have both markers; strip any leftovers
	s = strings.Trim(s, "()")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// MustAmount parses a literal amount and panics on failure. Tests and static tables only.
func MustAmount(raw string) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// AmountPtr parses an optional amount, returning nil when it does not parse.
func AmountPtr(raw string) *decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		return nil
	}
	return &d
}
