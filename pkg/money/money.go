// Package money formats statement amounts with their currency. Arithmetic happens on
// integer minor units through go-money; extraction keeps shopspring decimals and
// converts here only for totals and display.
package money

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes seen on supported statements (ISO-4217).
const (
	CAD = "CAD" // Canadian Dollar, the default for every supported institution
	USD = "USD" // US Dollar, CIBC U.S. Dollar Aventura and FX lines
	EUR = "EUR"
	GBP = "GBP"
)

// DefaultCurrency is used when a record does not name one.
const DefaultCurrency = CAD

// Money is an amount with its currency.
type Money struct {
	m *money.Money
}

// New creates a value from minor units.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, code(currencyCode))}
}

// NewFromDecimal rounds amount to the currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	c := code(currencyCode)
	fraction := money.GetCurrency(c).Fraction
	cents := amount.Mul(decimal.New(1, int32(fraction))).Round(0).IntPart()
	return New(cents, c)
}

// Zero returns zero in the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// code normalizes a currency code; unknown or empty codes fall back to the default.
func code(currencyCode string) string {
	c := strings.ToUpper(strings.TrimSpace(currencyCode))
	if c == "" || money.GetCurrency(c) == nil {
		return DefaultCurrency
	}
	return c
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Abs returns the absolute value.
func (m *Money) Abs() *Money {
	if m == nil || m.m == nil {
		return Zero(DefaultCurrency)
	}
	return &Money{m: m.m.Absolute()}
}

// Negate flips the sign. go-money's Negative returns -|x|.
func (m *Money) Negate() *Money {
	if m == nil || m.m == nil {
		return Zero(DefaultCurrency)
	}
	return &Money{m: m.m.Multiply(-1)}
}

// Add adds two values. It fails when the currencies differ.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display formats with symbol and grouping, e.g. "$1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// String returns the plain decimal amount, e.g. "1234.56".
func (m *Money) String() string {
	return m.ToDecimal().StringFixed(int32(m.fraction()))
}

// ToDecimal converts back to a decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.fraction()))
}

func (m *Money) fraction() int {
	if m == nil || m.m == nil {
		return 2
	}
	return m.m.Currency().Fraction
}

// Sum totals decimal amounts in one currency.
func Sum(amounts []decimal.Decimal, currencyCode string) *Money {
	var cents int64
	for _, a := range amounts {
		cents += NewFromDecimal(a, currencyCode).Amount()
	}
	return New(cents, currencyCode)
}

// Format renders a decimal amount for display in the given currency.
func Format(amount decimal.Decimal, currencyCode string) string {
	return NewFromDecimal(amount, currencyCode).Display()
}
