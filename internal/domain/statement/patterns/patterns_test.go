package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDate(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{"numeric with year", "10/01/2021 COFFEE 4.50", "10-01", true},
		{"iso", "2021-03-15 PAYROLL 1,200.00", "03-15", true},
		{"month day year", "Mar 1, 2021 GROCERY 45.10", "03-01", true},
		{"day month", "01 Oct 2021", "10-01", true},
		{"bmo dotted", "Nov.9 Nov.10 COFFEE 3.25", "11-09", true},
		{"no date", "GROCERY STORE 45.10", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDate(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.Normalized)
		})
	}
}

func TestFindAmounts(t *testing.T) {
	got := FindAmounts("01 Oct Interac Transfer 45.00 619.54")
	require.Len(t, got, 2)
	assert.Equal(t, "45.00", got[0].Value.StringFixed(2))
	assert.Equal(t, "619.54", got[1].Value.StringFixed(2))

	got = FindAmounts("REFUND ($45.00) then -$3.20 and $1,234.56")
	require.Len(t, got, 3)
	assert.Equal(t, "-45.00", got[0].Value.StringFixed(2))
	assert.Equal(t, "-3.20", got[1].Value.StringFixed(2))
	assert.Equal(t, "1234.56", got[2].Value.StringFixed(2))

	assert.Empty(t, FindAmounts("REF 123456 no money here"))
}

func TestFirstAmount(t *testing.T) {
	m, ok := FirstAmount("Mar 1 COFFEE $4.50 12.00")
	require.True(t, ok)
	assert.Equal(t, "4.50", m.Value.StringFixed(2))

	_, ok = FirstAmount("nothing")
	assert.False(t, ok)
}

func TestLineClassifiers(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		assert.True(t, IsHeaderLine("Date Description Amount Balance"))
		assert.False(t, IsHeaderLine("10/01/2021 Transaction credit 45.00"))
		assert.False(t, IsHeaderLine("COFFEE SHOP 4.50"))
	})

	t.Run("summary", func(t *testing.T) {
		assert.True(t, IsSummaryLine("Opening Balance 100.00"))
		assert.True(t, IsSummaryLine("Balance carried forward"))
		assert.False(t, IsSummaryLine("GROCERY 45.10"))
	})

	t.Run("exclusion", func(t *testing.T) {
		assert.True(t, IsExcluded("Member of CDIC"))
		assert.False(t, IsExcluded("Payroll deposit"))
	})

	t.Run("non transaction", func(t *testing.T) {
		for _, line := range []string{
			"Member of CDIC",
			"Opening Balance 1,000.00",
			"CLOSING BALANCE 980.00",
			"PREVIOUS STATEMENT BALANCE $412.00",
			"Previous balance $88.10",
			"Balance forward 20.00",
			"Balance brought forward 20.00",
			"TOTAL NEW BALANCE $1,000.00",
		} {
			assert.True(t, IsNonTransaction(line), line)
		}
		assert.False(t, IsNonTransaction("Payroll deposit"))
		assert.False(t, IsNonTransaction("Sep 28 PRESTO ETIK/HSR****2590, TORON -$5.60"))
	})

	t.Run("table like", func(t *testing.T) {
		assert.True(t, IsTableLike("Mar 1, 2021 COFFEE 4.50"))
		assert.True(t, IsTableLike("1 2 3"))
		assert.False(t, IsTableLike("Thank you for banking with us"))
	})
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PAYMENT10/01/2021", "PAYMENT 10/01/2021"},
		{"coffee$4.50", "coffee $4.50"},
		{"refund-$3.20", "refund -$3.20"},
		{"paymentDec.5,2021", "payment Dec.5, 2021"},
		{"YourPreviousBalance", "Your PreviousBalance"},
		{"Remarkable", "Remarkable"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Preprocess(tt.in))
		})
	}
}

func TestContainsHelpers(t *testing.T) {
	assert.True(t, ContainsAnyFold("Interac E-TRANSFER", []string{"e-transfer"}))
	assert.False(t, ContainsAny("Interac E-TRANSFER", []string{"e-transfer"}))
	assert.Equal(t, 2, CountContaining("date description", []string{"date", "description", "amount"}))
}
