package normalizer

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Interac   e-Transfer  ", "Interac e-Transfer"},
		{"PAYROLL\tDEPOSIT", "PAYROLL DEPOSIT"},
		{"- COFFEE SHOP -", "COFFEE SHOP"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.input))
		})
	}
}

func TestCleanDescription_Idempotent(t *testing.T) {
	faker := gofakeit.New(7)
	for i := 0; i < 100; i++ {
		raw := "  " + faker.Company() + "   " + faker.City() + "\t"
		once := CleanDescription(raw)
		assert.Equal(t, once, CleanDescription(once))
		assert.False(t, strings.Contains(once, "  "))
	}
}

func TestStripHelpers(t *testing.T) {
	assert.Equal(t, "GROCERY STORE", StripAmounts("GROCERY STORE 45.10 1,200.00"))
	assert.Equal(t, "DEPOSIT", StripLeadingDate("3 Mar DEPOSIT"))
	assert.Equal(t, "COFFEE", StripLeadingDate("Oct 12 COFFEE"))
	assert.Equal(t, "ATM 24 HOUR", StripLeadingDate("ATM 24 HOUR"))
	assert.Equal(t, "TIM HORTONS TORONTO", StripProvince("TIM HORTONS TORONTO ON"))
}

func TestDescriptionOrDefault(t *testing.T) {
	assert.Equal(t, "Transaction", DescriptionOrDefault(" ab ", 5))
	assert.Equal(t, "Transaction", DescriptionOrDefault("", 1))
	assert.Equal(t, "Grocery", DescriptionOrDefault("Grocery", 5))
}
