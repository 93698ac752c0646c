package classifier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/institution"
)

func rec(amount string, dir statement.Direction) statement.TransactionRecord {
	return statement.TransactionRecord{
		Description: "test",
		Amount:      decimal.RequireFromString(amount),
		Direction:   dir,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		institution string
		record      statement.TransactionRecord
		want        statement.Direction
		spending    bool
	}{
		{"deposit withdrawal", institution.NameEQBank, rec("-50.00", ""), statement.DirectionDebit, true},
		{"deposit credit", institution.NameEQBank, rec("50.00", ""), statement.DirectionCredit, false},
		{"card purchase", institution.NameTDCreditCard, rec("50.00", ""), statement.DirectionDebit, true},
		{"card payment", institution.NameTDCreditCard, rec("-50.00", ""), statement.DirectionCredit, false},
		{"card zero", institution.NameAmex, rec("0", ""), statement.DirectionCredit, false},
		{"unsigned default", institution.NameRBCBank, rec("20.00", ""), statement.DirectionDebit, true},
		{"unsigned keyword", institution.NameRBCBank, rec("100.00", statement.DirectionCredit), statement.DirectionCredit, false},
		{"section wins over sign", institution.NameTDBank, rec("1200.00", statement.DirectionDebit), statement.DirectionDebit, true},
		{"keyword wins on card", institution.NameSimplii, rec("50.00", statement.DirectionCredit), statement.DirectionCredit, false},
		{"generic uses deposit rules", "", rec("-12.00", ""), statement.DirectionDebit, true},
		{"generic positive", "", rec("12.00", ""), statement.DirectionCredit, false},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.Classify(tt.institution, []statement.TransactionRecord{tt.record})
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Direction)
			assert.Equal(t, tt.spending, out[0].IsSpending)
		})
	}
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	in := []statement.TransactionRecord{rec("-5.00", "")}
	out := New().Classify(institution.NameTangerine, in)

	assert.Equal(t, statement.DirectionUnknown, in[0].Direction)
	assert.False(t, in[0].IsSpending)
	assert.Equal(t, statement.DirectionDebit, out[0].Direction)
}

func TestAccountTypeOf_CoversRegistry(t *testing.T) {
	for _, f := range institution.DefaultRegistry().Formats() {
		assert.NotEqual(t, AccountUnknown, AccountTypeOf(f.Name()), f.Name())
	}
	assert.Equal(t, AccountUnknown, AccountTypeOf("Monzo"))
}

func TestAccountTypeOf_Families(t *testing.T) {
	assert.Equal(t, AccountCreditCard, AccountTypeOf(institution.NameWise))
	assert.Equal(t, AccountDeposit, AccountTypeOf(institution.NameBMOAccount))
	assert.Equal(t, AccountUnsignedDeposit, AccountTypeOf(institution.NameScotiabank))
}
