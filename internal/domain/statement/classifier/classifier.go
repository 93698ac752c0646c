// Package classifier assigns transaction direction and the spending flag after
// extraction. The account-type table below is the only place that decides how a
// raw amount sign maps to a direction.
package classifier

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/institution"
)

// AccountType selects the sign convention of a statement.
type AccountType string

const (
	// AccountCreditCard: positive amounts are purchases, negative are payments.
	AccountCreditCard AccountType = "credit_card"
	// AccountDeposit: negative amounts are withdrawals, positive are deposits.
	AccountDeposit AccountType = "deposit"
	// AccountUnsignedDeposit prints withdrawals and deposits as unsigned columns;
	// the extractor sets the direction when it can tell, otherwise it is a debit.
	AccountUnsignedDeposit AccountType = "unsigned_deposit"
	// AccountUnknown covers generic and OCR output; deposit rules apply.
	AccountUnknown AccountType = "unknown"
)

var accountTypes = map[string]AccountType{
	institution.NameBMOAccount:          AccountDeposit,
	institution.NameBMO:                 AccountCreditCard,
	institution.NameEQBank:              AccountDeposit,
	institution.NameTDCreditCard:        AccountCreditCard,
	institution.NameTDBank:              AccountDeposit,
	institution.NameTangerineCreditCard: AccountCreditCard,
	institution.NameTangerine:           AccountDeposit,
	institution.NameRBCVisa:             AccountCreditCard,
	institution.NameRBCBank:             AccountUnsignedDeposit,
	institution.NameSimplii:             AccountCreditCard,
	institution.NameCIBCVisa:            AccountCreditCard,
	institution.NameCIBC:                AccountUnsignedDeposit,
	institution.NameAmex:                AccountCreditCard,
	institution.NameScotiabank:          AccountUnsignedDeposit,
	institution.NameScotiaCreditCard:    AccountCreditCard,
	institution.NameWise:                AccountCreditCard,
}

// AccountTypeOf looks up the account type of a registered format name.
func AccountTypeOf(name string) AccountType {
	if t, ok := accountTypes[name]; ok {
		return t
	}
	return AccountUnknown
}

// Infer applies the sign convention of an account type to a raw amount.
func Infer(t AccountType, amount decimal.Decimal) statement.Direction {
	switch t {
	case AccountCreditCard:
		if amount.IsPositive() {
			return statement.DirectionDebit
		}
		return statement.DirectionCredit
	case AccountUnsignedDeposit:
		return statement.DirectionDebit
	default:
		if amount.IsNegative() {
			return statement.DirectionDebit
		}
		return statement.DirectionCredit
	}
}

// Classifier is the transaction classifier
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Classify returns a copy of records with Direction and IsSpending set. A direction
// the extractor already decided is kept as is.
func (c *Classifier) Classify(institutionName string, records []statement.TransactionRecord) []statement.TransactionRecord {
	t := AccountTypeOf(institutionName)
	out := make([]statement.TransactionRecord, len(records))
	for i, r := range records {
		if !r.DirectionSet() {
			r.Direction = Infer(t, r.Amount)
		}
		r.IsSpending = r.Direction == statement.DirectionDebit
		out[i] = r
	}
	return out
}
