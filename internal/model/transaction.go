package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction says which side of the ledger a transaction sits on.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
	DirectionNone   Direction = ""
)

// Transaction is the normalized record every bank adapter produces.
// At most one of Debit/Credit is non-zero. Immutable after parsing.
type Transaction struct {
	Date        time.Time
	Description string          // short bank-supplied narrative
	CustomerRef string          // optional
	BankRef     string          // optional
	Debit       decimal.Decimal // money out, non-negative
	Credit      decimal.Decimal // money in, non-negative
	Detail      string          // longer narrative when the export carries one
	Account     string          // source account id, e.g. "BMO0798"
}

// Direction returns debit or credit depending on which amount is present.
func (t Transaction) Direction() Direction {
	switch {
	case !t.Debit.IsZero():
		return DirectionDebit
	case !t.Credit.IsZero():
		return DirectionCredit
	default:
		return DirectionNone
	}
}

// Amount returns the absolute value of whichever side is present.
func (t Transaction) Amount() decimal.Decimal {
	if !t.Debit.IsZero() {
		return t.Debit.Abs()
	}
	return t.Credit.Abs()
}

// MatchText is the text classification rules run against: the short
// description plus the longer detail, so a token that only appears in the
// detail narrative still matches.
func (t Transaction) MatchText() string {
	if t.Detail == "" {
		return t.Description
	}
	if t.Description == "" {
		return t.Detail
	}
	return t.Description + "\n" + t.Detail
}
