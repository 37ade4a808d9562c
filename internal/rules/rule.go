// Package rules implements the ordered first-match transaction classifier.
package rules

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// CategoryUncategorized is the sentinel category returned when no rule
// matches. It is not an error; downstream surfaces it for manual review.
const CategoryUncategorized = "uncategorized"

// Outcome is the classification a matched rule assigns.
type Outcome struct {
	Category               string
	PaymentDetail          string
	ReceiptRequired        bool
	AttachmentRequired     bool
	RegisterOfflinePayment bool
	RegisterCheckUsage     bool
	Note                   string
}

// AmountOp selects how an amount matcher compares.
type AmountOp string

const (
	AmountExact   AmountOp = "eq"    // |amount - value| < 0.01
	AmountAtLeast AmountOp = "ge"    // amount >= value
	AmountAtMost  AmountOp = "le"    // amount <= value
	AmountBetween AmountOp = "range" // min <= amount <= max, inclusive
)

// amountEpsilon absorbs floating-point noise carried in from source files
// when matching exact recurring amounts.
var amountEpsilon = decimal.NewFromFloat(0.01)

// AmountMatcher compares against the absolute value of whichever of
// debit/credit a transaction carries.
type AmountMatcher struct {
	Op       AmountOp
	Value    decimal.Decimal // eq/ge/le
	Min, Max decimal.Decimal // range
}

func (m AmountMatcher) matches(amount decimal.Decimal) bool {
	switch m.Op {
	case AmountExact:
		return amount.Sub(m.Value).Abs().LessThan(amountEpsilon)
	case AmountAtLeast:
		return amount.GreaterThanOrEqual(m.Value)
	case AmountAtMost:
		return amount.LessThanOrEqual(m.Value)
	case AmountBetween:
		return amount.GreaterThanOrEqual(m.Min) && amount.LessThanOrEqual(m.Max)
	}
	return false
}

// Rule is one ordered (matcher, outcome) pair. Position in the rule list is
// its priority: earlier rules shadow later ones.
type Rule struct {
	Pattern   string // original pattern text, kept for error messages
	Regex     bool   // false = case-insensitive substring
	Direction model.Direction
	Amount    *AmountMatcher
	Outcome   Outcome

	re *regexp.Regexp
}

// compile builds the matcher regexp. Substring patterns are quoted; both
// forms run case-insensitively with . matching newlines, so a pattern can
// span the line break embedded inside a detail narrative.
func (r *Rule) compile() error {
	if r.Pattern == "" {
		return nil
	}
	pat := r.Pattern
	if !r.Regex {
		pat = regexp.QuoteMeta(pat)
	}
	re, err := regexp.Compile("(?is)" + pat)
	if err != nil {
		return fmt.Errorf("compiling pattern %q: %w", r.Pattern, err)
	}
	r.re = re
	return nil
}

// Matches reports whether every constraint on the rule holds for t.
func (r *Rule) Matches(t model.Transaction) bool {
	if r.Direction != model.DirectionNone && t.Direction() != r.Direction {
		return false
	}
	if r.Amount != nil {
		if t.Direction() == model.DirectionNone {
			return false
		}
		if !r.Amount.matches(t.Amount()) {
			return false
		}
	}
	if r.re != nil && !r.re.MatchString(t.MatchText()) {
		return false
	}
	return true
}

// validate checks constraints detectable at load time.
func (r *Rule) validate() error {
	if r.Outcome.Category == "" {
		return fmt.Errorf("rule has no category")
	}
	if r.Amount != nil && r.Amount.Op == AmountBetween && r.Amount.Min.GreaterThan(r.Amount.Max) {
		return fmt.Errorf("amount range min %s > max %s", r.Amount.Min, r.Amount.Max)
	}
	return r.compile()
}
