package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// LoadError reports one malformed rule, identified by its position in the
// file. The rule is excluded; the rest of the set still loads.
type LoadError struct {
	Index int
	Err   error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Index+1, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

// amountScalar accepts a YAML number or a numeric string. Both encodings
// mean the same thing; normalizing here keeps the in-memory rule decimal.
// A parse failure is held rather than returned: returning an error from
// an unmarshaler fails the whole document, and a bad amount must only
// cost its own rule. build() surfaces the held error per rule.
type amountScalar struct {
	value decimal.Decimal
	set   bool
	err   error
}

func (a *amountScalar) UnmarshalYAML(node *yaml.Node) error {
	a.set = true
	d, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		a.err = fmt.Errorf("invalid amount %q", node.Value)
		return nil
	}
	a.value = d
	return nil
}

// ruleSpec is the YAML shape of one rule.
type ruleSpec struct {
	Match     string       `yaml:"match"`
	Regex     bool         `yaml:"regex"`
	Amount    amountScalar `yaml:"amount"`          // exact, with epsilon
	AtLeast   amountScalar `yaml:"amount_at_least"` // >=
	AtMost    amountScalar `yaml:"amount_at_most"`  // <=
	Min       amountScalar `yaml:"amount_min"`      // range, with amount_max
	Max       amountScalar `yaml:"amount_max"`
	Direction string       `yaml:"direction"`

	Category               string `yaml:"category"`
	PaymentDetail          string `yaml:"payment_detail"`
	ReceiptRequired        bool   `yaml:"receipt_required"`
	AttachmentRequired     bool   `yaml:"attachment_required"`
	RegisterOfflinePayment bool   `yaml:"register_offline_payment"`
	RegisterCheckUsage     bool   `yaml:"register_check_usage"`
	Note                   string `yaml:"note"`
}

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

func (s ruleSpec) build() (Rule, error) {
	r := Rule{
		Pattern: s.Match,
		Regex:   s.Regex,
		Outcome: Outcome{
			Category:               s.Category,
			PaymentDetail:          s.PaymentDetail,
			ReceiptRequired:        s.ReceiptRequired,
			AttachmentRequired:     s.AttachmentRequired,
			RegisterOfflinePayment: s.RegisterOfflinePayment,
			RegisterCheckUsage:     s.RegisterCheckUsage,
			Note:                   s.Note,
		},
	}

	for _, a := range []amountScalar{s.Amount, s.AtLeast, s.AtMost, s.Min, s.Max} {
		if a.err != nil {
			return Rule{}, a.err
		}
	}

	switch strings.ToLower(strings.TrimSpace(s.Direction)) {
	case "":
	case "debit":
		r.Direction = model.DirectionDebit
	case "credit":
		r.Direction = model.DirectionCredit
	default:
		return Rule{}, fmt.Errorf("unknown direction %q", s.Direction)
	}

	forms := 0
	if s.Amount.set {
		forms++
		r.Amount = &AmountMatcher{Op: AmountExact, Value: s.Amount.value}
	}
	if s.AtLeast.set {
		forms++
		r.Amount = &AmountMatcher{Op: AmountAtLeast, Value: s.AtLeast.value}
	}
	if s.AtMost.set {
		forms++
		r.Amount = &AmountMatcher{Op: AmountAtMost, Value: s.AtMost.value}
	}
	if s.Min.set || s.Max.set {
		forms++
		if !s.Min.set || !s.Max.set {
			return Rule{}, fmt.Errorf("amount_min and amount_max must be given together")
		}
		r.Amount = &AmountMatcher{Op: AmountBetween, Min: s.Min.value, Max: s.Max.value}
	}
	if forms > 1 {
		return Rule{}, fmt.Errorf("rule mixes multiple amount forms")
	}

	if err := r.validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Load reads a YAML rule file. Malformed individual rules come back as
// LoadErrors and are excluded; the remaining rules keep their declaration
// order. A structurally unreadable file is an error.
func Load(path string) ([]Rule, []LoadError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading rules: %w", err)
	}
	return Parse(data)
}

// Parse builds the active rule list from YAML bytes.
func Parse(data []byte) ([]Rule, []LoadError, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing rules: %w", err)
	}

	var (
		active  []Rule
		loadErr []LoadError
	)
	for i, spec := range f.Rules {
		r, err := spec.build()
		if err != nil {
			loadErr = append(loadErr, LoadError{Index: i, Err: err})
			continue
		}
		active = append(active, r)
	}
	return active, loadErr, nil
}

// LoadOrDefault loads path when given, otherwise the built-in rule set.
func LoadOrDefault(path string) ([]Rule, []LoadError, error) {
	if path == "" {
		return DefaultRules(), nil, nil
	}
	return Load(path)
}
