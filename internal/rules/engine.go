package rules

import "github.com/ledgersync-dev/ledgersync/internal/model"

// Result is a total classification: either a matched rule's outcome or the
// uncategorized sentinel.
type Result struct {
	Outcome   Outcome
	Matched   bool
	RuleIndex int // position of the winning rule, -1 when unmatched
}

// Uncategorized returns the sentinel result with every flag false.
func Uncategorized() Result {
	return Result{
		Outcome:   Outcome{Category: CategoryUncategorized},
		Matched:   false,
		RuleIndex: -1,
	}
}

// Classifier evaluates an ordered rule list. The list is loaded once and
// never mutated during a run.
type Classifier struct {
	rules []Rule
}

// NewClassifier wraps an already-validated rule list.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Len returns the number of active rules.
func (c *Classifier) Len() int { return len(c.rules) }

// Classify evaluates rules strictly in declaration order and returns the
// first full match. It never fails: exhausting the list yields the
// uncategorized sentinel.
func (c *Classifier) Classify(t model.Transaction) Result {
	for i := range c.rules {
		if c.rules[i].Matches(t) {
			return Result{Outcome: c.rules[i].Outcome, Matched: true, RuleIndex: i}
		}
	}
	return Uncategorized()
}
