package statement

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ledgersync-dev/ledgersync/internal/id"
	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// RBCParser reads flat single-account exports. Dates are YYYYMMDD
// integers, up to five description fragments combine into one narrative,
// and withdrawals/deposits land in separate columns. Pending transactions
// sit above the first row carrying a balance and are ignored.
type RBCParser struct {
	log zerolog.Logger
}

// NewRBCParser creates an RBC statement parser.
func NewRBCParser(log zerolog.Logger) *RBCParser {
	return &RBCParser{log: log.With().Str("bank", "RBC").Logger()}
}

// Bank returns the brand this parser handles.
func (p *RBCParser) Bank() model.BankBrand { return model.BankRBC }

const (
	rbcColDate        = 0
	rbcColAccountNum  = 4
	rbcColDesc1       = 6 // descriptions run through column 10
	rbcNumDescs       = 5
	rbcColWithdrawals = 12
	rbcColDeposits    = 13
	rbcColBalance     = 14
)

// descSeparator joins the description fragments.
const descSeparator = " | "

// Parse reads the export in file order.
func (p *RBCParser) Parse(rows [][]string) ([]model.Transaction, error) {
	var (
		txns    []model.Transaction
		account string
		posted  bool // true once the first balance-bearing row is seen
	)

	for i, row := range rows {
		if !posted {
			if cell(row, rbcColBalance) == "" {
				continue
			}
			posted = true
		}

		date, ok := parseDate(cell(row, rbcColDate))
		if !ok {
			p.log.Warn().Int("row", i+1).Str("value", cell(row, rbcColDate)).Msg("skipping row with unparseable date")
			continue
		}

		if account == "" {
			account = id.AccountID(model.BankRBC, cell(row, rbcColAccountNum))
		}

		var parts []string
		for d := 0; d < rbcNumDescs; d++ {
			if v := cell(row, rbcColDesc1+d); v != "" {
				parts = append(parts, v)
			}
		}

		txn := model.Transaction{
			Date:        date,
			Description: strings.Join(parts, descSeparator),
			Account:     account,
		}

		// The second fragment often carries the payer's reference.
		if ref := cell(row, rbcColDesc1+1); ref != "" && looksLikeReference(ref) {
			txn.CustomerRef = ref
		}

		if v := cell(row, rbcColWithdrawals); v != "" {
			amt, err := parseAmount(v)
			if err != nil {
				p.log.Warn().Int("row", i+1).Str("value", v).Msg("skipping row with malformed withdrawal")
				continue
			}
			txn.Debit = amt.Abs()
		}
		if v := cell(row, rbcColDeposits); v != "" {
			amt, err := parseAmount(v)
			if err != nil {
				p.log.Warn().Int("row", i+1).Str("value", v).Msg("skipping row with malformed deposit")
				continue
			}
			txn.Credit = amt.Abs()
		}

		if !txn.Debit.IsZero() && !txn.Credit.IsZero() {
			p.log.Warn().Int("row", i+1).Msg("skipping row with both withdrawal and deposit")
			continue
		}
		if txn.Debit.IsZero() && txn.Credit.IsZero() {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func looksLikeReference(s string) bool {
	if strings.Contains(s, "-") {
		return true
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
