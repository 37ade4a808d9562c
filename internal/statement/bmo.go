package statement

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ledgersync-dev/ledgersync/internal/id"
	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// BMOParser reads ReconciliationReport exports: a single sheet holding
// several accounts concatenated vertically. Each account section opens with
// a header line carrying the account number, followed by a "Date" column
// header and the data rows; total/terminal lines close a section.
type BMOParser struct {
	log zerolog.Logger
}

// NewBMOParser creates a BMO statement parser.
func NewBMOParser(log zerolog.Logger) *BMOParser {
	return &BMOParser{log: log.With().Str("bank", "BMO").Logger()}
}

// Bank returns the brand this parser handles.
func (p *BMOParser) Bank() model.BankBrand { return model.BankBMO }

const (
	bmoColDate    = 0
	bmoColDesc    = 2
	bmoColCustRef = 3
	bmoColBankRef = 4
	bmoColDebit   = 5
	bmoColCredit  = 6
	bmoColDetail  = 8
)

// accountHeaderToken marks the lines that introduce an account section,
// e.g. "ACME GROUP CAD - 00044660798 CAD (BMO - DDA)".
const accountHeaderToken = "(BMO - DDA)"

// terminal lines that end a section's data block.
var bmoTerminators = []string{
	"Total Debits:",
	"Total Credits:",
	"End of transactions",
	"Last Balance received",
	"Generated",
	"No Data Available",
}

func isBMOTerminator(cell string) bool {
	for _, t := range bmoTerminators {
		if strings.Contains(cell, t) {
			return true
		}
	}
	return false
}

// accountFromHeader pulls the account number out of an account header line.
// The number sits after " - ", before the currency code.
func accountFromHeader(line string) string {
	_, rest, ok := strings.Cut(line, " - ")
	if !ok {
		return ""
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Parse walks the sheet top to bottom, switching accounts as header lines
// appear. Rows whose date column does not parse are skipped with a
// warning, never aborting the file.
func (p *BMOParser) Parse(rows [][]string) ([]model.Transaction, error) {
	var (
		txns    []model.Transaction
		account string // current section's account id, "" outside a section
		inData  bool   // seen the section's Date header row
	)

	for i, row := range rows {
		first := cell(row, 0)

		if strings.Contains(first, accountHeaderToken) {
			number := accountFromHeader(first)
			if number == "" {
				p.log.Warn().Int("row", i+1).Str("header", first).Msg("account header without number")
				account = ""
			} else {
				account = id.AccountID(model.BankBMO, number)
			}
			inData = false
			continue
		}
		if account == "" {
			continue
		}
		if !inData {
			if first == "Date" {
				inData = true
			}
			continue
		}
		if first == "" || isBMOTerminator(first) {
			inData = false
			continue
		}

		date, ok := parseDate(first)
		if !ok {
			p.log.Warn().Int("row", i+1).Str("value", first).Msg("skipping row with unparseable date")
			continue
		}

		txn := model.Transaction{
			Date:        date,
			Description: cell(row, bmoColDesc),
			CustomerRef: cell(row, bmoColCustRef),
			BankRef:     cell(row, bmoColBankRef),
			Detail:      cell(row, bmoColDetail),
			Account:     account,
		}

		txn.Debit = p.amount(cell(row, bmoColDebit), &txn, i)
		txn.Credit = p.amount(cell(row, bmoColCredit), &txn, i)
		if !txn.Debit.IsZero() && !txn.Credit.IsZero() {
			p.log.Warn().Int("row", i+1).Msg("skipping row with both debit and credit")
			continue
		}
		if txn.Debit.IsZero() && txn.Credit.IsZero() {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// amount parses an amount cell. Reference numbers sometimes land in the
// amount columns of these exports; a dash-bearing non-numeric value is
// recovered as the bank reference when that slot is still empty.
func (p *BMOParser) amount(s string, txn *model.Transaction, row int) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	v, err := parseAmount(s)
	if err != nil {
		if txn.BankRef == "" && strings.Contains(s, "-") {
			txn.BankRef = s
		} else {
			p.log.Warn().Int("row", row+1).Str("value", s).Msg("unparseable amount treated as zero")
		}
		return decimal.Zero
	}
	return v.Abs()
}
