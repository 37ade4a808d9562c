package statement

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ledgersync-dev/ledgersync/internal/id"
	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// CIBCParser reads Transaction exports: a single-account file split into
// sections. A literal "Debit transactions" or "Credit transactions" marker
// sets the direction for the rows that follow; a "Total" marker closes the
// section. Header and blank rows between markers carry no dates and are
// skipped.
type CIBCParser struct {
	log zerolog.Logger
}

// NewCIBCParser creates a CIBC statement parser.
func NewCIBCParser(log zerolog.Logger) *CIBCParser {
	return &CIBCParser{log: log.With().Str("bank", "CIBC").Logger()}
}

// Bank returns the brand this parser handles.
func (p *CIBCParser) Bank() model.BankBrand { return model.BankCIBC }

const (
	cibcColAccount   = 0
	cibcColDate      = 1
	cibcColDesc      = 2
	cibcColDetails   = 3
	cibcColAmount    = 4
	cibcColBankRef   = 5
	cibcColClientRef = 6
)

// Parse walks the file, tracking the active section. Rows outside a
// section, and rows whose date does not parse, are skipped.
func (p *CIBCParser) Parse(rows [][]string) ([]model.Transaction, error) {
	var (
		txns    []model.Transaction
		section model.Direction
		account string
	)

	for i, row := range rows {
		marker := strings.ToLower(cell(row, 0))
		switch {
		case strings.HasPrefix(marker, "debit transactions"):
			section = model.DirectionDebit
			continue
		case strings.HasPrefix(marker, "credit transactions"):
			section = model.DirectionCredit
			continue
		case strings.HasPrefix(marker, "total"):
			section = model.DirectionNone
			continue
		}
		if section == model.DirectionNone {
			continue
		}

		date, ok := parseDate(cell(row, cibcColDate))
		if !ok {
			// Column headers repeat under each marker; only warn about
			// rows that look like data.
			if cell(row, cibcColAmount) != "" {
				p.log.Warn().Int("row", i+1).Str("value", cell(row, cibcColDate)).Msg("skipping row with unparseable date")
			}
			continue
		}

		amount, err := parseAmount(cell(row, cibcColAmount))
		if err != nil {
			p.log.Warn().Int("row", i+1).Str("value", cell(row, cibcColAmount)).Msg("skipping row with malformed amount")
			continue
		}
		if amount.IsZero() {
			continue
		}

		if account == "" {
			account = id.AccountID(model.BankCIBC, cell(row, cibcColAccount))
		}

		txn := model.Transaction{
			Date:        date,
			Description: cell(row, cibcColDesc),
			Detail:      cell(row, cibcColDetails),
			CustomerRef: cell(row, cibcColClientRef),
			BankRef:     cell(row, cibcColBankRef),
			Account:     account,
		}
		if section == model.DirectionDebit {
			txn.Debit = amount.Abs()
		} else {
			txn.Credit = amount.Abs()
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
