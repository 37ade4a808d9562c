package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Mapping binds an account id to the workbook sheet that holds its
// ledger, along with the sheet's column layout.
type Mapping struct {
	Account string
	Sheet   string
	Layout  Layout
}

// SheetSnapshot is a read-only view of one ledger sheet: where data
// ends, the latest transaction date, and every existing row key.
type SheetSnapshot struct {
	Account  string
	Sheet    string
	Layout   Layout
	LastRow  int       // 1-based last row holding data; 0 when empty
	LastDate time.Time // zero when no row had a parseable date

	keys map[string]struct{}
}

// HasKey reports whether an identical row already exists anywhere in
// the sheet.
func (s *SheetSnapshot) HasKey(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Snapshot is the read-only view of the whole target workbook, one
// entry per mapped account.
type Snapshot struct {
	Sheets map[string]*SheetSnapshot
}

// Sheet returns the snapshot for an account, or nil when the account
// has no mapped sheet in the workbook.
func (s *Snapshot) Sheet(account string) *SheetSnapshot {
	return s.Sheets[account]
}

// ReadSnapshot opens the target workbook and snapshots every mapped
// sheet. A mapping whose sheet is missing from the workbook is logged
// and skipped; transactions for that account are later reported as
// unmatched rather than failing the run.
func ReadSnapshot(path string, mappings []Mapping, log zerolog.Logger) (*Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	snap := &Snapshot{Sheets: make(map[string]*SheetSnapshot, len(mappings))}
	for _, m := range mappings {
		rows, err := f.GetRows(m.Sheet)
		if err != nil {
			log.Warn().Str("sheet", m.Sheet).Str("account", m.Account).
				Msg("sheet not found in workbook, skipping account")
			continue
		}
		snap.Sheets[m.Account] = snapshotSheet(m, rows)
	}
	return snap, nil
}

func snapshotSheet(m Mapping, rows [][]string) *SheetSnapshot {
	s := &SheetSnapshot{
		Account: m.Account,
		Sheet:   m.Sheet,
		Layout:  m.Layout,
		keys:    make(map[string]struct{}),
	}
	dateCol, descCol, debitCol, creditCol := m.Layout.readCols()

	for i, row := range rows {
		date := cellAt(row, dateCol)
		desc := cellAt(row, descCol)
		debit := cellAt(row, debitCol)
		credit := cellAt(row, creditCol)
		if date == "" && desc == "" && debit == "" && credit == "" {
			continue
		}
		s.LastRow = i + 1

		d, ok := parseSheetDate(date)
		if !ok {
			continue // header or summary row
		}
		if d.After(s.LastDate) {
			s.LastDate = d
		}
		s.keys[rowKey(d, desc, parseSheetAmount(debit), parseSheetAmount(credit))] = struct{}{}
	}
	return s
}

// Key builds the duplicate key for an incoming transaction the way the
// snapshot builds it for existing rows, so both sides compare equal
// regardless of how the workbook cell formats its values.
func (s *SheetSnapshot) Key(c Classified) string {
	return rowKey(c.Date, s.Layout.DisplayDescription(c.Transaction), c.Debit.Abs(), c.Credit.Abs())
}

// rowKey normalizes date to ISO, collapses description whitespace, and
// fixes amounts at two decimals before joining.
func rowKey(date time.Time, desc string, debit, credit decimal.Decimal) string {
	desc = strings.Join(strings.Fields(desc), " ")
	return date.Format("2006-01-02") + "|" + desc + "|" + debit.StringFixed(2) + "|" + credit.StringFixed(2)
}

func cellAt(row []string, col int) string {
	if col-1 < len(row) {
		return strings.TrimSpace(row[col-1])
	}
	return ""
}

// sheetDateFormats covers the formats the write path emits plus the
// strings excelize produces for date-formatted cells.
var sheetDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"2006-01-02 15:04:05",
	"01/02/06 15:04",
	"Jan 2, 2006",
	"2-Jan-06",
}

func parseSheetDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range sheetDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseSheetAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}
