package statement

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats covers the literal date shapes seen across the three banks'
// exports. Tried in order.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"20060102",
	"02-Jan-2006",
	"02-Jan-06",
}

// excel serial day 0 is 1899-12-30 (the 1900 leap-year bug is baked in).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate parses a cell into a calendar date, accepting the known
// literal formats plus spreadsheet serial numbers. The returned date is
// truncated to midnight UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	// Spreadsheet serial numbers: whole or fractional day counts. Plausible
	// date serials only; small integers would otherwise alias row numbers.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		t := excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// parseAmount parses a money cell, tolerating currency symbols and
// thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	return decimal.NewFromString(clean)
}

// cell returns row[i], or "" when the row is too short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
