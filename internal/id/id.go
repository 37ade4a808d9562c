package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// FormatSerial returns a record serial like "BMO0798_12": the source
// account id plus the record's position in its export file.
func FormatSerial(account string, idx int) string {
	return fmt.Sprintf("%s_%d", account, idx)
}

// ParseSerial splits "BMO0798_12" into account and index. The index is
// split from the right so account ids containing underscores survive.
func ParseSerial(serial string) (account string, idx int, err error) {
	i := strings.LastIndex(serial, "_")
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid serial format: %q", serial)
	}
	idx, err = strconv.Atoi(serial[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid index in serial %q: %w", serial, err)
	}
	return serial[:i], idx, nil
}

// AccountID builds the canonical account id from a bank brand and an
// account number: brand plus the last four digits, zero-padded when the
// number is shorter.
func AccountID(brand model.BankBrand, number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) >= 4 {
		return string(brand) + digits[len(digits)-4:]
	}
	if digits == "" {
		return string(brand) + "_" + number
	}
	return string(brand) + strings.Repeat("0", 4-len(digits)) + digits
}

// AccountFromSheet derives the account id from a ledger sheet name by
// taking the last run of digits found in the name. Sheet names carry the
// account number somewhere in free text, e.g. "BMO CAD 0798 operating".
func AccountFromSheet(sheetName string, brand model.BankBrand) string {
	var last string
	var cur strings.Builder
	for _, r := range sheetName {
		if r >= '0' && r <= '9' {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			last = cur.String()
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		last = cur.String()
	}
	if last == "" {
		return string(brand) + "_" + sheetName
	}
	return AccountID(brand, last)
}
