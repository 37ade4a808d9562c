package model

import "strings"

// BankBrand identifies which bank produced a statement export.
type BankBrand string

const (
	BankBMO  BankBrand = "BMO"
	BankRBC  BankBrand = "RBC"
	BankCIBC BankBrand = "CIBC"
)

// DetectBrand determines the bank from an export filename.
// BMO exports are named ReconciliationReport_*, RBC exports start with
// "RBC", and CIBC exports start with Transaction (TransactionSummary,
// TransactionDetail). Returns "" for anything else.
func DetectBrand(filename string) BankBrand {
	// Strip any directory component.
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	switch {
	case strings.HasPrefix(filename, "ReconciliationReport"):
		return BankBMO
	case strings.HasPrefix(filename, "RBC"):
		return BankRBC
	case strings.HasPrefix(filename, "Transaction"):
		return BankCIBC
	}
	return ""
}
