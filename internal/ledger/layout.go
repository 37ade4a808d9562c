// Package ledger reads the target workbook, reconciles incoming
// transactions against it, and writes the append plan back.
package ledger

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ledgersync-dev/ledgersync/internal/model"
	"github.com/ledgersync-dev/ledgersync/internal/rules"
)

// Classified pairs a transaction with its classification.
type Classified struct {
	model.Transaction
	Result rules.Result
}

// Layout identifies one of the three ledger sheet column arrangements.
// Each bank family's sheets share a layout; the layout knows where its
// date/description/amount columns live and how to write a row.
type Layout string

const (
	LayoutBMO  Layout = "bmo"  // 14 columns
	LayoutRBC  Layout = "rbc"  // 12 columns
	LayoutCIBC Layout = "cibc" // 11 columns
)

// ParseLayout maps a config string to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutBMO:
		return LayoutBMO, nil
	case LayoutRBC:
		return LayoutRBC, nil
	case LayoutCIBC:
		return LayoutCIBC, nil
	}
	return "", fmt.Errorf("unknown sheet layout %q", s)
}

// pendingMark is written into a flag column when the classifier requires
// manual follow-up for that flag.
const pendingMark = "pending"

// readCols returns the 1-based date, description, debit, and credit
// columns used when snapshotting existing rows.
func (l Layout) readCols() (date, desc, debit, credit int) {
	switch l {
	case LayoutRBC:
		return 2, 1, 4, 5
	case LayoutCIBC:
		return 1, 2, 3, 4
	default: // LayoutBMO
		return 1, 2, 5, 6
	}
}

// Brand returns the bank family the layout belongs to.
func (l Layout) Brand() model.BankBrand {
	switch l {
	case LayoutRBC:
		return model.BankRBC
	case LayoutCIBC:
		return model.BankCIBC
	default:
		return model.BankBMO
	}
}

// Columns returns the layout's width.
func (l Layout) Columns() int {
	switch l {
	case LayoutRBC:
		return 12
	case LayoutCIBC:
		return 11
	default:
		return 14
	}
}

// DisplayDescription is the narrative text the layout writes into its
// description column. The duplicate key uses the same text, so a rewrite
// of a row the engine produced earlier always keys identically.
func (l Layout) DisplayDescription(t model.Transaction) string {
	var s string
	switch l {
	case LayoutCIBC:
		s = strings.TrimSpace(t.Description + " " + t.Detail)
	default:
		s = t.Description
	}
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// WriteRow writes one classified transaction at the given 1-based row.
func (l Layout) WriteRow(f *excelize.File, sheet string, row int, c Classified) error {
	switch l {
	case LayoutRBC:
		return writeRBCRow(f, sheet, row, c)
	case LayoutCIBC:
		return writeCIBCRow(f, sheet, row, c)
	default:
		return writeBMORow(f, sheet, row, c)
	}
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, name, v)
}

func mark(flag bool) string {
	if flag {
		return pendingMark
	}
	return ""
}

// writeBMORow fills the 14-column layout: date, description, customer
// ref, bank ref, debit, credit, balance (left untouched), category,
// payment detail, four flag columns, note.
func writeBMORow(f *excelize.File, sheet string, row int, c Classified) error {
	o := c.Result.Outcome
	cells := []struct {
		col int
		v   any
	}{
		{1, c.Date.Format("2006-01-02")},
		{2, LayoutBMO.DisplayDescription(c.Transaction)},
		{3, c.CustomerRef},
		{4, c.BankRef},
		{8, o.Category},
		{9, o.PaymentDetail},
		{10, mark(o.ReceiptRequired)},
		{11, mark(o.AttachmentRequired)},
		{12, mark(o.RegisterOfflinePayment)},
		{13, mark(o.RegisterCheckUsage)},
		{14, o.Note},
	}
	for _, cl := range cells {
		if err := setCell(f, sheet, cl.col, row, cl.v); err != nil {
			return err
		}
	}
	return writeAmounts(f, sheet, row, 5, 6, c)
}

// writeRBCRow fills the 12-column layout: description, date, serial,
// debit, credit, balance (untouched), category, payment detail, flags.
func writeRBCRow(f *excelize.File, sheet string, row int, c Classified) error {
	o := c.Result.Outcome
	cells := []struct {
		col int
		v   any
	}{
		{1, LayoutRBC.DisplayDescription(c.Transaction)},
		{2, c.Date.Format("01/02/2006")},
		{3, c.BankRef},
		{7, o.Category},
		{8, o.PaymentDetail},
		{9, mark(o.ReceiptRequired)},
		{10, mark(o.AttachmentRequired)},
		{11, mark(o.RegisterOfflinePayment)},
		{12, mark(o.RegisterCheckUsage)},
	}
	for _, cl := range cells {
		if err := setCell(f, sheet, cl.col, row, cl.v); err != nil {
			return err
		}
	}
	return writeAmounts(f, sheet, row, 4, 5, c)
}

// writeCIBCRow fills the 11-column layout: date, details, debit, credit,
// balance (untouched), category, payment detail, flags.
func writeCIBCRow(f *excelize.File, sheet string, row int, c Classified) error {
	o := c.Result.Outcome
	cells := []struct {
		col int
		v   any
	}{
		{1, c.Date.Format("2006-01-02")},
		{2, LayoutCIBC.DisplayDescription(c.Transaction)},
		{6, o.Category},
		{7, o.PaymentDetail},
		{8, mark(o.ReceiptRequired)},
		{9, mark(o.AttachmentRequired)},
		{10, mark(o.RegisterOfflinePayment)},
		{11, mark(o.RegisterCheckUsage)},
	}
	for _, cl := range cells {
		if err := setCell(f, sheet, cl.col, row, cl.v); err != nil {
			return err
		}
	}
	return writeAmounts(f, sheet, row, 3, 4, c)
}

// writeAmounts writes whichever side is present as a positive number,
// leaving the other cell empty rather than writing a zero.
func writeAmounts(f *excelize.File, sheet string, row, debitCol, creditCol int, c Classified) error {
	if !c.Debit.IsZero() {
		v, _ := c.Debit.Abs().Float64()
		if err := setCell(f, sheet, debitCol, row, v); err != nil {
			return err
		}
	}
	if !c.Credit.IsZero() {
		v, _ := c.Credit.Abs().Float64()
		if err := setCell(f, sheet, creditCol, row, v); err != nil {
			return err
		}
	}
	return nil
}
