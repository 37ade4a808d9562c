package ledger

import "time"

// SheetPlan is the ordered set of rows to append to one sheet.
type SheetPlan struct {
	Account    string
	Sheet      string
	Layout     Layout
	StartRow   int // first row to write, 1-based
	Append     []Classified
	Duplicates int
}

// Plan is the outcome of reconciliation across the whole workbook.
// Sheets appear in the order their accounts first occurred in the
// incoming transactions.
type Plan struct {
	Sheets    []*SheetPlan
	Unmatched []Classified // accounts with no snapshot sheet
}

// Empty reports whether the plan would write nothing.
func (p *Plan) Empty() bool {
	for _, s := range p.Sheets {
		if len(s.Append) > 0 {
			return false
		}
	}
	return true
}

// Reconcile decides which incoming transactions each sheet should
// receive. Per transaction, in order: drop it unless it falls in the
// target month; drop it unless it is strictly newer than the sheet's
// latest existing date; drop it when an identical row already exists
// anywhere in the sheet. Survivors append in input order. The snapshot
// is not modified.
func Reconcile(snap *Snapshot, incoming []Classified, month time.Time) *Plan {
	plan := &Plan{}
	plans := make(map[string]*SheetPlan)

	for _, c := range incoming {
		if c.Date.Year() != month.Year() || c.Date.Month() != month.Month() {
			continue
		}
		sheet := snap.Sheet(c.Account)
		if sheet == nil {
			plan.Unmatched = append(plan.Unmatched, c)
			continue
		}
		if !sheet.LastDate.IsZero() && !c.Date.After(sheet.LastDate) {
			continue
		}

		sp := plans[c.Account]
		if sp == nil {
			sp = &SheetPlan{
				Account:  c.Account,
				Sheet:    sheet.Sheet,
				Layout:   sheet.Layout,
				StartRow: sheet.LastRow + 1,
			}
			plans[c.Account] = sp
			plan.Sheets = append(plan.Sheets, sp)
		}
		if sheet.HasKey(sheet.Key(c)) {
			sp.Duplicates++
			continue
		}
		sp.Append = append(sp.Append, c)
	}
	return plan
}
