package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync-dev/ledgersync/internal/model"
	"github.com/ledgersync-dev/ledgersync/internal/rules"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(d int) time.Time {
	return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC)
}

func classifiedDebit(account string, d int, desc, amount string) Classified {
	return Classified{
		Transaction: model.Transaction{
			Date:        day(d),
			Description: desc,
			Debit:       dec(amount),
			Account:     account,
		},
		Result: rules.Uncategorized(),
	}
}

// sheetWith builds a snapshot sheet by hand, the way ReadSnapshot would
// after scanning rows.
func sheetWith(account string, layout Layout, lastRow int, lastDate time.Time, existing ...Classified) *SheetSnapshot {
	s := &SheetSnapshot{
		Account:  account,
		Sheet:    account,
		Layout:   layout,
		LastRow:  lastRow,
		LastDate: lastDate,
		keys:     make(map[string]struct{}),
	}
	for _, c := range existing {
		s.keys[s.Key(c)] = struct{}{}
	}
	return s
}

func snapWith(sheets ...*SheetSnapshot) *Snapshot {
	snap := &Snapshot{Sheets: make(map[string]*SheetSnapshot)}
	for _, s := range sheets {
		snap.Sheets[s.Account] = s
	}
	return snap
}

func TestReconcile_MonthFilter(t *testing.T) {
	snap := snapWith(sheetWith("BMO0798", LayoutBMO, 10, time.Time{}))
	incoming := []Classified{
		classifiedDebit("BMO0798", 3, "IN MONTH", "10"),
		{Transaction: model.Transaction{
			Date: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), Description: "LAST MONTH",
			Debit: dec("10"), Account: "BMO0798",
		}},
	}

	plan := Reconcile(snap, incoming, day(1))
	require.Len(t, plan.Sheets, 1)
	require.Len(t, plan.Sheets[0].Append, 1)
	assert.Equal(t, "IN MONTH", plan.Sheets[0].Append[0].Description)
}

func TestReconcile_TailFilter(t *testing.T) {
	snap := snapWith(sheetWith("BMO0798", LayoutBMO, 10, day(5)))
	incoming := []Classified{
		classifiedDebit("BMO0798", 4, "BEFORE LAST", "10"),
		classifiedDebit("BMO0798", 5, "ON LAST DATE", "10"),
		classifiedDebit("BMO0798", 6, "AFTER LAST", "10"),
	}

	plan := Reconcile(snap, incoming, day(1))
	require.Len(t, plan.Sheets, 1)
	require.Len(t, plan.Sheets[0].Append, 1)
	assert.Equal(t, "AFTER LAST", plan.Sheets[0].Append[0].Description)
}

func TestReconcile_EmptySheetTakesEverything(t *testing.T) {
	// A sheet with no dated rows has no tail to respect.
	snap := snapWith(sheetWith("BMO0798", LayoutBMO, 1, time.Time{}))
	incoming := []Classified{
		classifiedDebit("BMO0798", 1, "FIRST", "10"),
		classifiedDebit("BMO0798", 2, "SECOND", "20"),
	}

	plan := Reconcile(snap, incoming, day(1))
	require.Len(t, plan.Sheets, 1)
	assert.Len(t, plan.Sheets[0].Append, 2)
	assert.Equal(t, 2, plan.Sheets[0].StartRow)
}

func TestReconcile_DuplicateFilter(t *testing.T) {
	existing := classifiedDebit("BMO0798", 10, "PLAN FEE", "120.00")
	snap := snapWith(sheetWith("BMO0798", LayoutBMO, 10, day(2), existing))
	incoming := []Classified{
		classifiedDebit("BMO0798", 10, "PLAN FEE", "120.00"), // identical to an existing row
		classifiedDebit("BMO0798", 10, "PLAN FEE", "121.00"), // differs in amount
	}

	plan := Reconcile(snap, incoming, day(1))
	require.Len(t, plan.Sheets, 1)
	assert.Equal(t, 1, plan.Sheets[0].Duplicates)
	require.Len(t, plan.Sheets[0].Append, 1)
	assert.True(t, plan.Sheets[0].Append[0].Debit.Equal(dec("121.00")))
}

func TestReconcile_InputOrderPreserved(t *testing.T) {
	snap := snapWith(sheetWith("BMO0798", LayoutBMO, 0, time.Time{}))
	incoming := []Classified{
		classifiedDebit("BMO0798", 9, "NINTH", "1"),
		classifiedDebit("BMO0798", 2, "SECOND", "1"),
		classifiedDebit("BMO0798", 30, "THIRTIETH", "1"),
	}

	plan := Reconcile(snap, incoming, day(1))
	require.Len(t, plan.Sheets, 1)
	got := make([]string, 0, 3)
	for _, c := range plan.Sheets[0].Append {
		got = append(got, c.Description)
	}
	// File order, not date order.
	assert.Equal(t, []string{"NINTH", "SECOND", "THIRTIETH"}, got)
}

func TestReconcile_UnmappedAccount(t *testing.T) {
	snap := snapWith(sheetWith("BMO0798", LayoutBMO, 0, time.Time{}))
	incoming := []Classified{
		classifiedDebit("RBC4402", 3, "NO SHEET FOR ME", "10"),
	}

	plan := Reconcile(snap, incoming, day(1))
	assert.Empty(t, plan.Sheets)
	require.Len(t, plan.Unmatched, 1)
	assert.True(t, plan.Empty())
}

func TestReconcile_DoesNotMutateSnapshot(t *testing.T) {
	sheet := sheetWith("BMO0798", LayoutBMO, 5, day(1))
	snap := snapWith(sheet)
	incoming := []Classified{classifiedDebit("BMO0798", 3, "X", "10")}

	Reconcile(snap, incoming, day(1))
	assert.Equal(t, 5, sheet.LastRow)
	assert.Equal(t, day(1), sheet.LastDate)
	assert.Empty(t, sheet.keys)
}

func TestRowKeyNormalization(t *testing.T) {
	sheet := sheetWith("BMO0798", LayoutBMO, 0, time.Time{})
	c := classifiedDebit("BMO0798", 3, "PLAN  FEE", "120")

	// Collapsed whitespace and fixed decimals on both sides.
	assert.Equal(t, "2025-07-03|PLAN FEE|120.00|0.00", sheet.Key(c))
	assert.Equal(t, sheet.Key(c), rowKey(day(3), "PLAN FEE ", dec("120.0"), dec("0")))
}
