package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ledgersync-dev/ledgersync/internal/logger"
)

// writeworkbook saves a workbook with the given sheets, each a plain
// string grid.
func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadSnapshot(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"BMO operating 0798": {
			{"Date", "Description", "Customer Ref", "Bank Ref", "Debit", "Credit"},
			{"2025-06-02", "PLAN FEE", "", "", "120.00", ""},
			{"2025-06-15", "INCOMING WIRE", "", "", "", "1950.00"},
			{}, // gap row
			{"2025-06-28", "SERVICE CHARGE", "", "", "45.00", ""},
		},
	})

	snap, err := ReadSnapshot(path, []Mapping{
		{Account: "BMO0798", Sheet: "BMO operating 0798", Layout: LayoutBMO},
	}, logger.New())
	require.NoError(t, err)

	sheet := snap.Sheet("BMO0798")
	require.NotNil(t, sheet)
	assert.Equal(t, 5, sheet.LastRow)
	assert.Equal(t, "2025-06-28", sheet.LastDate.Format("2006-01-02"))

	// Header row contributed no key; data rows did.
	assert.Len(t, sheet.keys, 3)
	assert.True(t, sheet.HasKey(rowKey(
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "PLAN FEE", dec("120.00"), dec("0"))))
	assert.False(t, sheet.HasKey(rowKey(
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "PLAN FEE", dec("121.00"), dec("0"))))
}

func TestReadSnapshot_MissingSheetSkipped(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Summary": {{"nothing here"}},
	})

	snap, err := ReadSnapshot(path, []Mapping{
		{Account: "BMO0798", Sheet: "No Such Sheet", Layout: LayoutBMO},
	}, logger.New())
	require.NoError(t, err)
	assert.Nil(t, snap.Sheet("BMO0798"))
}

func TestReadSnapshot_MissingWorkbookFatal(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.xlsx"), nil, logger.New())
	assert.Error(t, err)
}

func TestWriterAppend(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"BMO operating 0798": {
			{"Date", "Description"},
			{"2025-06-30", "LAST EXISTING"},
		},
	})

	c := classifiedDebit("BMO0798", 2, "PLAN FEE", "120.00")
	c.BankRef = "REF-1"
	c.Result.Outcome.Category = "service fee"
	c.Result.Outcome.ReceiptRequired = true

	plan := &Plan{Sheets: []*SheetPlan{{
		Account:  "BMO0798",
		Sheet:    "BMO operating 0798",
		Layout:   LayoutBMO,
		StartRow: 3,
		Append:   []Classified{c},
	}}}

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, NewWriter(logger.New()).Append(f, plan))

	get := func(cell string) string {
		v, err := f.GetCellValue("BMO operating 0798", cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "2025-07-02", get("A3"))
	assert.Equal(t, "PLAN FEE", get("B3"))
	assert.Equal(t, "REF-1", get("D3"))
	assert.Equal(t, "120", get("E3"))
	assert.Equal(t, "", get("F3")) // credit cell stays empty
	assert.Equal(t, "service fee", get("H3"))
	assert.Equal(t, "pending", get("J3"))
	assert.Equal(t, "", get("K3"))

	// Existing rows untouched.
	assert.Equal(t, "LAST EXISTING", get("B2"))
}
