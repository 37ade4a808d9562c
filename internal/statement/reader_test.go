package statement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

func TestReadRows_PlainCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, rows[1])
}

func TestReadRows_UTF16TabDelimited(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Date\tAmount\n20250703\t950.00\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xls")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Amount"}, rows[0])
	assert.Equal(t, []string{"20250703", "950.00"}, rows[1])
}

func TestReadRows_UTF16BigEndian(t *testing.T) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Date\tAmount\n20250703\t950.00\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xls")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"20250703", "950.00"}, rows[1])
}

func TestReadRows_Workbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Date"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "2025-07-03"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "120.00"))

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2025-07-03", rows[1][0])
	assert.Equal(t, "120.00", rows[1][1])
}

func TestReadRows_MissingFile(t *testing.T) {
	_, err := ReadRows(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-07-03", "2025-07-03"},
		{"07/03/2025", "2025-07-03"},
		{"7/3/2025", "2025-07-03"},
		{"20250703", "2025-07-03"},
		{"45841", "2025-07-03"}, // spreadsheet serial
	}
	for _, tt := range tests {
		got, ok := parseDate(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), tt.in)
	}

	for _, in := range []string{"", "Date", "Total Debits:", "12"} {
		_, ok := parseDate(in)
		assert.False(t, ok, in)
	}
}

func TestParseAmount(t *testing.T) {
	got, err := parseAmount("$1,950.00")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1950.00")))

	_, err = parseAmount("2025-0711")
	assert.Error(t, err)
}
