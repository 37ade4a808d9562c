package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Magic prefixes used to pick a reader. Legacy spreadsheets are OLE
// compound documents, modern ones are zip containers, and 16-bit text
// exports carry a byte-order marker.
var (
	magicOLE   = []byte{0xD0, 0xCF}
	magicZip   = []byte{'P', 'K'}
	magicBOMLE = []byte{0xFF, 0xFE}
	magicBOMBE = []byte{0xFE, 0xFF}
)

// ReadRows opens a bank export of any supported kind and returns the rows
// of its first sheet as strings. The file kind is decided by the first two
// bytes, never by the extension.
func ReadRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	head := make([]byte, 2)
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, fmt.Errorf("reading statement header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding statement: %w", err)
	}

	switch {
	case bytes.Equal(head, magicBOMLE), bytes.Equal(head, magicBOMBE):
		return readUTF16Rows(f)
	case bytes.Equal(head, magicOLE):
		return readLegacyRows(f)
	case bytes.Equal(head, magicZip):
		return readWorkbookRows(f)
	default:
		return readDelimitedRows(f, ',')
	}
}

// readUTF16Rows decodes a 16-bit tab-delimited export. The decoder honors
// the BOM, so both byte orders land here.
func readUTF16Rows(r io.Reader) ([][]string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	return readDelimitedRows(transform.NewReader(r, dec), '\t')
}

func readDelimitedRows(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited text: %w", err)
	}
	return rows, nil
}

// readLegacyRows reads the first sheet of a binary legacy spreadsheet.
func readLegacyRows(r io.ReadSeeker) ([][]string, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening legacy spreadsheet: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("legacy spreadsheet has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("legacy spreadsheet first sheet unreadable")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// readWorkbookRows reads the first sheet of a modern spreadsheet.
func readWorkbookRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
