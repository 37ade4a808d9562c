package ledger

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ledgersync-dev/ledgersync/internal/id"
)

// Writer applies an append plan to an open workbook.
type Writer struct {
	log zerolog.Logger
}

func NewWriter(log zerolog.Logger) *Writer {
	return &Writer{log: log}
}

// Append writes every planned row. Rows land immediately below each
// sheet's existing data and existing rows are never touched.
func (w *Writer) Append(f *excelize.File, plan *Plan) error {
	for _, sp := range plan.Sheets {
		for i, c := range sp.Append {
			row := sp.StartRow + i
			if err := sp.Layout.WriteRow(f, sp.Sheet, row, c); err != nil {
				return fmt.Errorf("writing %s row %d: %w", sp.Sheet, row, err)
			}
			w.log.Debug().Str("id", id.FormatSerial(sp.Account, row)).
				Str("date", c.Date.Format("2006-01-02")).
				Str("category", c.Result.Outcome.Category).
				Msg("row appended")
		}
		if len(sp.Append) > 0 {
			w.log.Info().Str("sheet", sp.Sheet).
				Int("added", len(sp.Append)).
				Int("duplicates", sp.Duplicates).
				Msg("appended transactions")
		}
	}
	return nil
}
