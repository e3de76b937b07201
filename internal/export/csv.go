package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV renders the statement with a header row. An empty statement
// still writes the header so the download is never a zero-byte file.
func WriteCSV(w io.Writer, s Statement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StatementColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range s.Transactions {
		if err := cw.Write(StatementRow(t)); err != nil {
			return fmt.Errorf("write row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName names the CSV download for one month.
func FileName(month, year int) string {
	return fmt.Sprintf("transactions_%04d-%02d.csv", year, month)
}
