// Package export renders monthly account statements for external
// consumption: CSV downloads and Google Sheets appends. Both targets
// share one column layout so a statement reads the same everywhere.
package export

import (
	"context"
	"strconv"

	"conti/internal/core"
)

// Ports for outbound statement targets.
type (
	// StatementAppender pushes a statement to an external worksheet and
	// returns a reference to the written range.
	StatementAppender interface {
		AppendStatement(ctx context.Context, s Statement) (rangeRef string, err error)
	}
)

// Statement is one month of transactions prepared for export.
type Statement struct {
	Month        int
	Year         int
	Transactions []core.Transaction
}

// StatementColumns is the header row every target writes, in order.
var StatementColumns = []string{
	"ID", "Date", "Description", "Merchant", "Category",
	"Amount", "Type", "Status", "Reference",
}

// StatementRow flattens one transaction into the column layout.
// Amounts are fixed to two decimals; dates use the 2006-01-02 form.
func StatementRow(t core.Transaction) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Date.Format("2006-01-02"),
		t.Description,
		t.Merchant,
		t.Category,
		t.Amount.StringFixed(2),
		string(t.Type),
		string(t.Status),
		t.Reference,
	}
}
