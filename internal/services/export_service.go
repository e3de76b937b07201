package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"conti/internal/core"
	"conti/internal/export"
	"conti/internal/ledger"
)

// ErrSheetsNotConfigured reports a spreadsheet export attempt on a
// server with no spreadsheet wired.
var ErrSheetsNotConfigured = errors.New("sheets export is not configured")

// ExportService prepares monthly statements and hands them to a
// target: a CSV download or the configured spreadsheet.
type ExportService struct {
	transactions ledger.TransactionStore
	sheets       export.StatementAppender
}

// NewExportService wires the service. sheets may be nil; spreadsheet
// exports then fail with ErrSheetsNotConfigured.
func NewExportService(transactions ledger.TransactionStore, sheets export.StatementAppender) *ExportService {
	return &ExportService{transactions: transactions, sheets: sheets}
}

// Statement fetches one month of the user's transactions, newest
// first. A zero month and year default to the month of now.
func (s *ExportService) Statement(ctx context.Context, userID int64, month, year int, now time.Time) (export.Statement, error) {
	if month == 0 && year == 0 {
		month, year = int(now.Month()), now.Year()
	}
	if month < 1 || month > 12 {
		return export.Statement{}, core.NewValidationError("month", "must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return export.Statement{}, core.NewValidationError("year", "must be a four-digit year")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	transactions, err := s.transactions.TransactionsByUser(ctx, userID, ledger.TransactionFilter{
		From: start,
		To:   end,
	})
	if err != nil {
		return export.Statement{}, &core.RequestError{Op: "fetch transactions", Err: err}
	}
	return export.Statement{Month: month, Year: year, Transactions: transactions}, nil
}

// WriteCSV renders the month as CSV. The returned statement carries the
// row count and the resolved month for naming the download.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, userID int64, month, year int, now time.Time) (export.Statement, error) {
	st, err := s.Statement(ctx, userID, month, year, now)
	if err != nil {
		return export.Statement{}, err
	}
	if err := export.WriteCSV(w, st); err != nil {
		return export.Statement{}, &core.RequestError{Op: "render csv", Err: err}
	}
	return st, nil
}

// SheetExport reports a completed spreadsheet push.
type SheetExport struct {
	Rows  int    `json:"rows"`
	Range string `json:"range,omitempty"`
}

// ToSheet pushes the month to the configured spreadsheet.
func (s *ExportService) ToSheet(ctx context.Context, userID int64, month, year int, now time.Time) (SheetExport, error) {
	if s.sheets == nil {
		return SheetExport{}, ErrSheetsNotConfigured
	}
	st, err := s.Statement(ctx, userID, month, year, now)
	if err != nil {
		return SheetExport{}, err
	}
	ref, err := s.sheets.AppendStatement(ctx, st)
	if err != nil {
		return SheetExport{}, &core.RequestError{Op: "append to sheet", Err: err}
	}

	slog.InfoContext(ctx, "Statement exported to sheet",
		"user_id", userID,
		"month", st.Month,
		"year", st.Year,
		"rows", len(st.Transactions),
		"range", ref)
	return SheetExport{Rows: len(st.Transactions), Range: ref}, nil
}
