package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"conti/internal/core"
	exportmem "conti/internal/export/memory"
	"conti/internal/ledger/memory"
)

var exportNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestExportService_Statement(t *testing.T) {
	store := memory.New()
	svc := NewExportService(store, nil)
	user := seedUser(t, store, "ada")

	inMonth := seedTransaction(t, store, core.Transaction{
		UserID: user.ID, AccountID: 1,
		Amount: decimal.NewFromInt(200), Type: core.TransactionExpense,
		Description: "Groceries", Date: time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC),
	})
	// Preceding month and the first instant of the next month: both out.
	seedTransaction(t, store, core.Transaction{
		UserID: user.ID, AccountID: 1,
		Amount: decimal.NewFromInt(75), Type: core.TransactionExpense,
		Description: "February", Date: time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
	})
	seedTransaction(t, store, core.Transaction{
		UserID: user.ID, AccountID: 1,
		Amount: decimal.NewFromInt(80), Type: core.TransactionExpense,
		Description: "April", Date: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	})

	t.Run("filters to the requested month", func(t *testing.T) {
		st, err := svc.Statement(context.Background(), user.ID, 3, 2026, exportNow)
		if err != nil {
			t.Fatalf("Statement failed: %v", err)
		}
		if len(st.Transactions) != 1 || st.Transactions[0].ID != inMonth.ID {
			t.Errorf("statement rows = %+v, want only the March transaction", st.Transactions)
		}
	})

	t.Run("zero month and year default to now", func(t *testing.T) {
		st, err := svc.Statement(context.Background(), user.ID, 0, 0, exportNow)
		if err != nil {
			t.Fatalf("Statement failed: %v", err)
		}
		if st.Month != 3 || st.Year != 2026 {
			t.Errorf("resolved month = %d/%d, want 3/2026", st.Month, st.Year)
		}
	})

	t.Run("rejects impossible months", func(t *testing.T) {
		_, err := svc.Statement(context.Background(), user.ID, 13, 2026, exportNow)
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Field != "month" {
			t.Fatalf("expected month validation error, got %v", err)
		}
	})
}

func TestExportService_WriteCSV(t *testing.T) {
	store := memory.New()
	svc := NewExportService(store, nil)
	user := seedUser(t, store, "ada")
	seedTransaction(t, store, core.Transaction{
		UserID: user.ID, AccountID: 1,
		Amount: decimal.NewFromInt(200), Type: core.TransactionExpense,
		Description: "Groceries", Date: time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC),
	})

	var sb strings.Builder
	st, err := svc.WriteCSV(context.Background(), &sb, user.ID, 3, 2026, exportNow)
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if len(st.Transactions) != 1 {
		t.Errorf("statement rows = %d, want 1", len(st.Transactions))
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv has %d lines, want header + 1 row:\n%s", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], "ID,Date,") {
		t.Errorf("missing header: %q", lines[0])
	}
}

func TestExportService_ToSheet(t *testing.T) {
	store := memory.New()
	sheet := exportmem.New()
	svc := NewExportService(store, sheet)
	user := seedUser(t, store, "ada")
	seedTransaction(t, store, core.Transaction{
		UserID: user.ID, AccountID: 1,
		Amount: decimal.NewFromInt(200), Type: core.TransactionExpense,
		Description: "Groceries", Date: time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC),
	})

	result, err := svc.ToSheet(context.Background(), user.ID, 3, 2026, exportNow)
	if err != nil {
		t.Fatalf("ToSheet failed: %v", err)
	}
	if result.Rows != 1 || result.Range == "" {
		t.Errorf("result = %+v, want 1 row and a range reference", result)
	}

	appended := sheet.Statements()
	if len(appended) != 1 || appended[0].Month != 3 {
		t.Errorf("appended statements = %+v", appended)
	}
}

func TestExportService_ToSheetUnconfigured(t *testing.T) {
	store := memory.New()
	svc := NewExportService(store, nil)
	user := seedUser(t, store, "ada")

	_, err := svc.ToSheet(context.Background(), user.ID, 3, 2026, exportNow)
	if !errors.Is(err, ErrSheetsNotConfigured) {
		t.Fatalf("expected ErrSheetsNotConfigured, got %v", err)
	}
}
