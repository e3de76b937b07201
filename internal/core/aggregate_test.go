package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInMonth(t *testing.T) {
	ref := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ts   time.Time
		want bool
	}{
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC), true},
		{time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), false},
		{time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), false}, // same month, wrong year
		// Stamped midnight March 1st in UTC+2; the UTC instant is still
		// February 28th but the calendar date is March.
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.FixedZone("UTC+2", 2*3600)), true},
	}
	for i, tc := range cases {
		if got := InMonth(tc.ts, ref); got != tc.want {
			t.Fatalf("case %d (%v): got %v, want %v", i, tc.ts, got, tc.want)
		}
	}
}

func TestMonthlyTransactionsExcludesDeadStates(t *testing.T) {
	ref := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: 1, Amount: decimal.NewFromInt(10), Type: TransactionExpense, Status: TransactionCompleted, Date: mar},
		{ID: 2, Amount: decimal.NewFromInt(10), Type: TransactionExpense, Status: TransactionPending, Date: mar},
		{ID: 3, Amount: decimal.NewFromInt(10), Type: TransactionExpense, Status: TransactionFailed, Date: mar},
		{ID: 4, Amount: decimal.NewFromInt(10), Type: TransactionExpense, Status: TransactionCancelled, Date: mar},
	}
	got := MonthlyTransactions(txs, ref)
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions (completed and pending), got %d", len(got))
	}
	for _, tx := range got {
		if tx.ID != 1 && tx.ID != 2 {
			t.Fatalf("unexpected transaction %d in month", tx.ID)
		}
	}
}

func TestTotalsNetMayBeNegative(t *testing.T) {
	txs := []Transaction{
		{Amount: decimal.NewFromInt(100), Type: TransactionIncome},
		{Amount: decimal.NewFromInt(150), Type: TransactionExpense},
	}
	totals := Totals(txs)
	if totals.Net.String() != "-50" {
		t.Fatalf("expected net -50, got %s", totals.Net)
	}
}

func TestExpensesByCategory(t *testing.T) {
	txs := []Transaction{
		{Amount: decimal.NewFromInt(30), Type: TransactionExpense, Category: "groceries"},
		{Amount: decimal.NewFromInt(70), Type: TransactionExpense, Category: "rent"},
		{Amount: decimal.NewFromInt(20), Type: TransactionExpense, Category: "groceries"},
		{Amount: decimal.NewFromInt(15), Type: TransactionExpense, Category: ""},
		{Amount: decimal.NewFromInt(500), Type: TransactionIncome, Category: "salary"}, // income never counts
	}
	got := ExpensesByCategory(txs)
	want := []struct {
		name   string
		amount string
	}{
		{"rent", "70"},
		{"groceries", "50"},
		{"other", "15"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Name != w.name || got[i].Amount.String() != w.amount {
			t.Fatalf("position %d: got %s=%s, want %s=%s", i, got[i].Name, got[i].Amount, w.name, w.amount)
		}
	}
}

func TestAggregateDashboardEmpty(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s := AggregateDashboard(nil, nil, now)
	if s.Year != 2025 || s.Month != 3 {
		t.Fatalf("wrong period: %d-%d", s.Year, s.Month)
	}
	if !s.TotalBalance.IsZero() || !s.MonthlyIncome.IsZero() || !s.MonthlyExpenses.IsZero() {
		t.Fatalf("empty inputs should produce zero totals: %+v", s)
	}
	if !s.SavingsRate.IsZero() {
		t.Fatalf("savings rate with no income should be zero, got %s", s.SavingsRate)
	}
	if s.AccountCount != 0 || s.MonthlyCount != 0 {
		t.Fatalf("empty inputs should produce zero counts")
	}
}

func TestAggregateDashboard(t *testing.T) {
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

	accounts := []Account{
		{Balance: decimal.NewFromInt(1000)},
		{Balance: decimal.NewFromInt(-200)}, // credit account carries a negative balance
	}
	txs := []Transaction{
		{Amount: decimal.NewFromInt(3000), Type: TransactionIncome, Status: TransactionCompleted, Date: mar},
		{Amount: decimal.NewFromInt(500), Type: TransactionIncome, Status: TransactionCompleted, Date: mar},
		{Amount: decimal.NewFromInt(1200), Type: TransactionExpense, Status: TransactionCompleted, Date: mar, Category: "rent"},
		{Amount: decimal.NewFromInt(550), Type: TransactionExpense, Status: TransactionCompleted, Date: mar, Category: "groceries"},
		{Amount: decimal.NewFromInt(9999), Type: TransactionExpense, Status: TransactionCompleted, Date: feb}, // other month
	}

	s := AggregateDashboard(accounts, txs, now)
	if s.TotalBalance.String() != "800" {
		t.Fatalf("total balance: got %s, want 800", s.TotalBalance)
	}
	if s.MonthlyIncome.String() != "3500" || s.MonthlyExpenses.String() != "1750" {
		t.Fatalf("totals: income %s expenses %s", s.MonthlyIncome, s.MonthlyExpenses)
	}
	if s.NetCashFlow.String() != "1750" {
		t.Fatalf("net: got %s", s.NetCashFlow)
	}
	if s.SavingsRate.String() != "50" {
		t.Fatalf("savings rate: got %s, want 50", s.SavingsRate)
	}
	if s.LargestIncome.String() != "3000" || s.LargestExpense.String() != "1200" {
		t.Fatalf("largest: income %s expense %s", s.LargestIncome, s.LargestExpense)
	}
	if s.MonthlyCount != 4 {
		t.Fatalf("monthly count: got %d, want 4", s.MonthlyCount)
	}
}
