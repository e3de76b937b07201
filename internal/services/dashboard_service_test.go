package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"conti/internal/core"
	"conti/internal/ledger"
	"conti/internal/ledger/memory"
)

var dashNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newDashboardService(store *memory.Store, ttl time.Duration) *DashboardService {
	rewards := NewRewardService(store, store)
	return NewDashboardService(store, store, store, store, rewards, ttl)
}

func seedDashboardData(t *testing.T, store *memory.Store, userID int64) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.CreateAccount(ctx, core.Account{
		UserID:   userID,
		Number:   "CHK-001",
		Name:     "Checking",
		Type:     core.AccountChecking,
		Balance:  decimal.NewFromInt(2500),
		Currency: "USD",
		Status:   core.AccountActive,
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	transactions := []core.Transaction{
		{AccountID: 1, Amount: decimal.NewFromInt(3000), Type: core.TransactionIncome, Status: core.TransactionCompleted, Description: "Salary", Date: dashNow.AddDate(0, 0, -5)},
		{AccountID: 1, Amount: decimal.NewFromInt(800), Type: core.TransactionExpense, Status: core.TransactionCompleted, Description: "Rent", Category: "housing", Date: dashNow.AddDate(0, 0, -4)},
		{AccountID: 1, Amount: decimal.NewFromInt(200), Type: core.TransactionExpense, Status: core.TransactionCompleted, Description: "Groceries", Category: "food", Date: dashNow.AddDate(0, 0, -2)},
	}
	for _, tr := range transactions {
		tr.UserID = userID
		if _, err := store.CreateTransaction(ctx, tr); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	if _, err := store.CreateBudget(ctx, core.Budget{
		UserID:   userID,
		Category: "food",
		Amount:   decimal.NewFromInt(400),
		Month:    int(dashNow.Month()),
		Year:     dashNow.Year(),
	}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}

	if _, err := store.CreateBill(ctx, core.Bill{
		UserID:    userID,
		Name:      "Internet",
		Amount:    decimal.NewFromInt(60),
		Currency:  "USD",
		DueDate:   core.DateOf(dashNow.AddDate(0, 0, 2)),
		Frequency: core.FrequencyMonthly,
		Category:  "utilities",
	}); err != nil {
		t.Fatalf("seed bill: %v", err)
	}
}

func TestDashboardService_Summary(t *testing.T) {
	store := memory.New()
	svc := newDashboardService(store, time.Minute)
	user := seedUser(t, store, "ada")
	seedDashboardData(t, store, user.ID)

	dash, err := svc.Summary(context.Background(), user.ID, dashNow)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if !dash.Summary.MonthlyIncome.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("monthly income = %s, want 3000", dash.Summary.MonthlyIncome)
	}
	if !dash.Summary.MonthlyExpenses.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("monthly expenses = %s, want 1000", dash.Summary.MonthlyExpenses)
	}
	if !dash.Summary.NetCashFlow.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("net cash flow = %s, want 2000", dash.Summary.NetCashFlow)
	}
	if len(dash.Bills.Upcoming) != 1 {
		t.Errorf("expected 1 upcoming bill, got %d", len(dash.Bills.Upcoming))
	}
	if dash.Rewards.CurrentTier != core.TierBronze {
		t.Errorf("expected bronze tier, got %s", dash.Rewards.CurrentTier)
	}

	if len(dash.Budgets) != 1 {
		t.Fatalf("expected 1 budget status, got %d", len(dash.Budgets))
	}
	food := dash.Budgets[0]
	if !food.Spent.Equal(decimal.NewFromInt(200)) {
		t.Errorf("food spent = %s, want 200", food.Spent)
	}
	if !food.Utilization.Equal(decimal.NewFromInt(50)) {
		t.Errorf("food utilization = %s, want 50", food.Utilization)
	}
}

func TestDashboardService_CacheAndInvalidate(t *testing.T) {
	store := memory.New()
	svc := newDashboardService(store, time.Minute)
	user := seedUser(t, store, "ada")
	seedDashboardData(t, store, user.ID)

	first, err := svc.Summary(context.Background(), user.ID, dashNow)
	if err != nil {
		t.Fatalf("first Summary failed: %v", err)
	}

	// A new transaction is invisible until the cache entry is dropped.
	if _, err := store.CreateTransaction(context.Background(), core.Transaction{
		UserID:      user.ID,
		AccountID:   1,
		Amount:      decimal.NewFromInt(500),
		Type:        core.TransactionExpense,
		Status:      core.TransactionCompleted,
		Description: "Surprise",
		Date:        dashNow,
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	cached, err := svc.Summary(context.Background(), user.ID, dashNow)
	if err != nil {
		t.Fatalf("cached Summary failed: %v", err)
	}
	if !cached.Summary.MonthlyExpenses.Equal(first.Summary.MonthlyExpenses) {
		t.Errorf("cache miss: expenses moved from %s to %s",
			first.Summary.MonthlyExpenses, cached.Summary.MonthlyExpenses)
	}

	svc.Invalidate(user.ID, dashNow)
	rebuilt, err := svc.Summary(context.Background(), user.ID, dashNow)
	if err != nil {
		t.Fatalf("rebuilt Summary failed: %v", err)
	}
	if !rebuilt.Summary.MonthlyExpenses.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expenses after invalidate = %s, want 1500", rebuilt.Summary.MonthlyExpenses)
	}
}

// failingTransactions makes every transaction fetch fail.
type failingTransactions struct{}

func (failingTransactions) CreateTransaction(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, errors.New("store down")
}

func (failingTransactions) TransactionsByUser(context.Context, int64, ledger.TransactionFilter) ([]core.Transaction, error) {
	return nil, errors.New("store down")
}

func TestDashboardService_AllOrNothing(t *testing.T) {
	store := memory.New()
	user := seedUser(t, store, "ada")
	seedDashboardData(t, store, user.ID)

	rewards := NewRewardService(store, store)
	svc := NewDashboardService(store, failingTransactions{}, store, store, rewards, time.Minute)

	_, err := svc.Summary(context.Background(), user.ID, dashNow)
	if err == nil {
		t.Fatal("expected the whole summary to fail")
	}
	var rerr *core.RequestError
	if !errors.As(err, &rerr) {
		t.Errorf("expected RequestError, got %T: %v", err, err)
	}
}
