package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"conti/internal/core"
	"conti/internal/ledger/memory"
)

// 2026-03-15, a fixed sweep date every case is phrased against.
var sweepNow = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

func newReminderProcessor(store *memory.Store, events EventPublisher) *ReminderProcessor {
	return NewReminderProcessor(store, store, newAlertService(store, events), events)
}

func seedBill(t *testing.T, store *memory.Store, b core.Bill) core.Bill {
	t.Helper()
	if b.Name == "" {
		b.Name = "Test bill"
	}
	if b.Amount.IsZero() {
		b.Amount = decimal.NewFromInt(50)
	}
	if b.Currency == "" {
		b.Currency = "USD"
	}
	if b.Frequency == "" {
		b.Frequency = core.FrequencyMonthly
	}
	if b.Category == "" {
		b.Category = "utilities"
	}
	created, err := store.CreateBill(context.Background(), b)
	if err != nil {
		t.Fatalf("seed bill %s: %v", b.Name, err)
	}
	return created
}

func TestReminderProcessor_ProcessReminders(t *testing.T) {
	store := memory.New()
	events := &capturePublisher{}
	p := newReminderProcessor(store, events)
	user := seedUser(t, store, "ada")

	upcoming := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Electricity", DueDate: core.NewDate(2026, 3, 17),
	})
	dueToday := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Rent", DueDate: core.NewDate(2026, 3, 15),
	})
	dueTomorrow := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Internet", DueDate: core.NewDate(2026, 3, 16),
	})
	lapsed := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Water", DueDate: core.NewDate(2026, 3, 12),
	})
	// Outside the default 3-day window, and a paid bill: both silent.
	seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Insurance", DueDate: core.NewDate(2026, 3, 25),
	})
	seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Streaming", DueDate: core.NewDate(2026, 3, 15),
		IsPaid: true, PaidDate: core.NewDate(2026, 3, 14),
	})

	reminders, overdue, err := p.ProcessReminders(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("ProcessReminders failed: %v", err)
	}
	if reminders != 3 {
		t.Errorf("reminders = %d, want 3", reminders)
	}
	if overdue != 1 {
		t.Errorf("overdue = %d, want 1", overdue)
	}

	severityByBill := make(map[int64]string)
	for _, msg := range events.reminders {
		severityByBill[msg.BillID] = msg.Severity
	}
	wantSeverity := map[int64]string{
		upcoming.ID:    "info",
		dueToday.ID:    "critical",
		dueTomorrow.ID: "warning",
		lapsed.ID:      "critical",
	}
	for billID, want := range wantSeverity {
		if got := severityByBill[billID]; got != want {
			t.Errorf("bill %d severity = %q, want %q", billID, got, want)
		}
	}
	if len(events.reminders) != 4 {
		t.Errorf("published %d reminder events, want 4", len(events.reminders))
	}

	// The dedup window keeps a re-run quiet.
	reminders, overdue, err = p.ProcessReminders(context.Background(), sweepNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second ProcessReminders failed: %v", err)
	}
	if reminders != 0 || overdue != 0 {
		t.Errorf("re-run raised %d/%d, want 0/0", reminders, overdue)
	}
	if len(events.reminders) != 4 {
		t.Errorf("re-run published extra events: %d total", len(events.reminders))
	}
}

func TestReminderProcessor_AdvanceRecurring(t *testing.T) {
	store := memory.New()
	p := newReminderProcessor(store, nil)
	user := seedUser(t, store, "ada")

	// Two monthly cycles lapsed: must land past today, not one step.
	monthly := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Gym", DueDate: core.NewDate(2026, 1, 10),
		IsPaid: true, PaidDate: core.NewDate(2026, 1, 9),
	})
	oneTime := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Deposit", DueDate: core.NewDate(2026, 2, 1),
		Frequency: core.FrequencyOneTime,
		IsPaid:    true, PaidDate: core.NewDate(2026, 2, 1),
	})
	unpaidOverdue := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Water", DueDate: core.NewDate(2026, 3, 12),
	})
	paidFuture := seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Rent", DueDate: core.NewDate(2026, 4, 1),
		IsPaid: true, PaidDate: core.NewDate(2026, 3, 14),
	})

	advanced, err := p.AdvanceRecurring(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("AdvanceRecurring failed: %v", err)
	}
	if advanced != 1 {
		t.Fatalf("advanced = %d, want 1", advanced)
	}

	got, err := store.BillByID(context.Background(), monthly.ID)
	if err != nil {
		t.Fatalf("reload monthly bill: %v", err)
	}
	if want := core.NewDate(2026, 4, 10); !got.DueDate.Equal(want.Time) {
		t.Errorf("due date = %s, want %s", got.DueDate, want)
	}
	if got.IsPaid {
		t.Error("advanced bill must be payable again")
	}
	if !got.PaidDate.IsEmpty() {
		t.Errorf("paid date not cleared: %s", got.PaidDate)
	}

	for _, tc := range []struct {
		name string
		id   int64
		want core.Bill
	}{
		{"one_time stays paid", oneTime.ID, oneTime},
		{"unpaid bill untouched", unpaidOverdue.ID, unpaidOverdue},
		{"future cycle untouched", paidFuture.ID, paidFuture},
	} {
		got, err := store.BillByID(context.Background(), tc.id)
		if err != nil {
			t.Fatalf("%s: reload: %v", tc.name, err)
		}
		if !got.DueDate.Equal(tc.want.DueDate.Time) || got.IsPaid != tc.want.IsPaid {
			t.Errorf("%s: bill changed: %+v", tc.name, got)
		}
	}
}

func TestReminderProcessor_Sweep(t *testing.T) {
	store := memory.New()
	events := &capturePublisher{}
	p := newReminderProcessor(store, events)
	user := seedUser(t, store, "ada")

	// One reminder, one lapsed recurrence, one rule hit, one stale alert.
	seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Rent", DueDate: core.NewDate(2026, 3, 15),
	})
	seedBill(t, store, core.Bill{
		UserID: user.ID, Name: "Gym", DueDate: core.NewDate(2026, 2, 20),
		IsPaid: true, PaidDate: core.NewDate(2026, 2, 19),
	})
	seedTransaction(t, store, core.Transaction{
		UserID: user.ID, AccountID: 1,
		Amount: decimal.NewFromInt(1500), Type: core.TransactionExpense,
		Description: "New laptop", Date: sweepNow.AddDate(0, 0, -2),
	})
	seedAlert(t, store, core.Alert{
		UserID: user.ID, Title: "Stale", CreatedAt: sweepNow.AddDate(0, 0, -45),
	})

	// Inactive users are skipped entirely.
	idle, err := store.CreateUser(context.Background(), core.User{
		Username: "idle", Email: "idle@example.com", Currency: "USD",
	})
	if err != nil {
		t.Fatalf("seed inactive user: %v", err)
	}
	idleAlert := seedAlert(t, store, core.Alert{
		UserID: idle.ID, Title: "Idle stale", CreatedAt: sweepNow.AddDate(0, 0, -45),
	})

	stats, err := p.Sweep(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if stats.Reminders != 1 || stats.Overdue != 0 {
		t.Errorf("reminders/overdue = %d/%d, want 1/0", stats.Reminders, stats.Overdue)
	}
	if stats.Advanced != 1 {
		t.Errorf("advanced = %d, want 1", stats.Advanced)
	}
	if stats.Generated != 1 {
		t.Errorf("generated = %d, want 1 (the large transaction)", stats.Generated)
	}
	if stats.CleanedUp != 1 {
		t.Errorf("cleaned up = %d, want 1", stats.CleanedUp)
	}

	kept, err := store.AlertByID(context.Background(), idleAlert.ID)
	if err != nil {
		t.Fatalf("reload inactive user's alert: %v", err)
	}
	if kept.Status != core.StatusActive {
		t.Errorf("inactive user's alert was swept: %s", kept.Status)
	}
}
