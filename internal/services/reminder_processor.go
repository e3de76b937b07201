package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/ledger"
)

// ReminderProcessor drives the periodic bill sweep: due-date reminders,
// overdue alerts, recurrence advancement, and the per-user alert rules.
// Every item is processed independently; a failure on one bill or user
// is logged and the sweep moves on.
type ReminderProcessor struct {
	bills    ledger.BillStore
	users    ledger.UserStore
	alertSvc *AlertService
	events   EventPublisher
}

func NewReminderProcessor(
	bills ledger.BillStore,
	users ledger.UserStore,
	alerts *AlertService,
	events EventPublisher,
) *ReminderProcessor {
	return &ReminderProcessor{
		bills:    bills,
		users:    users,
		alertSvc: alerts,
		events:   events,
	}
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	Reminders int
	Overdue   int
	Advanced  int
	Generated int
	CleanedUp int
}

// Sweep runs one full pass: bill reminders and overdue alerts, the
// recurrence advance, then the generation rules and cleanup for every
// active user.
func (p *ReminderProcessor) Sweep(ctx context.Context, now time.Time) (SweepStats, error) {
	var stats SweepStats

	reminders, overdue, err := p.ProcessReminders(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.Reminders = reminders
	stats.Overdue = overdue

	advanced, err := p.AdvanceRecurring(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.Advanced = advanced

	users, err := p.users.ActiveUsers(ctx)
	if err != nil {
		return stats, fmt.Errorf("list active users: %w", err)
	}
	for _, u := range users {
		generated, err := p.alertSvc.Generate(ctx, u.ID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Alert generation failed",
				"user_id", u.ID, "error", err)
		} else {
			stats.Generated += len(generated)
		}

		swept, err := p.alertSvc.CleanupOld(ctx, u.ID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Alert cleanup failed",
				"user_id", u.ID, "error", err)
			continue
		}
		stats.CleanedUp += swept
	}

	slog.InfoContext(ctx, "Reminder sweep complete",
		"reminders", stats.Reminders,
		"overdue", stats.Overdue,
		"advanced", stats.Advanced,
		"alerts_generated", stats.Generated,
		"alerts_cleaned", stats.CleanedUp)
	return stats, nil
}

// ProcessReminders raises bill_due alerts for every unpaid bill inside
// its reminder window and for every overdue bill. The alert dedup
// window keeps this to one alert per bill per day however often the
// sweep runs. Returns the number of reminders and overdue alerts
// actually raised.
func (p *ReminderProcessor) ProcessReminders(ctx context.Context, now time.Time) (reminders, overdue int, err error) {
	bills, err := p.bills.AllBills(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list bills: %w", err)
	}
	today := core.DateOf(now)

	slog.InfoContext(ctx, "Processing bill reminders",
		"total_bills", len(bills),
		"date", today.String())

	for _, bill := range bills {
		if !core.ShouldRemind(bill, today) {
			continue
		}

		daysLeft := core.DaysUntilDue(bill, today)
		alert := reminderAlert(bill, daysLeft)

		created, raised, err := p.alertSvc.Raise(ctx, alert, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to raise bill reminder",
				"bill_id", bill.ID, "error", err)
			continue
		}
		if !raised {
			continue
		}

		if daysLeft < 0 {
			overdue++
		} else {
			reminders++
		}
		p.publishReminder(ctx, bill, daysLeft, created.Severity)
	}
	return reminders, overdue, nil
}

// AdvanceRecurring rolls paid recurring bills whose cycle has lapsed
// into their next cycle: due date moves forward past today and the
// bill becomes payable again. Returns how many bills advanced.
func (p *ReminderProcessor) AdvanceRecurring(ctx context.Context, now time.Time) (int, error) {
	bills, err := p.bills.AllBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("list bills: %w", err)
	}
	today := core.DateOf(now)

	advanced := 0
	for _, bill := range bills {
		if !bill.IsPaid || !bill.DueDate.Before(today.Time) {
			continue
		}
		next, ok := core.NextDueDate(bill)
		if !ok {
			continue // one_time bills stay paid
		}
		// Catch up however many cycles have lapsed.
		bill.DueDate = next
		for bill.DueDate.Before(today.Time) {
			step, ok := core.NextDueDate(bill)
			if !ok {
				break
			}
			bill.DueDate = step
		}
		bill.IsPaid = false
		bill.PaidDate = core.Date{}

		if err := p.bills.UpdateBill(ctx, bill); err != nil {
			slog.ErrorContext(ctx, "Failed to advance recurring bill",
				"bill_id", bill.ID, "error", err)
			continue
		}
		advanced++
		slog.InfoContext(ctx, "Recurring bill advanced",
			"bill_id", bill.ID,
			"name", bill.Name,
			"next_due", bill.DueDate.String(),
			"frequency", string(bill.Frequency))
	}
	return advanced, nil
}

// reminderAlert builds the bill_due alert for a bill. Severity climbs
// as the due date closes in: info outside two days, warning tomorrow,
// critical today and beyond.
func reminderAlert(bill core.Bill, daysLeft int) core.Alert {
	var (
		severity core.AlertSeverity
		title    string
		message  string
	)
	amount := bill.Amount.StringFixed(2)

	switch {
	case daysLeft < 0:
		severity = core.SeverityCritical
		title = fmt.Sprintf("Bill overdue: %s", bill.Name)
		message = fmt.Sprintf("Your bill for %s was due on %s. Amount: %s %s.",
			bill.Name, bill.DueDate.String(), amount, bill.Currency)
	case daysLeft == 0:
		severity = core.SeverityCritical
		title = fmt.Sprintf("Bill due today: %s", bill.Name)
		message = fmt.Sprintf("Your bill for %s is due today. Amount: %s %s.",
			bill.Name, amount, bill.Currency)
	case daysLeft == 1:
		severity = core.SeverityWarning
		title = fmt.Sprintf("Bill due tomorrow: %s", bill.Name)
		message = fmt.Sprintf("Your bill for %s is due tomorrow. Amount: %s %s.",
			bill.Name, amount, bill.Currency)
	default:
		severity = core.SeverityInfo
		title = fmt.Sprintf("Upcoming bill: %s", bill.Name)
		message = fmt.Sprintf("Your bill for %s is due in %d days. Amount: %s %s.",
			bill.Name, daysLeft, amount, bill.Currency)
	}

	return core.Alert{
		UserID:     bill.UserID,
		Type:       core.AlertBillDue,
		Severity:   severity,
		Status:     core.StatusActive,
		Title:      title,
		Message:    message,
		Amount:     bill.Amount,
		EntityType: "bill",
		EntityID:   bill.ID,
	}
}

func (p *ReminderProcessor) publishReminder(ctx context.Context, bill core.Bill, daysLeft int, severity core.AlertSeverity) {
	if p.events == nil {
		return
	}
	msg := &amqp.BillReminderMessage{
		BillID:    bill.ID,
		UserID:    bill.UserID,
		Name:      bill.Name,
		Amount:    bill.Amount.String(),
		Currency:  string(bill.Currency),
		DueDate:   bill.DueDate.String(),
		DaysLeft:  daysLeft,
		Severity:  string(severity),
		Timestamp: time.Now(),
	}
	if err := p.events.PublishBillReminder(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish bill.reminder event",
			"bill_id", bill.ID, "error", err)
	}
}
