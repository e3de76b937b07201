package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/currency"
	"conti/internal/ledger"
)

// EventPublisher is the slice of the AMQP client the services publish
// through. A nil publisher disables events without disabling the
// operation itself.
type EventPublisher interface {
	PublishAlertCreated(ctx context.Context, event *amqp.AlertEvent) error
	PublishBillReminder(ctx context.Context, msg *amqp.BillReminderMessage) error
	PublishBillPaid(ctx context.Context, msg *amqp.BillPaidMessage) error
}

// BillService owns bill CRUD, payment, and the reward grant a payment
// triggers.
type BillService struct {
	bills     ledger.BillStore
	users     ledger.UserStore
	rewardSvc *RewardService
	converter *currency.Converter
	events    EventPublisher
}

func NewBillService(
	bills ledger.BillStore,
	users ledger.UserStore,
	rewards *RewardService,
	converter *currency.Converter,
	events EventPublisher,
) *BillService {
	return &BillService{
		bills:     bills,
		users:     users,
		rewardSvc: rewards,
		converter: converter,
		events:    events,
	}
}

// Create validates and stores a new bill. The USD amount is always
// recomputed server-side; clients never supply it. New bills start
// unpaid whatever the input says.
func (s *BillService) Create(ctx context.Context, userID int64, bill core.Bill) (core.Bill, error) {
	bill.ID = 0
	bill.UserID = userID
	bill.IsPaid = false
	bill.PaidDate = core.Date{}
	if bill.Currency == "" {
		bill.Currency = "USD"
	}
	if bill.Frequency == "" {
		bill.Frequency = core.FrequencyMonthly
	}
	if bill.ReminderDays == 0 {
		bill.ReminderDays = core.DefaultReminderDays
	}
	if err := bill.Validate(); err != nil {
		return core.Bill{}, err
	}

	usd, err := s.converter.ToUSD(ctx, bill.Amount, bill.Currency)
	if err != nil {
		return core.Bill{}, fmt.Errorf("convert amount to USD: %w", err)
	}
	bill.AmountUSD = usd

	created, err := s.bills.CreateBill(ctx, bill)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}

	slog.InfoContext(ctx, "Created bill",
		"bill_id", created.ID,
		"user_id", userID,
		"name", created.Name,
		"due_date", created.DueDate.String())

	return created, nil
}

// Get returns a bill after checking it belongs to the user.
func (s *BillService) Get(ctx context.Context, userID, billID int64) (core.Bill, error) {
	return s.owned(ctx, userID, billID)
}

// List returns the user's bills ordered by due date, optionally
// narrowed by category and paid state.
func (s *BillService) List(ctx context.Context, userID int64, category string, paid *bool) ([]core.Bill, error) {
	bills, err := s.bills.BillsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if category == "" && paid == nil {
		return bills, nil
	}
	var out []core.Bill
	for _, b := range bills {
		if category != "" && !strings.EqualFold(b.Category, category) {
			continue
		}
		if paid != nil && b.IsPaid != *paid {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Update replaces a bill's descriptive fields. Paid state is not
// touchable here; it moves only through Pay and the recurrence advance.
func (s *BillService) Update(ctx context.Context, userID int64, bill core.Bill) (core.Bill, error) {
	existing, err := s.owned(ctx, userID, bill.ID)
	if err != nil {
		return core.Bill{}, err
	}

	existing.Name = bill.Name
	existing.Amount = bill.Amount
	existing.Currency = bill.Currency
	existing.DueDate = bill.DueDate
	existing.Frequency = bill.Frequency
	existing.ReminderDays = bill.ReminderDays
	existing.Category = bill.Category
	if err := existing.Validate(); err != nil {
		return core.Bill{}, err
	}

	usd, err := s.converter.ToUSD(ctx, existing.Amount, existing.Currency)
	if err != nil {
		return core.Bill{}, fmt.Errorf("convert amount to USD: %w", err)
	}
	existing.AmountUSD = usd

	if err := s.bills.UpdateBill(ctx, existing); err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}
	return existing, nil
}

// Delete removes a bill after the ownership check.
func (s *BillService) Delete(ctx context.Context, userID, billID int64) error {
	bill, err := s.owned(ctx, userID, billID)
	if err != nil {
		return err
	}
	if err := s.bills.DeleteBill(ctx, bill.ID); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	slog.InfoContext(ctx, "Deleted bill", "bill_id", bill.ID, "user_id", userID)
	return nil
}

// DueSoon lists unpaid bills due within the horizon, today included.
func (s *BillService) DueSoon(ctx context.Context, userID int64, days int, now time.Time) ([]core.Bill, error) {
	bills, err := s.bills.BillsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return core.DueSoon(bills, core.DateOf(now), days), nil
}

// MonthSummary aggregates the bills falling due in a month. A zero
// month or year defaults to the current one.
func (s *BillService) MonthSummary(ctx context.Context, userID int64, month, year int, now time.Time) (core.BillMonthSummary, error) {
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	bills, err := s.bills.BillsByUser(ctx, userID)
	if err != nil {
		return core.BillMonthSummary{}, fmt.Errorf("list bills: %w", err)
	}
	return core.SummarizeBills(bills, month, year), nil
}

// Pay marks a bill paid and grants payment points. Paying an
// already-paid bill is a no-op that returns the bill unchanged, so
// clients can retry freely.
func (s *BillService) Pay(ctx context.Context, userID, billID int64, now time.Time) (core.Bill, error) {
	bill, err := s.owned(ctx, userID, billID)
	if err != nil {
		return core.Bill{}, err
	}
	if bill.IsPaid {
		return bill, nil
	}

	today := core.DateOf(now)
	onTime := !core.IsOverdue(bill, today)

	bill.IsPaid = true
	bill.PaidDate = today
	if err := s.bills.UpdateBill(ctx, bill); err != nil {
		return core.Bill{}, fmt.Errorf("mark bill paid: %w", err)
	}

	points := 0
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load user for reward grant",
			"user_id", userID, "error", err)
	} else {
		entry, err := s.rewardSvc.AwardForPayment(ctx, user, bill, onTime, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to award payment points",
				"bill_id", bill.ID, "user_id", userID, "error", err)
			// Don't fail the request - the payment is recorded
		} else {
			points = entry.Points
		}
	}

	slog.InfoContext(ctx, "Bill paid",
		"bill_id", bill.ID,
		"user_id", userID,
		"on_time", onTime,
		"points", points)

	s.publishBillPaid(ctx, bill, points, onTime)
	return bill, nil
}

func (s *BillService) publishBillPaid(ctx context.Context, bill core.Bill, points int, onTime bool) {
	if s.events == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping bill.paid event")
		return
	}
	msg := &amqp.BillPaidMessage{
		BillID:    bill.ID,
		UserID:    bill.UserID,
		Name:      bill.Name,
		Amount:    bill.Amount.String(),
		Currency:  string(bill.Currency),
		Points:    points,
		OnTime:    onTime,
		Timestamp: time.Now(),
	}
	if next, ok := core.NextDueDate(bill); ok {
		msg.NextDueDate = next.String()
	}
	if err := s.events.PublishBillPaid(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish bill.paid event",
			"bill_id", bill.ID, "error", err)
		// Don't fail the request - the payment is recorded locally
	}
}

func (s *BillService) owned(ctx context.Context, userID, billID int64) (core.Bill, error) {
	bill, err := s.bills.BillByID(ctx, billID)
	if err != nil {
		return core.Bill{}, err
	}
	if bill.UserID != userID {
		return core.Bill{}, core.ErrNotOwner
	}
	return bill, nil
}
