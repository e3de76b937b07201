package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BillStatus is the display bucket a bill lands in. A bill is always in
// exactly one bucket: paid dominates everything, then overdue, then due
// today, then upcoming.
type BillStatus string

const (
	BillPaid     BillStatus = "paid"
	BillOverdue  BillStatus = "overdue"
	BillDueToday BillStatus = "due_today"
	BillUpcoming BillStatus = "upcoming"
)

// DefaultDueSoonDays is the horizon for the due-soon listing when the
// caller does not supply one.
const DefaultDueSoonDays = 7

// Classify places a bill in its display bucket relative to today.
func Classify(b Bill, today Date) BillStatus {
	if b.IsPaid {
		return BillPaid
	}
	switch {
	case b.DueDate.Before(today.Time):
		return BillOverdue
	case b.DueDate.Equal(today.Time):
		return BillDueToday
	}
	return BillUpcoming
}

// DaysUntilDue returns whole days from today to the due date, negative
// once the due date has passed.
func DaysUntilDue(b Bill, today Date) int {
	return today.DaysUntil(b.DueDate)
}

// IsOverdue reports an unpaid bill whose due date is strictly in the
// past. A paid bill is never overdue, whatever its due date.
func IsOverdue(b Bill, today Date) bool {
	return Classify(b, today) == BillOverdue
}

// DueSoon filters to unpaid bills due within the horizon, today
// included. Overdue bills are not "due soon"; they have their own
// bucket.
func DueSoon(bills []Bill, today Date, horizonDays int) []Bill {
	if horizonDays <= 0 {
		horizonDays = DefaultDueSoonDays
	}
	var out []Bill
	for _, b := range bills {
		if b.IsPaid {
			continue
		}
		days := DaysUntilDue(b, today)
		if days >= 0 && days <= horizonDays {
			out = append(out, b)
		}
	}
	return out
}

// BillPartition holds one classified bucket per bill.
type BillPartition struct {
	Paid     []Bill `json:"paid"`
	Overdue  []Bill `json:"overdue"`
	DueToday []Bill `json:"due_today"`
	Upcoming []Bill `json:"upcoming"`
}

// PartitionBills splits a bill list into its four exclusive buckets.
func PartitionBills(bills []Bill, today Date) BillPartition {
	var p BillPartition
	for _, b := range bills {
		switch Classify(b, today) {
		case BillPaid:
			p.Paid = append(p.Paid, b)
		case BillOverdue:
			p.Overdue = append(p.Overdue, b)
		case BillDueToday:
			p.DueToday = append(p.DueToday, b)
		default:
			p.Upcoming = append(p.Upcoming, b)
		}
	}
	return p
}

// ReminderProgress returns how much of the reminder window has elapsed,
// as a percentage in [0,100]. Zero while the window has not opened
// (more than ReminderDays before due), 100 once the due date arrives or
// passes, linear in between. Paid bills always report 100.
func ReminderProgress(b Bill, today Date) float64 {
	if b.IsPaid {
		return 100
	}
	window := b.ReminderDays
	if window <= 0 {
		window = DefaultReminderDays
	}
	days := DaysUntilDue(b, today)
	if days <= 0 {
		return 100
	}
	if days >= window {
		return 0
	}
	return float64(window-days) / float64(window) * 100
}

// ShouldRemind reports whether today falls inside the bill's reminder
// window. Paid bills never need reminding.
func ShouldRemind(b Bill, today Date) bool {
	if b.IsPaid {
		return false
	}
	window := b.ReminderDays
	if window <= 0 {
		window = DefaultReminderDays
	}
	return !today.Before(b.DueDate.AddDays(-window).Time)
}

// SummarizeBills aggregates the bills that fall due in the given month.
func SummarizeBills(bills []Bill, month, year int) BillMonthSummary {
	s := BillMonthSummary{Month: month, Year: year}
	byCat := make(map[string]decimal.Decimal)
	for _, b := range bills {
		if b.DueDate.Year() != year || int(b.DueDate.Month()) != month {
			continue
		}
		s.TotalBills++
		s.TotalAmount = s.TotalAmount.Add(b.Amount)
		if b.IsPaid {
			s.PaidBills++
		} else {
			s.UnpaidBills++
		}
		cat := b.Category
		if cat == "" {
			cat = "other"
		}
		byCat[cat] = byCat[cat].Add(b.Amount)
	}
	for name, amount := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if c := s.ByCategory[i].Amount.Cmp(s.ByCategory[j].Amount); c != 0 {
			return c > 0
		}
		return s.ByCategory[i].Name < s.ByCategory[j].Name
	})
	return s
}
