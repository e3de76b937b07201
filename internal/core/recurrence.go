// This file implements the Strategy Pattern for bill recurrence. Each
// recurring frequency (monthly, quarterly, biannually, annually) has its
// own strategy that encapsulates the rule for advancing a due date by
// one billing cycle.

package core

import (
	"fmt"
	"time"
)

// RecurrenceStrategy is the strategy interface for computing the next
// billing cycle of a recurring bill.
type RecurrenceStrategy interface {
	// Next returns the due date of the cycle that follows the given one.
	Next(due Date) Date
}

// addMonthsClamped shifts a date by whole months, clamping the day to
// the last day of the target month (Jan 31 + 1 month = Feb 28/29).
// time.AddDate normalizes overflow instead, which would let a monthly
// bill drift into March.
func addMonthsClamped(d Date, months int) Date {
	first := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// MonthlyStrategy implements RecurrenceStrategy for monthly bills.
type MonthlyStrategy struct{}

// Next advances the due date by one calendar month.
func (MonthlyStrategy) Next(due Date) Date {
	return addMonthsClamped(due, 1)
}

// QuarterlyStrategy implements RecurrenceStrategy for quarterly bills.
type QuarterlyStrategy struct{}

// Next advances the due date by three calendar months.
func (QuarterlyStrategy) Next(due Date) Date {
	return addMonthsClamped(due, 3)
}

// BiannualStrategy implements RecurrenceStrategy for biannual bills.
type BiannualStrategy struct{}

// Next advances the due date by six calendar months.
func (BiannualStrategy) Next(due Date) Date {
	return addMonthsClamped(due, 6)
}

// AnnualStrategy implements RecurrenceStrategy for annual bills.
type AnnualStrategy struct{}

// Next advances the due date by one year (Feb 29 clamps to Feb 28).
func (AnnualStrategy) Next(due Date) Date {
	return addMonthsClamped(due, 12)
}

// recurrenceStrategies maps frequencies to their corresponding
// strategies. One-time bills are deliberately absent: they have no next
// cycle.
var recurrenceStrategies = map[BillFrequency]RecurrenceStrategy{
	FrequencyMonthly:    MonthlyStrategy{},
	FrequencyQuarterly:  QuarterlyStrategy{},
	FrequencyBiannually: BiannualStrategy{},
	FrequencyAnnually:   AnnualStrategy{},
}

// GetRecurrenceStrategy returns the strategy for a frequency.
// Returns an error for one_time and unknown frequencies.
func GetRecurrenceStrategy(frequency BillFrequency) (RecurrenceStrategy, error) {
	strategy, ok := recurrenceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("no recurrence strategy for frequency: %s", frequency)
	}
	return strategy, nil
}

// RegisterRecurrenceStrategy allows registering custom strategies for
// new frequency types.
func RegisterRecurrenceStrategy(frequency BillFrequency, strategy RecurrenceStrategy) {
	recurrenceStrategies[frequency] = strategy
}

// NextDueDate returns the due date of the bill's next cycle. The second
// return value is false when the bill does not recur.
func NextDueDate(b Bill) (Date, bool) {
	strategy, err := GetRecurrenceStrategy(b.Frequency)
	if err != nil {
		return Date{}, false
	}
	return strategy.Next(b.DueDate), true
}
