package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// The aggregator recomputes every figure from the full record lists on
// each call. Nothing here caches or increments: drift between a cached
// aggregate and the authoritative records is not possible.

// TotalBalance sums all account balances. An empty list sums to zero.
func TotalBalance(accounts []Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// InMonth reports whether the transaction timestamp falls in the same
// calendar month and year as the reference time. Both sides are read as
// calendar dates in their own location: a transaction stamped midnight
// on the 1st belongs to the new month even when its UTC instant is
// still in the old one.
func InMonth(ts, ref time.Time) bool {
	ty, tm, _ := ts.Date()
	ry, rm, _ := ref.Date()
	return ty == ry && tm == rm
}

// MonthlyTransactions filters to the reference month. Transactions in a
// failed or cancelled state never count toward totals.
func MonthlyTransactions(transactions []Transaction, ref time.Time) []Transaction {
	var out []Transaction
	for _, t := range transactions {
		if t.Status == TransactionFailed || t.Status == TransactionCancelled {
			continue
		}
		if InMonth(t.Date, ref) {
			out = append(out, t)
		}
	}
	return out
}

// MonthTotals partitions a transaction list by type and sums each side.
type MonthTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// Totals sums income and expenses over the given transactions and
// derives the net cash flow (income minus expenses, possibly negative).
func Totals(transactions []Transaction) MonthTotals {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range transactions {
		switch t.Type {
		case TransactionIncome:
			income = income.Add(t.Amount)
		case TransactionExpense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return MonthTotals{
		Income:   income,
		Expenses: expenses,
		Net:      income.Sub(expenses),
	}
}

// ExpensesByCategory totals expense transactions per category, sorted
// by amount descending. Uncategorized spend is grouped under "other".
func ExpensesByCategory(transactions []Transaction) []CategoryAmount {
	byName := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.Type != TransactionExpense {
			continue
		}
		name := t.Category
		if name == "" {
			name = "other"
		}
		byName[name] = byName[name].Add(t.Amount)
	}
	out := make([]CategoryAmount, 0, len(byName))
	for name, amount := range byName {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AggregateDashboard derives the full money overview for the reference
// month. Pure function of its inputs: fixed inputs and a fixed "now"
// always produce the same summary.
func AggregateDashboard(accounts []Account, transactions []Transaction, now time.Time) DashboardSummary {
	monthly := MonthlyTransactions(transactions, now)
	totals := Totals(monthly)

	largestIncome := decimal.Zero
	largestExpense := decimal.Zero
	for _, t := range monthly {
		switch t.Type {
		case TransactionIncome:
			if t.Amount.Cmp(largestIncome) > 0 {
				largestIncome = t.Amount
			}
		case TransactionExpense:
			if t.Amount.Cmp(largestExpense) > 0 {
				largestExpense = t.Amount
			}
		}
	}

	year, month, _ := now.Date()
	return DashboardSummary{
		Year:            year,
		Month:           int(month),
		TotalBalance:    TotalBalance(accounts),
		MonthlyIncome:   totals.Income,
		MonthlyExpenses: totals.Expenses,
		NetCashFlow:     totals.Net,
		SavingsRate:     Percent(totals.Net, totals.Income),
		LargestIncome:   largestIncome,
		LargestExpense:  largestExpense,
		ByCategory:      ExpensesByCategory(monthly),
		AccountCount:    len(accounts),
		MonthlyCount:    len(monthly),
	}
}
