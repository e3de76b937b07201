package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardSummary is the money overview for a specific year+month.
type DashboardSummary struct {
	Year            int              `json:"year"`
	Month           int              `json:"month"` // 1-12
	TotalBalance    decimal.Decimal  `json:"total_balance"`
	MonthlyIncome   decimal.Decimal  `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal  `json:"monthly_expenses"`
	NetCashFlow     decimal.Decimal  `json:"net_cash_flow"`
	SavingsRate     decimal.Decimal  `json:"savings_rate"`
	LargestIncome   decimal.Decimal  `json:"largest_income"`
	LargestExpense  decimal.Decimal  `json:"largest_expense"`
	ByCategory      []CategoryAmount `json:"by_category"`
	AccountCount    int              `json:"account_count"`
	MonthlyCount    int              `json:"monthly_transaction_count"`
}

// BillMonthSummary aggregates a month's bills.
type BillMonthSummary struct {
	Month       int              `json:"month"`
	Year        int              `json:"year"`
	TotalBills  int              `json:"total_bills"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	PaidBills   int              `json:"paid_bills"`
	UnpaidBills int              `json:"unpaid_bills"`
	ByCategory  []CategoryAmount `json:"category_breakdown"`
}

// AlertStats counts alerts along the axes the dashboard charts.
type AlertStats struct {
	Total      int            `json:"total_alerts"`
	Unread     int            `json:"unread_count"`
	Active     int            `json:"active_count"`
	Resolved   int            `json:"resolved_count"`
	Dismissed  int            `json:"dismissed_count"`
	ByType     map[string]int `json:"by_type"`
	BySeverity map[string]int `json:"by_severity"`
	Today      int            `json:"today_count"`
	Last7Days  int            `json:"last_7_days_count"`
	Last30Days int            `json:"last_30_days_count"`
}
