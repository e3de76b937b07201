package storage

import "database/sql"

// Row types mirror the table schemas. Decimal amounts travel as TEXT so
// no precision is lost, and timestamps travel as fixed-width UTC strings
// so lexicographic comparison matches chronological order.

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Currency     string
	Points       int64
	IsActive     bool
	CreatedAt    string
}

type Account struct {
	ID            int64
	UserID        int64
	AccountNumber string
	Name          string
	AccountType   string
	Balance       string
	Currency      string
	Status        string
	CreditLimit   string
	CreatedAt     string
}

type Transaction struct {
	ID              int64
	UserID          int64
	AccountID       int64
	Amount          string
	TransactionType string
	Status          string
	Description     string
	Merchant        string
	Category        string
	ReferenceNumber string
	Date            string
	CreatedAt       string
}

type Budget struct {
	ID       int64
	UserID   int64
	Category string
	Amount   string
	Month    int64
	Year     int64
}

type Bill struct {
	ID           int64
	UserID       int64
	Name         string
	Amount       string
	Currency     string
	AmountUsd    string
	DueDate      string
	IsPaid       bool
	PaidDate     sql.NullString
	Frequency    string
	ReminderDays int64
	Category     string
}

type Reward struct {
	ID         int64
	UserID     int64
	BillID     sql.NullInt64
	Points     int64
	BillAmount string
	Category   string
	OnTime     bool
	EarnedAt   string
}

type Alert struct {
	ID         int64
	UserID     int64
	AlertType  string
	Severity   string
	Status     string
	IsRead     bool
	Title      string
	Message    string
	Amount     sql.NullString
	Threshold  sql.NullString
	EntityType string
	EntityID   int64
	CreatedAt  string
	ExpiresAt  sql.NullString
}
