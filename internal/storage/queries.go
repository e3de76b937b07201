package storage

import (
	"context"
	"database/sql"
)

const createUser = `
INSERT INTO users (username, email, password_hash, full_name, currency, points, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, username, email, password_hash, full_name, currency, points, is_active, created_at
`

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Currency     string
	Points       int64
	IsActive     bool
	CreatedAt    string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.FullName,
		arg.Currency,
		arg.Points,
		arg.IsActive,
		arg.CreatedAt,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.FullName,
		&i.Currency,
		&i.Points,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getUser = `
SELECT id, username, email, password_hash, full_name, currency, points, is_active, created_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.FullName,
		&i.Currency,
		&i.Points,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByUsername = `
SELECT id, username, email, password_hash, full_name, currency, points, is_active, created_at
FROM users
WHERE username = ?
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.FullName,
		&i.Currency,
		&i.Points,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByEmail = `
SELECT id, username, email, password_hash, full_name, currency, points, is_active, created_at
FROM users
WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.FullName,
		&i.Currency,
		&i.Points,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const updateUserPoints = `
UPDATE users SET points = ? WHERE id = ?
`

type UpdateUserPointsParams struct {
	Points int64
	ID     int64
}

func (q *Queries) UpdateUserPoints(ctx context.Context, arg UpdateUserPointsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserPoints, arg.Points, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listActiveUsers = `
SELECT id, username, email, password_hash, full_name, currency, points, is_active, created_at
FROM users
WHERE is_active = 1
ORDER BY id
`

func (q *Queries) ListActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listActiveUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.Email,
			&i.PasswordHash,
			&i.FullName,
			&i.Currency,
			&i.Points,
			&i.IsActive,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createAccount = `
INSERT INTO accounts (user_id, account_number, name, account_type, balance, currency, status, credit_limit, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, account_number, name, account_type, balance, currency, status, credit_limit, created_at
`

type CreateAccountParams struct {
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

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.UserID,
		arg.AccountNumber,
		arg.Name,
		arg.AccountType,
		arg.Balance,
		arg.Currency,
		arg.Status,
		arg.CreditLimit,
		arg.CreatedAt,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AccountNumber,
		&i.Name,
		&i.AccountType,
		&i.Balance,
		&i.Currency,
		&i.Status,
		&i.CreditLimit,
		&i.CreatedAt,
	)
	return i, err
}

const getAccount = `
SELECT id, user_id, account_number, name, account_type, balance, currency, status, credit_limit, created_at
FROM accounts
WHERE id = ?
`

func (q *Queries) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AccountNumber,
		&i.Name,
		&i.AccountType,
		&i.Balance,
		&i.Currency,
		&i.Status,
		&i.CreditLimit,
		&i.CreatedAt,
	)
	return i, err
}

const listAccountsByUser = `
SELECT id, user_id, account_number, name, account_type, balance, currency, status, credit_limit, created_at
FROM accounts
WHERE user_id = ?
ORDER BY id
`

func (q *Queries) ListAccountsByUser(ctx context.Context, userID int64) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccountsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AccountNumber,
			&i.Name,
			&i.AccountType,
			&i.Balance,
			&i.Currency,
			&i.Status,
			&i.CreditLimit,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateAccount = `
UPDATE accounts
SET name = ?, account_type = ?, balance = ?, currency = ?, status = ?, credit_limit = ?
WHERE id = ?
`

type UpdateAccountParams struct {
	Name        string
	AccountType string
	Balance     string
	Currency    string
	Status      string
	CreditLimit string
	ID          int64
}

func (q *Queries) UpdateAccount(ctx context.Context, arg UpdateAccountParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAccount,
		arg.Name,
		arg.AccountType,
		arg.Balance,
		arg.Currency,
		arg.Status,
		arg.CreditLimit,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAccount = `
DELETE FROM accounts WHERE id = ?
`

func (q *Queries) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createTransaction = `
INSERT INTO transactions (user_id, account_id, amount, transaction_type, status, description, merchant, category, reference_number, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, account_id, amount, transaction_type, status, description, merchant, category, reference_number, date, created_at
`

type CreateTransactionParams struct {
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

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.AccountID,
		arg.Amount,
		arg.TransactionType,
		arg.Status,
		arg.Description,
		arg.Merchant,
		arg.Category,
		arg.ReferenceNumber,
		arg.Date,
		arg.CreatedAt,
	)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AccountID,
		&i.Amount,
		&i.TransactionType,
		&i.Status,
		&i.Description,
		&i.Merchant,
		&i.Category,
		&i.ReferenceNumber,
		&i.Date,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactionsByUser = `
SELECT id, user_id, account_id, amount, transaction_type, status, description, merchant, category, reference_number, date, created_at
FROM transactions
WHERE user_id = ?1
  AND (?2 = '' OR date >= ?2)
  AND (?3 = '' OR date <= ?3)
ORDER BY date DESC, id DESC
LIMIT ?4
`

type ListTransactionsByUserParams struct {
	UserID   int64
	FromDate string
	ToDate   string
	Limit    int64
}

func (q *Queries) ListTransactionsByUser(ctx context.Context, arg ListTransactionsByUserParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByUser,
		arg.UserID,
		arg.FromDate,
		arg.ToDate,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AccountID,
			&i.Amount,
			&i.TransactionType,
			&i.Status,
			&i.Description,
			&i.Merchant,
			&i.Category,
			&i.ReferenceNumber,
			&i.Date,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createBudget = `
INSERT INTO budgets (user_id, category, amount, month, year)
VALUES (?, ?, ?, ?, ?)
RETURNING id, user_id, category, amount, month, year
`

type CreateBudgetParams struct {
	UserID   int64
	Category string
	Amount   string
	Month    int64
	Year     int64
}

func (q *Queries) CreateBudget(ctx context.Context, arg CreateBudgetParams) (Budget, error) {
	row := q.db.QueryRowContext(ctx, createBudget,
		arg.UserID,
		arg.Category,
		arg.Amount,
		arg.Month,
		arg.Year,
	)
	var i Budget
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.Amount,
		&i.Month,
		&i.Year,
	)
	return i, err
}

const listBudgetsByUser = `
SELECT id, user_id, category, amount, month, year
FROM budgets
WHERE user_id = ?1
  AND (?2 <= 0 OR month = ?2)
  AND (?3 <= 0 OR year = ?3)
ORDER BY id
`

type ListBudgetsByUserParams struct {
	UserID int64
	Month  int64
	Year   int64
}

func (q *Queries) ListBudgetsByUser(ctx context.Context, arg ListBudgetsByUserParams) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetsByUser, arg.UserID, arg.Month, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var i Budget
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Category,
			&i.Amount,
			&i.Month,
			&i.Year,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createBill = `
INSERT INTO bills (user_id, name, amount, currency, amount_usd, due_date, is_paid, paid_date, frequency, reminder_days, category)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, name, amount, currency, amount_usd, due_date, is_paid, paid_date, frequency, reminder_days, category
`

type CreateBillParams struct {
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

func (q *Queries) CreateBill(ctx context.Context, arg CreateBillParams) (Bill, error) {
	row := q.db.QueryRowContext(ctx, createBill,
		arg.UserID,
		arg.Name,
		arg.Amount,
		arg.Currency,
		arg.AmountUsd,
		arg.DueDate,
		arg.IsPaid,
		arg.PaidDate,
		arg.Frequency,
		arg.ReminderDays,
		arg.Category,
	)
	var i Bill
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Amount,
		&i.Currency,
		&i.AmountUsd,
		&i.DueDate,
		&i.IsPaid,
		&i.PaidDate,
		&i.Frequency,
		&i.ReminderDays,
		&i.Category,
	)
	return i, err
}

const getBill = `
SELECT id, user_id, name, amount, currency, amount_usd, due_date, is_paid, paid_date, frequency, reminder_days, category
FROM bills
WHERE id = ?
`

func (q *Queries) GetBill(ctx context.Context, id int64) (Bill, error) {
	row := q.db.QueryRowContext(ctx, getBill, id)
	var i Bill
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Amount,
		&i.Currency,
		&i.AmountUsd,
		&i.DueDate,
		&i.IsPaid,
		&i.PaidDate,
		&i.Frequency,
		&i.ReminderDays,
		&i.Category,
	)
	return i, err
}

const listBillsByUser = `
SELECT id, user_id, name, amount, currency, amount_usd, due_date, is_paid, paid_date, frequency, reminder_days, category
FROM bills
WHERE user_id = ?
ORDER BY due_date, id
`

func (q *Queries) ListBillsByUser(ctx context.Context, userID int64) ([]Bill, error) {
	rows, err := q.db.QueryContext(ctx, listBillsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBills(rows)
}

const listAllBills = `
SELECT id, user_id, name, amount, currency, amount_usd, due_date, is_paid, paid_date, frequency, reminder_days, category
FROM bills
ORDER BY due_date, id
`

func (q *Queries) ListAllBills(ctx context.Context) ([]Bill, error) {
	rows, err := q.db.QueryContext(ctx, listAllBills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBills(rows)
}

func scanBills(rows *sql.Rows) ([]Bill, error) {
	var items []Bill
	for rows.Next() {
		var i Bill
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Amount,
			&i.Currency,
			&i.AmountUsd,
			&i.DueDate,
			&i.IsPaid,
			&i.PaidDate,
			&i.Frequency,
			&i.ReminderDays,
			&i.Category,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateBill = `
UPDATE bills
SET name = ?, amount = ?, currency = ?, amount_usd = ?, due_date = ?, is_paid = ?, paid_date = ?, frequency = ?, reminder_days = ?, category = ?
WHERE id = ?
`

type UpdateBillParams struct {
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
	ID           int64
}

func (q *Queries) UpdateBill(ctx context.Context, arg UpdateBillParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBill,
		arg.Name,
		arg.Amount,
		arg.Currency,
		arg.AmountUsd,
		arg.DueDate,
		arg.IsPaid,
		arg.PaidDate,
		arg.Frequency,
		arg.ReminderDays,
		arg.Category,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteBill = `
DELETE FROM bills WHERE id = ?
`

func (q *Queries) DeleteBill(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBill, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createReward = `
INSERT INTO rewards (user_id, bill_id, points, bill_amount, category, on_time, earned_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, bill_id, points, bill_amount, category, on_time, earned_at
`

type CreateRewardParams struct {
	UserID     int64
	BillID     sql.NullInt64
	Points     int64
	BillAmount string
	Category   string
	OnTime     bool
	EarnedAt   string
}

func (q *Queries) CreateReward(ctx context.Context, arg CreateRewardParams) (Reward, error) {
	row := q.db.QueryRowContext(ctx, createReward,
		arg.UserID,
		arg.BillID,
		arg.Points,
		arg.BillAmount,
		arg.Category,
		arg.OnTime,
		arg.EarnedAt,
	)
	var i Reward
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.BillID,
		&i.Points,
		&i.BillAmount,
		&i.Category,
		&i.OnTime,
		&i.EarnedAt,
	)
	return i, err
}

const listRewardsByUser = `
SELECT id, user_id, bill_id, points, bill_amount, category, on_time, earned_at
FROM rewards
WHERE user_id = ?
ORDER BY earned_at DESC, id DESC
LIMIT ?
`

type ListRewardsByUserParams struct {
	UserID int64
	Limit  int64
}

func (q *Queries) ListRewardsByUser(ctx context.Context, arg ListRewardsByUserParams) ([]Reward, error) {
	rows, err := q.db.QueryContext(ctx, listRewardsByUser, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Reward
	for rows.Next() {
		var i Reward
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.BillID,
			&i.Points,
			&i.BillAmount,
			&i.Category,
			&i.OnTime,
			&i.EarnedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRewardByBill = `
SELECT id, user_id, bill_id, points, bill_amount, category, on_time, earned_at
FROM rewards
WHERE user_id = ? AND bill_id = ?
ORDER BY earned_at DESC, id DESC
LIMIT 1
`

type GetRewardByBillParams struct {
	UserID int64
	BillID sql.NullInt64
}

func (q *Queries) GetRewardByBill(ctx context.Context, arg GetRewardByBillParams) (Reward, error) {
	row := q.db.QueryRowContext(ctx, getRewardByBill, arg.UserID, arg.BillID)
	var i Reward
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.BillID,
		&i.Points,
		&i.BillAmount,
		&i.Category,
		&i.OnTime,
		&i.EarnedAt,
	)
	return i, err
}

const createAlert = `
INSERT INTO alerts (user_id, alert_type, severity, status, is_read, title, message, amount, threshold, entity_type, entity_id, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, alert_type, severity, status, is_read, title, message, amount, threshold, entity_type, entity_id, created_at, expires_at
`

type CreateAlertParams struct {
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

func (q *Queries) CreateAlert(ctx context.Context, arg CreateAlertParams) (Alert, error) {
	row := q.db.QueryRowContext(ctx, createAlert,
		arg.UserID,
		arg.AlertType,
		arg.Severity,
		arg.Status,
		arg.IsRead,
		arg.Title,
		arg.Message,
		arg.Amount,
		arg.Threshold,
		arg.EntityType,
		arg.EntityID,
		arg.CreatedAt,
		arg.ExpiresAt,
	)
	var i Alert
	err := scanAlertRow(row, &i)
	return i, err
}

const getAlert = `
SELECT id, user_id, alert_type, severity, status, is_read, title, message, amount, threshold, entity_type, entity_id, created_at, expires_at
FROM alerts
WHERE id = ?
`

func (q *Queries) GetAlert(ctx context.Context, id int64) (Alert, error) {
	row := q.db.QueryRowContext(ctx, getAlert, id)
	var i Alert
	err := scanAlertRow(row, &i)
	return i, err
}

const listAlertsByUser = `
SELECT id, user_id, alert_type, severity, status, is_read, title, message, amount, threshold, entity_type, entity_id, created_at, expires_at
FROM alerts
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListAlertsByUser(ctx context.Context, userID int64) ([]Alert, error) {
	rows, err := q.db.QueryContext(ctx, listAlertsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Alert
	for rows.Next() {
		var i Alert
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AlertType,
			&i.Severity,
			&i.Status,
			&i.IsRead,
			&i.Title,
			&i.Message,
			&i.Amount,
			&i.Threshold,
			&i.EntityType,
			&i.EntityID,
			&i.CreatedAt,
			&i.ExpiresAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateAlert = `
UPDATE alerts
SET severity = ?, status = ?, is_read = ?, title = ?, message = ?, amount = ?, threshold = ?, expires_at = ?
WHERE id = ?
`

type UpdateAlertParams struct {
	Severity  string
	Status    string
	IsRead    bool
	Title     string
	Message   string
	Amount    sql.NullString
	Threshold sql.NullString
	ExpiresAt sql.NullString
	ID        int64
}

func (q *Queries) UpdateAlert(ctx context.Context, arg UpdateAlertParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAlert,
		arg.Severity,
		arg.Status,
		arg.IsRead,
		arg.Title,
		arg.Message,
		arg.Amount,
		arg.Threshold,
		arg.ExpiresAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAlert = `
DELETE FROM alerts WHERE id = ?
`

func (q *Queries) DeleteAlert(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAlert, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markAllAlertsRead = `
UPDATE alerts SET is_read = 1 WHERE user_id = ? AND is_read = 0
`

func (q *Queries) MarkAllAlertsRead(ctx context.Context, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markAllAlertsRead, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getLatestAlertForEntity = `
SELECT id, user_id, alert_type, severity, status, is_read, title, message, amount, threshold, entity_type, entity_id, created_at, expires_at
FROM alerts
WHERE user_id = ? AND alert_type = ? AND entity_type = ? AND entity_id = ?
ORDER BY created_at DESC, id DESC
LIMIT 1
`

type GetLatestAlertForEntityParams struct {
	UserID     int64
	AlertType  string
	EntityType string
	EntityID   int64
}

func (q *Queries) GetLatestAlertForEntity(ctx context.Context, arg GetLatestAlertForEntityParams) (Alert, error) {
	row := q.db.QueryRowContext(ctx, getLatestAlertForEntity,
		arg.UserID,
		arg.AlertType,
		arg.EntityType,
		arg.EntityID,
	)
	var i Alert
	err := scanAlertRow(row, &i)
	return i, err
}

func scanAlertRow(row *sql.Row, i *Alert) error {
	return row.Scan(
		&i.ID,
		&i.UserID,
		&i.AlertType,
		&i.Severity,
		&i.Status,
		&i.IsRead,
		&i.Title,
		&i.Message,
		&i.Amount,
		&i.Threshold,
		&i.EntityType,
		&i.EntityID,
		&i.CreatedAt,
		&i.ExpiresAt,
	)
}
