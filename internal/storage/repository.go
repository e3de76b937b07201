package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"conti/internal/core"
	"conti/internal/ledger"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width UTC strings so SQL range scans
// compare chronologically. Calendar dates use the bare date layout.
const (
	timeLayout = "2006-01-02 15:04:05"
	dateLayout = "2006-01-02"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := Migrate(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	slog.Debug("Database schema ready", "path", dbPath, "version", version)

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if _, err := r.queries.GetUserByUsername(ctx, u.Username); err == nil {
		return core.User{}, core.ErrDuplicate
	} else if !errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("check username: %w", err)
	}
	if _, err := r.queries.GetUserByEmail(ctx, u.Email); err == nil {
		return core.User{}, core.ErrDuplicate
	} else if !errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("check email: %w", err)
	}

	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Currency:     string(u.Currency),
		Points:       int64(u.Points),
		IsActive:     u.Active,
		CreatedAt:    formatTime(u.CreatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrDuplicate
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite", "id", row.ID, "username", row.Username)
	return coreUser(row)
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		return core.User{}, mapNotFound(err, "get user")
	}
	return coreUser(row)
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		return core.User{}, mapNotFound(err, "get user by username")
	}
	return coreUser(row)
}

func (r *SQLiteRepository) SetUserPoints(ctx context.Context, id int64, points int) error {
	affected, err := r.queries.UpdateUserPoints(ctx, UpdateUserPointsParams{
		Points: int64(points),
		ID:     id,
	})
	if err != nil {
		return fmt.Errorf("update user points: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ActiveUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.queries.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	out := make([]core.User, 0, len(rows))
	for _, row := range rows {
		u, err := coreUser(row)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// --- accounts ---

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	row, err := r.queries.CreateAccount(ctx, CreateAccountParams{
		UserID:        a.UserID,
		AccountNumber: a.Number,
		Name:          a.Name,
		AccountType:   string(a.Type),
		Balance:       a.Balance.String(),
		Currency:      string(a.Currency),
		Status:        string(a.Status),
		CreditLimit:   a.CreditLimit.String(),
		CreatedAt:     formatTime(a.CreatedAt),
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"name", row.Name,
		"type", row.AccountType)

	return coreAccount(row)
}

func (r *SQLiteRepository) AccountByID(ctx context.Context, id int64) (core.Account, error) {
	row, err := r.queries.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, mapNotFound(err, "get account")
	}
	return coreAccount(row)
}

func (r *SQLiteRepository) AccountsByUser(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var accounts []core.Account
	for _, row := range rows {
		a, err := coreAccount(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	affected, err := r.queries.UpdateAccount(ctx, UpdateAccountParams{
		Name:        a.Name,
		AccountType: string(a.Type),
		Balance:     a.Balance.String(),
		Currency:    string(a.Currency),
		Status:      string(a.Status),
		CreditLimit: a.CreditLimit.String(),
		ID:          a.ID,
	})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id int64) error {
	affected, err := r.queries.DeleteAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:          t.UserID,
		AccountID:       t.AccountID,
		Amount:          t.Amount.String(),
		TransactionType: string(t.Type),
		Status:          string(t.Status),
		Description:     t.Description,
		Merchant:        t.Merchant,
		Category:        t.Category,
		ReferenceNumber: t.Reference,
		Date:            formatTime(t.Date),
		CreatedAt:       formatTime(time.Now()),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"amount", row.Amount,
		"type", row.TransactionType)

	return coreTransaction(row)
}

func (r *SQLiteRepository) TransactionsByUser(ctx context.Context, userID int64, f ledger.TransactionFilter) ([]core.Transaction, error) {
	params := ListTransactionsByUserParams{
		UserID: userID,
		Limit:  -1, // no limit
	}
	if !f.From.IsZero() {
		params.FromDate = formatTime(f.From)
	}
	if !f.To.IsZero() {
		params.ToDate = formatTime(f.To)
	}
	if f.Limit > 0 {
		params.Limit = int64(f.Limit)
	}

	rows, err := r.queries.ListTransactionsByUser(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	var transactions []core.Transaction
	for _, row := range rows {
		t, err := coreTransaction(row)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// --- budgets ---

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	row, err := r.queries.CreateBudget(ctx, CreateBudgetParams{
		UserID:   b.UserID,
		Category: b.Category,
		Amount:   b.Amount.String(),
		Month:    int64(b.Month),
		Year:     int64(b.Year),
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	return coreBudget(row)
}

func (r *SQLiteRepository) BudgetsByUser(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgetsByUser(ctx, ListBudgetsByUserParams{
		UserID: userID,
		Month:  int64(month),
		Year:   int64(year),
	})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	var budgets []core.Budget
	for _, row := range rows {
		b, err := coreBudget(row)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// --- bills ---

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}

	row, err := r.queries.CreateBill(ctx, CreateBillParams{
		UserID:       b.UserID,
		Name:         b.Name,
		Amount:       b.Amount.String(),
		Currency:     string(b.Currency),
		AmountUsd:    b.AmountUSD.String(),
		DueDate:      b.DueDate.Format(dateLayout),
		IsPaid:       b.IsPaid,
		PaidDate:     nullDate(b.PaidDate),
		Frequency:    string(b.Frequency),
		ReminderDays: int64(b.ReminderDays),
		Category:     b.Category,
	})
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"name", row.Name,
		"due_date", row.DueDate)

	return coreBill(row)
}

func (r *SQLiteRepository) BillByID(ctx context.Context, id int64) (core.Bill, error) {
	row, err := r.queries.GetBill(ctx, id)
	if err != nil {
		return core.Bill{}, mapNotFound(err, "get bill")
	}
	return coreBill(row)
}

func (r *SQLiteRepository) BillsByUser(ctx context.Context, userID int64) ([]core.Bill, error) {
	rows, err := r.queries.ListBillsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return coreBills(rows)
}

func (r *SQLiteRepository) AllBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.queries.ListAllBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all bills: %w", err)
	}
	return coreBills(rows)
}

func (r *SQLiteRepository) UpdateBill(ctx context.Context, b core.Bill) error {
	affected, err := r.queries.UpdateBill(ctx, UpdateBillParams{
		Name:         b.Name,
		Amount:       b.Amount.String(),
		Currency:     string(b.Currency),
		AmountUsd:    b.AmountUSD.String(),
		DueDate:      b.DueDate.Format(dateLayout),
		IsPaid:       b.IsPaid,
		PaidDate:     nullDate(b.PaidDate),
		Frequency:    string(b.Frequency),
		ReminderDays: int64(b.ReminderDays),
		Category:     b.Category,
		ID:           b.ID,
	})
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, id int64) error {
	affected, err := r.queries.DeleteBill(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- rewards ---

func (r *SQLiteRepository) CreateReward(ctx context.Context, e core.RewardEntry) (core.RewardEntry, error) {
	billID := sql.NullInt64{}
	if e.BillID != 0 {
		billID = sql.NullInt64{Int64: e.BillID, Valid: true}
	}

	row, err := r.queries.CreateReward(ctx, CreateRewardParams{
		UserID:     e.UserID,
		BillID:     billID,
		Points:     int64(e.Points),
		BillAmount: e.BillAmount.String(),
		Category:   e.Category,
		OnTime:     e.OnTime,
		EarnedAt:   formatTime(e.EarnedAt),
	})
	if err != nil {
		return core.RewardEntry{}, fmt.Errorf("create reward: %w", err)
	}

	return coreReward(row)
}

func (r *SQLiteRepository) RewardsByUser(ctx context.Context, userID int64, limit int) ([]core.RewardEntry, error) {
	sqlLimit := int64(-1)
	if limit > 0 {
		sqlLimit = int64(limit)
	}

	rows, err := r.queries.ListRewardsByUser(ctx, ListRewardsByUserParams{
		UserID: userID,
		Limit:  sqlLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}

	var rewards []core.RewardEntry
	for _, row := range rows {
		e, err := coreReward(row)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, e)
	}
	return rewards, nil
}

func (r *SQLiteRepository) RewardForBill(ctx context.Context, userID, billID int64) (core.RewardEntry, error) {
	row, err := r.queries.GetRewardByBill(ctx, GetRewardByBillParams{
		UserID: userID,
		BillID: sql.NullInt64{Int64: billID, Valid: true},
	})
	if err != nil {
		return core.RewardEntry{}, mapNotFound(err, "get reward for bill")
	}
	return coreReward(row)
}

// --- alerts ---

func (r *SQLiteRepository) CreateAlert(ctx context.Context, a core.Alert) (core.Alert, error) {
	row, err := r.queries.CreateAlert(ctx, CreateAlertParams{
		UserID:     a.UserID,
		AlertType:  string(a.Type),
		Severity:   string(a.Severity),
		Status:     string(a.Status),
		IsRead:     a.IsRead,
		Title:      a.Title,
		Message:    a.Message,
		Amount:     nullDecimal(a.Amount),
		Threshold:  nullDecimal(a.Threshold),
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		CreatedAt:  formatTime(a.CreatedAt),
		ExpiresAt:  nullTime(a.ExpiresAt),
	})
	if err != nil {
		return core.Alert{}, fmt.Errorf("create alert: %w", err)
	}

	return coreAlert(row)
}

func (r *SQLiteRepository) AlertByID(ctx context.Context, id int64) (core.Alert, error) {
	row, err := r.queries.GetAlert(ctx, id)
	if err != nil {
		return core.Alert{}, mapNotFound(err, "get alert")
	}
	return coreAlert(row)
}

func (r *SQLiteRepository) AlertsByUser(ctx context.Context, userID int64) ([]core.Alert, error) {
	rows, err := r.queries.ListAlertsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	var alerts []core.Alert
	for _, row := range rows {
		a, err := coreAlert(row)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

func (r *SQLiteRepository) UpdateAlert(ctx context.Context, a core.Alert) error {
	affected, err := r.queries.UpdateAlert(ctx, UpdateAlertParams{
		Severity:  string(a.Severity),
		Status:    string(a.Status),
		IsRead:    a.IsRead,
		Title:     a.Title,
		Message:   a.Message,
		Amount:    nullDecimal(a.Amount),
		Threshold: nullDecimal(a.Threshold),
		ExpiresAt: nullTime(a.ExpiresAt),
		ID:        a.ID,
	})
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAlert(ctx context.Context, id int64) error {
	affected, err := r.queries.DeleteAlert(ctx, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	affected, err := r.queries.MarkAllAlertsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark alerts read: %w", err)
	}
	return int(affected), nil
}

func (r *SQLiteRepository) LatestAlert(ctx context.Context, userID int64, typ core.AlertType, entityType string, entityID int64) (core.Alert, error) {
	row, err := r.queries.GetLatestAlertForEntity(ctx, GetLatestAlertForEntityParams{
		UserID:     userID,
		AlertType:  string(typ),
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		return core.Alert{}, mapNotFound(err, "get latest alert")
	}
	return coreAlert(row)
}

// --- row conversion ---

func coreUser(row User) (core.User, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("parse user created_at: %w", err)
	}
	return core.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		FullName:     row.FullName,
		Currency:     core.Currency(row.Currency),
		Points:       int(row.Points),
		Active:       row.IsActive,
		CreatedAt:    createdAt,
	}, nil
}

func coreAccount(row Account) (core.Account, error) {
	balance, err := decimal.NewFromString(row.Balance)
	if err != nil {
		return core.Account{}, fmt.Errorf("parse account balance: %w", err)
	}
	limit, err := decimal.NewFromString(row.CreditLimit)
	if err != nil {
		return core.Account{}, fmt.Errorf("parse account credit_limit: %w", err)
	}
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.Account{}, fmt.Errorf("parse account created_at: %w", err)
	}
	return core.Account{
		ID:          row.ID,
		UserID:      row.UserID,
		Number:      row.AccountNumber,
		Name:        row.Name,
		Type:        core.AccountType(row.AccountType),
		Balance:     balance,
		Currency:    core.Currency(row.Currency),
		Status:      core.AccountStatus(row.Status),
		CreditLimit: limit,
		CreatedAt:   createdAt,
	}, nil
}

func coreTransaction(row Transaction) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction amount: %w", err)
	}
	date, err := parseTime(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date: %w", err)
	}
	return core.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		AccountID:   row.AccountID,
		Amount:      amount,
		Type:        core.TransactionType(row.TransactionType),
		Status:      core.TransactionStatus(row.Status),
		Description: row.Description,
		Merchant:    row.Merchant,
		Category:    row.Category,
		Reference:   row.ReferenceNumber,
		Date:        date,
	}, nil
}

func coreBudget(row Budget) (core.Budget, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse budget amount: %w", err)
	}
	return core.Budget{
		ID:       row.ID,
		UserID:   row.UserID,
		Category: row.Category,
		Amount:   amount,
		Month:    int(row.Month),
		Year:     int(row.Year),
	}, nil
}

func coreBill(row Bill) (core.Bill, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Bill{}, fmt.Errorf("parse bill amount: %w", err)
	}
	amountUSD, err := decimal.NewFromString(row.AmountUsd)
	if err != nil {
		return core.Bill{}, fmt.Errorf("parse bill amount_usd: %w", err)
	}
	dueDate, err := core.ParseDate(row.DueDate)
	if err != nil {
		return core.Bill{}, fmt.Errorf("parse bill due_date: %w", err)
	}
	var paidDate core.Date
	if row.PaidDate.Valid {
		paidDate, err = core.ParseDate(row.PaidDate.String)
		if err != nil {
			return core.Bill{}, fmt.Errorf("parse bill paid_date: %w", err)
		}
	}
	return core.Bill{
		ID:           row.ID,
		UserID:       row.UserID,
		Name:         row.Name,
		Amount:       amount,
		Currency:     core.Currency(row.Currency),
		AmountUSD:    amountUSD,
		DueDate:      dueDate,
		IsPaid:       row.IsPaid,
		PaidDate:     paidDate,
		Frequency:    core.BillFrequency(row.Frequency),
		ReminderDays: int(row.ReminderDays),
		Category:     row.Category,
	}, nil
}

func coreBills(rows []Bill) ([]core.Bill, error) {
	var bills []core.Bill
	for _, row := range rows {
		b, err := coreBill(row)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, nil
}

func coreReward(row Reward) (core.RewardEntry, error) {
	amount, err := decimal.NewFromString(row.BillAmount)
	if err != nil {
		return core.RewardEntry{}, fmt.Errorf("parse reward bill_amount: %w", err)
	}
	earnedAt, err := parseTime(row.EarnedAt)
	if err != nil {
		return core.RewardEntry{}, fmt.Errorf("parse reward earned_at: %w", err)
	}
	return core.RewardEntry{
		ID:         row.ID,
		UserID:     row.UserID,
		BillID:     row.BillID.Int64,
		Points:     int(row.Points),
		BillAmount: amount,
		Category:   row.Category,
		OnTime:     row.OnTime,
		EarnedAt:   earnedAt,
	}, nil
}

func coreAlert(row Alert) (core.Alert, error) {
	a := core.Alert{
		ID:         row.ID,
		UserID:     row.UserID,
		Type:       core.AlertType(row.AlertType),
		Severity:   core.AlertSeverity(row.Severity),
		Status:     core.AlertStatus(row.Status),
		IsRead:     row.IsRead,
		Title:      row.Title,
		Message:    row.Message,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
	}

	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.Alert{}, fmt.Errorf("parse alert created_at: %w", err)
	}
	a.CreatedAt = createdAt

	if row.Amount.Valid {
		amount, err := decimal.NewFromString(row.Amount.String)
		if err != nil {
			return core.Alert{}, fmt.Errorf("parse alert amount: %w", err)
		}
		a.Amount = amount
	}
	if row.Threshold.Valid {
		threshold, err := decimal.NewFromString(row.Threshold.String)
		if err != nil {
			return core.Alert{}, fmt.Errorf("parse alert threshold: %w", err)
		}
		a.Threshold = threshold
	}
	if row.ExpiresAt.Valid {
		expiresAt, err := parseTime(row.ExpiresAt.String)
		if err != nil {
			return core.Alert{}, fmt.Errorf("parse alert expires_at: %w", err)
		}
		a.ExpiresAt = expiresAt
	}

	return a, nil
}

// --- value helpers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(dateLayout), Valid: true}
}

func nullDecimal(d decimal.Decimal) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func mapNotFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
