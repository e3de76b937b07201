package ledger

import (
	"context"
	"time"

	"conti/internal/core"
)

// Ports for the record stores. Services depend on these interfaces;
// the SQLite adapter and the in-memory store implement them.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		UserByID(ctx context.Context, id int64) (core.User, error)
		UserByUsername(ctx context.Context, username string) (core.User, error)
		SetUserPoints(ctx context.Context, id int64, points int) error
		// ActiveUsers spans every active account; worker sweeps scan with it.
		ActiveUsers(ctx context.Context) ([]core.User, error)
	}

	AccountStore interface {
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		AccountByID(ctx context.Context, id int64) (core.Account, error)
		AccountsByUser(ctx context.Context, userID int64) ([]core.Account, error)
		UpdateAccount(ctx context.Context, a core.Account) error
		DeleteAccount(ctx context.Context, id int64) error
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		TransactionsByUser(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error)
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		BudgetsByUser(ctx context.Context, userID int64, month, year int) ([]core.Budget, error)
	}

	BillStore interface {
		CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
		BillByID(ctx context.Context, id int64) (core.Bill, error)
		BillsByUser(ctx context.Context, userID int64) ([]core.Bill, error)
		// AllBills spans every user; the reminder worker scans with it.
		AllBills(ctx context.Context) ([]core.Bill, error)
		UpdateBill(ctx context.Context, b core.Bill) error
		DeleteBill(ctx context.Context, id int64) error
	}

	RewardStore interface {
		CreateReward(ctx context.Context, e core.RewardEntry) (core.RewardEntry, error)
		RewardsByUser(ctx context.Context, userID int64, limit int) ([]core.RewardEntry, error)
		// RewardForBill reports the points already granted for a bill,
		// or core.ErrNotFound. Payment must never award twice.
		RewardForBill(ctx context.Context, userID, billID int64) (core.RewardEntry, error)
	}

	AlertStore interface {
		CreateAlert(ctx context.Context, a core.Alert) (core.Alert, error)
		AlertByID(ctx context.Context, id int64) (core.Alert, error)
		AlertsByUser(ctx context.Context, userID int64) ([]core.Alert, error)
		UpdateAlert(ctx context.Context, a core.Alert) error
		DeleteAlert(ctx context.Context, id int64) error
		MarkAllRead(ctx context.Context, userID int64) (int, error)
		// LatestAlert returns the newest alert of a type for an entity,
		// or core.ErrNotFound. Generation rules use it to dedup.
		LatestAlert(ctx context.Context, userID int64, typ core.AlertType, entityType string, entityID int64) (core.Alert, error)
	}
)

// TransactionFilter narrows a transaction listing. Zero value returns
// everything, newest first.
type TransactionFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Matches reports whether the transaction passes the date range.
func (f TransactionFilter) Matches(t core.Transaction) bool {
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}
