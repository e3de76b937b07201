package http

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"conti/internal/core"
	"conti/internal/ledger"
	"conti/internal/log"
)

type accountRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Type        string          `json:"account_type" validate:"required,oneof=checking savings credit"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency" validate:"omitempty,currency"`
	Status      string          `json:"status" validate:"omitempty,oneof=active inactive closed"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

type transactionRequest struct {
	AccountID   int64           `json:"account_id" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"transaction_type" validate:"required,oneof=income expense"`
	Status      string          `json:"status" validate:"omitempty,oneof=pending completed failed cancelled"`
	Description string          `json:"description" validate:"required,max=200"`
	Merchant    string          `json:"merchant" validate:"omitempty,max=100"`
	Category    string          `json:"category" validate:"omitempty,max=50"`
	Date        string          `json:"date" validate:"omitempty,dateonly"`
}

type budgetRequest struct {
	Category string          `json:"category" validate:"required,max=50"`
	Amount   decimal.Decimal `json:"amount"`
	Month    int             `json:"month" validate:"omitempty,gte=1,lte=12"`
	Year     int             `json:"year" validate:"omitempty,gte=1970,lte=9999"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Accounts.AccountsByUser(r.Context(), s.session(r).UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Account listing failed", "error", err)
		WriteError(w, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	NewJSONResponse().Body(map[string]any{"accounts": accounts}).Write(w)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	account := core.Account{
		UserID:      session.UserID,
		Number:      newAccountNumber(),
		Name:        req.Name,
		Type:        core.AccountType(req.Type),
		Balance:     core.RoundAmount(req.Balance),
		Currency:    core.Currency(req.Currency),
		Status:      core.AccountStatus(req.Status),
		CreditLimit: core.RoundAmount(req.CreditLimit),
	}
	if account.Currency == "" {
		account.Currency = "USD"
	}
	if account.Status == "" {
		account.Status = core.AccountActive
	}
	if err := account.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	created, err := s.deps.Accounts.CreateAccount(r.Context(), account)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Account creation failed",
			log.FieldUserID, session.UserID, "error", err)
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	account, err := s.ownedAccount(r, session.UserID, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req accountRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	// The number is assigned at creation and never changes.
	account.Name = req.Name
	account.Type = core.AccountType(req.Type)
	account.Balance = core.RoundAmount(req.Balance)
	account.CreditLimit = core.RoundAmount(req.CreditLimit)
	if req.Currency != "" {
		account.Currency = core.Currency(req.Currency)
	}
	if req.Status != "" {
		account.Status = core.AccountStatus(req.Status)
	}
	if err := account.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	if err := s.deps.Accounts.UpdateAccount(r.Context(), account); err != nil {
		s.logger.ErrorContext(r.Context(), "Account update failed",
			log.FieldAccountID, id, "error", err)
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Body(account).Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	if _, err := s.ownedAccount(r, session.UserID, id); err != nil {
		WriteError(w, err)
		return
	}

	if err := s.deps.Accounts.DeleteAccount(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Account deletion failed",
			log.FieldAccountID, id, "error", err)
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := ledger.TransactionFilter{Limit: queryInt(r, "limit", 0)}

	from, err := queryDate(r, "from")
	if err != nil {
		WriteError(w, err)
		return
	}
	filter.From = from

	to, err := queryDate(r, "to")
	if err != nil {
		WriteError(w, err)
		return
	}
	if !to.IsZero() {
		// The whole end day is included.
		filter.To = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	transactions, err := s.deps.Transactions.TransactionsByUser(r.Context(), s.session(r).UserID, filter)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction listing failed", "error", err)
		WriteError(w, err)
		return
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	NewJSONResponse().Body(map[string]any{"transactions": transactions}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	if _, err := s.ownedAccount(r, session.UserID, req.AccountID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			WriteError(w, core.NewValidationError("account_id", "unknown account"))
			return
		}
		WriteError(w, err)
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := parseDateOnly(req.Date)
		if err != nil {
			WriteError(w, core.NewValidationError("date", "must be a date in YYYY-MM-DD format"))
			return
		}
		date = parsed.Time
	}

	transaction := core.Transaction{
		UserID:      session.UserID,
		AccountID:   req.AccountID,
		Amount:      core.RoundAmount(req.Amount),
		Type:        core.TransactionType(req.Type),
		Status:      core.TransactionStatus(req.Status),
		Description: req.Description,
		Merchant:    req.Merchant,
		Category:    req.Category,
		Reference:   uuid.NewString(),
		Date:        date,
	}
	if transaction.Status == "" {
		transaction.Status = core.TransactionCompleted
	}
	if err := transaction.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	created, err := s.deps.Transactions.CreateTransaction(r.Context(), transaction)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction creation failed",
			log.FieldUserID, session.UserID, "error", err)
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, year := queryMonthYear(r)
	now := time.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}

	budgets, err := s.deps.Budgets.BudgetsByUser(r.Context(), s.session(r).UserID, month, year)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget listing failed", "error", err)
		WriteError(w, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	NewJSONResponse().Body(map[string]any{
		"budgets": budgets,
		"month":   month,
		"year":    year,
	}).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	now := time.Now()
	budget := core.Budget{
		UserID:   s.session(r).UserID,
		Category: req.Category,
		Amount:   core.RoundAmount(req.Amount),
		Month:    req.Month,
		Year:     req.Year,
	}
	if budget.Month == 0 {
		budget.Month = int(now.Month())
	}
	if budget.Year == 0 {
		budget.Year = now.Year()
	}
	if err := budget.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	created, err := s.deps.Budgets.CreateBudget(r.Context(), budget)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget creation failed",
			log.FieldUserID, budget.UserID, "error", err)
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(budget.UserID, now)
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

// ownedAccount loads an account and checks it belongs to the user.
func (s *Server) ownedAccount(r *http.Request, userID, accountID int64) (core.Account, error) {
	account, err := s.deps.Accounts.AccountByID(r.Context(), accountID)
	if err != nil {
		return core.Account{}, err
	}
	if account.UserID != userID {
		return core.Account{}, core.ErrNotOwner
	}
	return account, nil
}

// newAccountNumber returns a random 10-digit number, zero padded.
func newAccountNumber() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%010d", time.Now().UnixNano()%10_000_000_000)
	}
	return fmt.Sprintf("%010d", binary.BigEndian.Uint64(b[:])%10_000_000_000)
}
