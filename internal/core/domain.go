package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCredit   AccountType = "credit"

	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
	AccountClosed   AccountStatus = "closed"

	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"

	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"

	FrequencyMonthly    BillFrequency = "monthly"
	FrequencyQuarterly  BillFrequency = "quarterly"
	FrequencyBiannually BillFrequency = "biannually"
	FrequencyAnnually   BillFrequency = "annually"
	FrequencyOneTime    BillFrequency = "one_time"
)

// DefaultReminderDays is the reminder window applied when a bill does not
// carry its own.
const DefaultReminderDays = 3

type (
	AccountType       string
	AccountStatus     string
	TransactionType   string
	TransactionStatus string
	BillFrequency     string
	Currency          string

	Account struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"-"`
		Number      string          `json:"account_number"`
		Name        string          `json:"name"`
		Type        AccountType     `json:"account_type"`
		Balance     decimal.Decimal `json:"balance"`
		Currency    Currency        `json:"currency"`
		Status      AccountStatus   `json:"status"`
		CreditLimit decimal.Decimal `json:"credit_limit"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	Transaction struct {
		ID          int64             `json:"id"`
		UserID      int64             `json:"-"`
		AccountID   int64             `json:"account_id"`
		Amount      decimal.Decimal   `json:"amount"`
		Type        TransactionType   `json:"transaction_type"`
		Status      TransactionStatus `json:"status"`
		Description string            `json:"description"`
		Merchant    string            `json:"merchant,omitempty"`
		Category    string            `json:"category,omitempty"`
		Reference   string            `json:"reference_number"`
		Date        time.Time         `json:"date"`
	}

	Bill struct {
		ID           int64           `json:"id"`
		UserID       int64           `json:"-"`
		Name         string          `json:"name"`
		Amount       decimal.Decimal `json:"amount"`
		Currency     Currency        `json:"currency"`
		AmountUSD    decimal.Decimal `json:"amount_usd"`
		DueDate      Date            `json:"due_date"`
		IsPaid       bool            `json:"is_paid"`
		PaidDate     Date            `json:"paid_date"`
		Frequency    BillFrequency   `json:"frequency"`
		ReminderDays int             `json:"reminder_days"`
		Category     string          `json:"category"`
	}

	Budget struct {
		ID       int64           `json:"id"`
		UserID   int64           `json:"-"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Month    int             `json:"month"`
		Year     int             `json:"year"`
	}

	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		FullName     string    `json:"full_name,omitempty"`
		Currency     Currency  `json:"currency"`
		Points       int       `json:"points"`
		Active       bool      `json:"is_active"`
		CreatedAt    time.Time `json:"created_at"`
	}
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrNotOwner         = errors.New("record belongs to another user")
	ErrDuplicate        = errors.New("record already exists")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
)

// SupportedCurrencies lists the ISO codes the converter knows about.
var SupportedCurrencies = []Currency{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "INR", "SGD"}

func (c Currency) Valid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

func (f BillFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyBiannually, FrequencyAnnually, FrequencyOneTime:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Type {
	case AccountChecking, AccountSavings, AccountCredit:
	default:
		return errors.New("invalid account type")
	}
	if !a.Currency.Valid() {
		return ErrInvalidCurrency
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return errors.New("invalid transaction type")
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return errors.New("empty description")
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if b.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !b.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if err := b.DueDate.Validate(); err != nil {
		return errors.New("invalid due date: " + err.Error())
	}
	if !b.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if b.ReminderDays < 0 {
		return errors.New("reminder days cannot be negative")
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if b.Month < 1 || b.Month > 12 {
		return errors.New("invalid month")
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("empty username")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	return nil
}
