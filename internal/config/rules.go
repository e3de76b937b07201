package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// AlertRules tunes the alert generation thresholds. Operators override the
// defaults with a YAML file; zero values fall back to the default.
type AlertRules struct {
	// Transactions at or above this amount (USD) raise a large-transaction alert.
	LargeTransactionThreshold float64 `yaml:"large_transaction_threshold"`

	// Non-credit account balances at or below this percentage of the account
	// limit raise a low-balance alert. Accounts without a limit are skipped.
	LowBalancePercent float64 `yaml:"low_balance_percent"`

	// Budget usage at or above this percentage raises a warning. Usage at or
	// above 100% always raises a critical alert.
	BudgetWarnPercent float64 `yaml:"budget_warn_percent"`

	// Monthly expenses exceeding income by this ratio raise a cash-flow warning.
	CashFlowWarnRatio float64 `yaml:"cash_flow_warn_ratio"`

	// Projected month-end expenses exceeding income by this ratio escalate the
	// cash-flow alert to critical.
	CashFlowCriticalRatio float64 `yaml:"cash_flow_critical_ratio"`

	// Category spending this many standard deviations above the historical
	// mean raises an unusual-spending alert.
	UnusualSpendingSigma float64 `yaml:"unusual_spending_sigma"`

	// An alert is suppressed when an equal alert for the same entity was
	// raised within this many hours.
	DedupWindowHours int `yaml:"dedup_window_hours"`

	// Active alerts older than this many days are dismissed by the
	// cleanup sweep.
	CleanupAgeDays int `yaml:"cleanup_age_days"`
}

func DefaultAlertRules() AlertRules {
	return AlertRules{
		LargeTransactionThreshold: 1000,
		LowBalancePercent:         20,
		BudgetWarnPercent:         90,
		CashFlowWarnRatio:         1.2,
		CashFlowCriticalRatio:     1.5,
		UnusualSpendingSigma:      2.5,
		DedupWindowHours:          24,
		CleanupAgeDays:            30,
	}
}

// LoadAlertRules reads the rules file at path. An empty path returns the
// defaults unchanged.
func LoadAlertRules(path string) (AlertRules, error) {
	rules := DefaultAlertRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read alert rules file: %w", err)
	}

	var fromFile AlertRules
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return rules, fmt.Errorf("failed to parse alert rules file: %w", err)
	}

	rules.merge(fromFile)
	if err := rules.validate(); err != nil {
		return DefaultAlertRules(), err
	}
	return rules, nil
}

func (r *AlertRules) merge(other AlertRules) {
	if other.LargeTransactionThreshold != 0 {
		r.LargeTransactionThreshold = other.LargeTransactionThreshold
	}
	if other.LowBalancePercent != 0 {
		r.LowBalancePercent = other.LowBalancePercent
	}
	if other.BudgetWarnPercent != 0 {
		r.BudgetWarnPercent = other.BudgetWarnPercent
	}
	if other.CashFlowWarnRatio != 0 {
		r.CashFlowWarnRatio = other.CashFlowWarnRatio
	}
	if other.CashFlowCriticalRatio != 0 {
		r.CashFlowCriticalRatio = other.CashFlowCriticalRatio
	}
	if other.UnusualSpendingSigma != 0 {
		r.UnusualSpendingSigma = other.UnusualSpendingSigma
	}
	if other.DedupWindowHours != 0 {
		r.DedupWindowHours = other.DedupWindowHours
	}
	if other.CleanupAgeDays != 0 {
		r.CleanupAgeDays = other.CleanupAgeDays
	}
}

func (r AlertRules) validate() error {
	if r.LargeTransactionThreshold < 0 {
		return fmt.Errorf("large_transaction_threshold cannot be negative: %v", r.LargeTransactionThreshold)
	}
	if r.LowBalancePercent < 0 || r.LowBalancePercent > 100 {
		return fmt.Errorf("low_balance_percent must be between 0 and 100: %v", r.LowBalancePercent)
	}
	if r.BudgetWarnPercent < 0 || r.BudgetWarnPercent > 100 {
		return fmt.Errorf("budget_warn_percent must be between 0 and 100: %v", r.BudgetWarnPercent)
	}
	if r.CashFlowWarnRatio < 1 {
		return fmt.Errorf("cash_flow_warn_ratio must be at least 1: %v", r.CashFlowWarnRatio)
	}
	if r.CashFlowCriticalRatio < r.CashFlowWarnRatio {
		return fmt.Errorf("cash_flow_critical_ratio cannot be below cash_flow_warn_ratio: %v", r.CashFlowCriticalRatio)
	}
	if r.UnusualSpendingSigma <= 0 {
		return fmt.Errorf("unusual_spending_sigma must be positive: %v", r.UnusualSpendingSigma)
	}
	if r.DedupWindowHours < 0 {
		return fmt.Errorf("dedup_window_hours cannot be negative: %d", r.DedupWindowHours)
	}
	if r.CleanupAgeDays < 1 {
		return fmt.Errorf("cleanup_age_days must be at least 1: %d", r.CleanupAgeDays)
	}
	return nil
}

func (r AlertRules) DedupWindow() time.Duration {
	return time.Duration(r.DedupWindowHours) * time.Hour
}

func (r AlertRules) CleanupAge() time.Duration {
	return time.Duration(r.CleanupAgeDays) * 24 * time.Hour
}
