package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"conti/internal/amqp"
	"conti/internal/config"
	"conti/internal/core"
	"conti/internal/ledger"
)

// How far back the generation sweep looks for trigger transactions.
const (
	largeTransactionLookback = 7 * 24 * time.Hour
	unusualSpendingLookback  = 30 * 24 * time.Hour
	incomeLookback           = 24 * time.Hour
	lowBalanceAlertLifetime  = 7 * 24 * time.Hour
)

// Minimum sample sizes before the unusual-spending rule fires at all.
const (
	unusualMinExpenses = 10
	unusualMinCategory = 5
)

// AlertService generates alerts from stored records and owns the alert
// cleanup sweep. Thresholds come from the rules file; every stored
// alert is also published to the event exchange.
type AlertService struct {
	alerts       ledger.AlertStore
	accounts     ledger.AccountStore
	transactions ledger.TransactionStore
	budgets      ledger.BudgetStore
	rules        config.AlertRules
	events       EventPublisher
}

func NewAlertService(
	alerts ledger.AlertStore,
	accounts ledger.AccountStore,
	transactions ledger.TransactionStore,
	budgets ledger.BudgetStore,
	rules config.AlertRules,
	events EventPublisher,
) *AlertService {
	return &AlertService{
		alerts:       alerts,
		accounts:     accounts,
		transactions: transactions,
		budgets:      budgets,
		rules:        rules,
		events:       events,
	}
}

// Generate runs every rule for one user and returns the alerts it
// raised. Rules are independent: a failure in one is logged and the
// rest still run. Only the upfront data fetch can fail the call.
func (s *AlertService) Generate(ctx context.Context, userID int64, now time.Time) ([]core.Alert, error) {
	accounts, err := s.accounts.AccountsByUser(ctx, userID)
	if err != nil {
		return nil, &core.RequestError{Op: "fetch accounts", Err: err}
	}
	transactions, err := s.transactions.TransactionsByUser(ctx, userID, ledger.TransactionFilter{
		From: now.Add(-unusualSpendingLookback),
	})
	if err != nil {
		return nil, &core.RequestError{Op: "fetch transactions", Err: err}
	}
	budgets, err := s.budgets.BudgetsByUser(ctx, userID, int(now.Month()), now.Year())
	if err != nil {
		return nil, &core.RequestError{Op: "fetch budgets", Err: err}
	}

	var generated []core.Alert
	generated = append(generated, s.checkLargeTransactions(ctx, userID, transactions, now)...)
	generated = append(generated, s.checkLowBalances(ctx, userID, accounts, now)...)
	generated = append(generated, s.checkBudgets(ctx, userID, budgets, transactions, now)...)
	generated = append(generated, s.checkUnusualSpending(ctx, userID, transactions, now)...)
	generated = append(generated, s.checkCashFlow(ctx, userID, transactions, now)...)
	generated = append(generated, s.checkIncomeReceived(ctx, userID, transactions, now)...)

	if len(generated) > 0 {
		slog.InfoContext(ctx, "Alerts generated",
			"user_id", userID, "count", len(generated))
	}
	return generated, nil
}

// Raise stores an externally-built alert, applying the same dedup
// window and event publish as the generation rules. The second return
// is false when the alert was suppressed as a duplicate.
func (s *AlertService) Raise(ctx context.Context, alert core.Alert, now time.Time) (core.Alert, bool, error) {
	if s.suppressed(ctx, alert, now) {
		return core.Alert{}, false, nil
	}
	created, err := s.store(ctx, alert, now)
	if err != nil {
		return core.Alert{}, false, err
	}
	return created, true, nil
}

// CleanupOld dismisses active alerts older than the configured age and
// returns how many were swept.
func (s *AlertService) CleanupOld(ctx context.Context, userID int64, now time.Time) (int, error) {
	alerts, err := s.alerts.AlertsByUser(ctx, userID)
	if err != nil {
		return 0, &core.RequestError{Op: "fetch alerts", Err: err}
	}

	cutoff := now.Add(-s.rules.CleanupAge())
	swept := 0
	for _, a := range alerts {
		if a.Status != core.StatusActive || !a.CreatedAt.Before(cutoff) {
			continue
		}
		a.Dismiss()
		if err := s.alerts.UpdateAlert(ctx, a); err != nil {
			slog.ErrorContext(ctx, "Failed to dismiss stale alert",
				"alert_id", a.ID, "error", err)
			continue
		}
		swept++
	}

	if swept > 0 {
		slog.InfoContext(ctx, "Stale alerts dismissed",
			"user_id", userID, "count", swept)
	}
	return swept, nil
}

// --- generation rules ---

func (s *AlertService) checkLargeTransactions(ctx context.Context, userID int64, transactions []core.Transaction, now time.Time) []core.Alert {
	threshold := decimal.NewFromFloat(s.rules.LargeTransactionThreshold)
	since := now.Add(-largeTransactionLookback)

	var out []core.Alert
	for _, t := range transactions {
		if t.Status != core.TransactionCompleted || t.Date.Before(since) {
			continue
		}
		amount := t.Amount.Abs()
		if amount.Cmp(threshold) < 0 {
			continue
		}

		kind := "expense"
		if t.Type == core.TransactionIncome {
			kind = "income"
		}
		alert := core.Alert{
			UserID:     userID,
			Type:       core.AlertLargeTransaction,
			Severity:   core.SeverityWarning,
			Status:     core.StatusActive,
			Title:      fmt.Sprintf("Large %s detected", kind),
			Message:    fmt.Sprintf("A large %s of $%s was recorded for %q.", kind, amount.StringFixed(2), t.Description),
			Amount:     amount,
			Threshold:  threshold,
			EntityType: "transaction",
			EntityID:   t.ID,
		}
		if created, ok := s.raiseDeduped(ctx, alert, now); ok {
			out = append(out, created)
		}
	}
	return out
}

func (s *AlertService) checkLowBalances(ctx context.Context, userID int64, accounts []core.Account, now time.Time) []core.Alert {
	threshold := decimal.NewFromFloat(s.rules.LowBalancePercent)

	var out []core.Alert
	for _, a := range accounts {
		// Credit accounts are judged by utilization, not balance floor.
		if a.Type == core.AccountCredit || a.Status != core.AccountActive {
			continue
		}
		if a.CreditLimit.Sign() <= 0 {
			continue
		}
		pct := core.Percent(a.Balance, a.CreditLimit)
		if pct.Cmp(threshold) > 0 {
			continue
		}

		alert := core.Alert{
			UserID:     userID,
			Type:       core.AlertLowBalance,
			Severity:   core.SeverityWarning,
			Status:     core.StatusActive,
			Title:      fmt.Sprintf("Low balance in %s", a.Name),
			Message:    fmt.Sprintf("Your %s balance is $%s, %s%% of the account limit.", a.Name, a.Balance.StringFixed(2), pct.StringFixed(1)),
			Amount:     a.Balance,
			Threshold:  threshold,
			EntityType: "account",
			EntityID:   a.ID,
			ExpiresAt:  now.Add(lowBalanceAlertLifetime),
		}
		if created, ok := s.raiseDeduped(ctx, alert, now); ok {
			out = append(out, created)
		}
	}
	return out
}

func (s *AlertService) checkBudgets(ctx context.Context, userID int64, budgets []core.Budget, transactions []core.Transaction, now time.Time) []core.Alert {
	monthly := core.MonthlyTransactions(transactions, now)
	spentBy := make(map[string]decimal.Decimal)
	for _, t := range monthly {
		if t.Type != core.TransactionExpense || t.Status != core.TransactionCompleted {
			continue
		}
		key := categoryKey(t.Category)
		spentBy[key] = spentBy[key].Add(t.Amount.Abs())
	}

	var out []core.Alert
	for _, b := range budgets {
		spent := spentBy[categoryKey(b.Category)]
		utilization := core.Percent(spent, b.Amount)

		var alert core.Alert
		switch {
		case utilization.Cmp(decimal.NewFromInt(100)) >= 0:
			alert = core.Alert{
				Type:     core.AlertBudgetExceeded,
				Severity: core.SeverityCritical,
				Title:    fmt.Sprintf("Budget exceeded: %s", b.Category),
				Message: fmt.Sprintf("You have exceeded your %s budget by $%s.",
					b.Category, spent.Sub(b.Amount).StringFixed(2)),
			}
		case utilization.Cmp(decimal.NewFromFloat(s.rules.BudgetWarnPercent)) >= 0:
			alert = core.Alert{
				Type:     core.AlertBudgetNearingLimit,
				Severity: core.SeverityWarning,
				Title:    fmt.Sprintf("Budget nearing limit: %s", b.Category),
				Message: fmt.Sprintf("Your %s budget is %s%% used. Only $%s remaining.",
					b.Category, utilization.StringFixed(1), b.Amount.Sub(spent).StringFixed(2)),
			}
		default:
			continue
		}

		alert.UserID = userID
		alert.Status = core.StatusActive
		alert.Amount = spent
		alert.Threshold = b.Amount
		alert.EntityType = "budget"
		alert.EntityID = b.ID
		if created, ok := s.raiseDeduped(ctx, alert, now); ok {
			out = append(out, created)
		}
	}
	return out
}

// checkUnusualSpending flags expenses far above their category mean.
// Scoring happens in float64; only reporting touches the decimals.
func (s *AlertService) checkUnusualSpending(ctx context.Context, userID int64, transactions []core.Transaction, now time.Time) []core.Alert {
	since := now.Add(-unusualSpendingLookback)
	var expenses []core.Transaction
	for _, t := range transactions {
		if t.Type == core.TransactionExpense && t.Status == core.TransactionCompleted && !t.Date.Before(since) {
			expenses = append(expenses, t)
		}
	}
	if len(expenses) < unusualMinExpenses {
		return nil
	}

	byCategory := make(map[string][]float64)
	for _, t := range expenses {
		key := categoryKey(t.Category)
		byCategory[key] = append(byCategory[key], t.Amount.Abs().InexactFloat64())
	}

	var out []core.Alert
	for _, t := range expenses {
		key := categoryKey(t.Category)
		amounts := byCategory[key]
		if len(amounts) < unusualMinCategory {
			continue
		}
		mean, stdev := meanStdev(amounts)
		if stdev == 0 {
			continue
		}
		amount := t.Amount.Abs().InexactFloat64()
		if amount <= mean+s.rules.UnusualSpendingSigma*stdev {
			continue
		}

		category := strings.TrimSpace(t.Category)
		if category == "" {
			category = "other"
		}
		message := fmt.Sprintf("An unusual expense of $%s was detected in %s, well above your average of $%.2f.",
			t.Amount.Abs().StringFixed(2), category, mean)
		alert := core.Alert{
			UserID:     userID,
			Type:       core.AlertUnusualSpending,
			Severity:   core.SeverityWarning,
			Status:     core.StatusActive,
			Title:      fmt.Sprintf("Unusual spending in %s", category),
			Message:    message,
			Amount:     t.Amount.Abs(),
			Threshold:  decimal.NewFromFloat(mean).Round(2),
			EntityType: "transaction",
			EntityID:   t.ID,
		}
		if created, ok := s.raiseDeduped(ctx, alert, now); ok {
			out = append(out, created)
		}
	}
	return out
}

func (s *AlertService) checkCashFlow(ctx context.Context, userID int64, transactions []core.Transaction, now time.Time) []core.Alert {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range transactions {
		if t.Status != core.TransactionCompleted || t.Date.Before(monthStart) || t.Date.After(now) {
			continue
		}
		switch t.Type {
		case core.TransactionIncome:
			income = income.Add(t.Amount.Abs())
		case core.TransactionExpense:
			expenses = expenses.Add(t.Amount.Abs())
		}
	}
	if income.Sign() <= 0 || expenses.Sign() <= 0 {
		return nil
	}

	var out []core.Alert

	warnLine := income.Mul(decimal.NewFromFloat(s.rules.CashFlowWarnRatio))
	if expenses.Cmp(warnLine) > 0 {
		message := fmt.Sprintf("Your spending ($%s) is well above your income ($%s) this month.",
			expenses.StringFixed(2), income.StringFixed(2))
		alert := core.Alert{
			UserID:     userID,
			Type:       core.AlertCashFlowWarning,
			Severity:   core.SeverityWarning,
			Status:     core.StatusActive,
			Title:      "High spending this month",
			Message:    message,
			Amount:     expenses,
			Threshold:  income,
			EntityType: "spending",
		}
		if created, ok := s.raiseDeduped(ctx, alert, now); ok {
			out = append(out, created)
		}
	}

	// Project month-end spending from the daily average so far.
	daysPassed := now.Sub(monthStart).Hours()/24 + 1
	projected := expenses.Div(decimal.NewFromFloat(daysPassed)).Mul(decimal.NewFromInt(30))
	criticalLine := income.Mul(decimal.NewFromFloat(s.rules.CashFlowCriticalRatio))
	if projected.Cmp(criticalLine) > 0 {
		message := fmt.Sprintf("At the current pace you are projected to spend $%s this month, far beyond your income.",
			projected.StringFixed(2))
		alert := core.Alert{
			UserID:     userID,
			Type:       core.AlertCashFlowWarning,
			Severity:   core.SeverityCritical,
			Status:     core.StatusActive,
			Title:      "Projected overspending",
			Message:    message,
			Amount:     projected.Round(2),
			Threshold:  income,
			EntityType: "projection",
		}
		if created, ok := s.raiseDeduped(ctx, alert, now); ok {
			out = append(out, created)
		}
	}
	return out
}

func (s *AlertService) checkIncomeReceived(ctx context.Context, userID int64, transactions []core.Transaction, now time.Time) []core.Alert {
	since := now.Add(-incomeLookback)

	var out []core.Alert
	for _, t := range transactions {
		if t.Type != core.TransactionIncome || t.Status != core.TransactionCompleted || t.Date.Before(since) {
			continue
		}
		alert := core.Alert{
			UserID:     userID,
			Type:       core.AlertIncomeReceived,
			Severity:   core.SeverityInfo,
			Status:     core.StatusActive,
			Title:      "Income received",
			Message:    fmt.Sprintf("Income of $%s received from %q.", t.Amount.StringFixed(2), t.Description),
			Amount:     t.Amount,
			EntityType: "transaction",
			EntityID:   t.ID,
		}
		if created, ok := s.raiseDeduped(ctx, alert, now); ok {
			out = append(out, created)
		}
	}
	return out
}

// --- plumbing ---

// raiseDeduped stores the alert unless an equal one is inside the dedup
// window. Store failures are logged and reported as "not raised" so a
// sweep never aborts halfway.
func (s *AlertService) raiseDeduped(ctx context.Context, alert core.Alert, now time.Time) (core.Alert, bool) {
	if s.suppressed(ctx, alert, now) {
		return core.Alert{}, false
	}
	created, err := s.store(ctx, alert, now)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to store alert",
			"alert_type", alert.Type,
			"entity_type", alert.EntityType,
			"entity_id", alert.EntityID,
			"error", err)
		return core.Alert{}, false
	}
	return created, true
}

func (s *AlertService) suppressed(ctx context.Context, alert core.Alert, now time.Time) bool {
	last, err := s.alerts.LatestAlert(ctx, alert.UserID, alert.Type, alert.EntityType, alert.EntityID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Alert dedup lookup failed",
				"alert_type", alert.Type, "error", err)
		}
		return false
	}
	return now.Sub(last.CreatedAt) < s.rules.DedupWindow()
}

func (s *AlertService) store(ctx context.Context, alert core.Alert, now time.Time) (core.Alert, error) {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	created, err := s.alerts.CreateAlert(ctx, alert)
	if err != nil {
		return core.Alert{}, fmt.Errorf("create alert: %w", err)
	}
	s.publish(ctx, created)
	return created, nil
}

func (s *AlertService) publish(ctx context.Context, alert core.Alert) {
	if s.events == nil {
		return
	}
	event := amqp.NewAlertEvent(alert.ID, alert.UserID,
		string(alert.Type), string(alert.Severity), alert.Title, alert.Message)
	if err := s.events.PublishAlertCreated(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish alert.created event",
			"alert_id", alert.ID, "error", err)
		// The alert is stored either way; delivery is best effort.
	}
}

func meanStdev(values []float64) (mean, stdev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)-1))
}
