package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"conti/internal/cache"
	"conti/internal/core"
	"conti/internal/ledger"
)

const dashboardCacheSize = 256

// BudgetStatus pairs a month budget with the spending recorded against
// its category.
type BudgetStatus struct {
	Category    string          `json:"category"`
	Budget      decimal.Decimal `json:"budget_amount"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization decimal.Decimal `json:"utilization_percentage"`
}

// Dashboard is the full payload behind GET /dashboard.
type Dashboard struct {
	Summary     core.DashboardSummary `json:"summary"`
	Bills       core.BillPartition    `json:"bills"`
	Rewards     core.RewardOverview   `json:"rewards"`
	Budgets     []BudgetStatus        `json:"budgets"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// DashboardService assembles the overview. All source fetches run
// concurrently and the call is all-or-nothing: one failed fetch fails
// the whole summary rather than rendering a partial dashboard.
type DashboardService struct {
	accounts     ledger.AccountStore
	transactions ledger.TransactionStore
	bills        ledger.BillStore
	budgets      ledger.BudgetStore
	rewardSvc    *RewardService
	cache        *cache.LRUCache[Dashboard]
}

func NewDashboardService(
	accounts ledger.AccountStore,
	transactions ledger.TransactionStore,
	bills ledger.BillStore,
	budgets ledger.BudgetStore,
	rewards *RewardService,
	cacheTTL time.Duration,
) *DashboardService {
	return &DashboardService{
		accounts:     accounts,
		transactions: transactions,
		bills:        bills,
		budgets:      budgets,
		rewardSvc:    rewards,
		cache:        cache.NewLRUCache[Dashboard](dashboardCacheSize, cacheTTL),
	}
}

func dashboardKey(userID int64, now time.Time) string {
	return fmt.Sprintf("dashboard:%d:%s", userID, now.Format("2006-01"))
}

func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Summary returns the dashboard for the month containing now, from
// cache when fresh.
func (s *DashboardService) Summary(ctx context.Context, userID int64, now time.Time) (Dashboard, error) {
	key := dashboardKey(userID, now)
	if cached, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "Dashboard cache hit", "user_id", userID)
		return cached, nil
	}

	dash, err := s.build(ctx, userID, now)
	if err != nil {
		return Dashboard{}, err
	}
	s.cache.Set(key, dash)
	return dash, nil
}

// Invalidate drops the cached dashboard for a user-month. Mutating
// handlers call it so the next read is rebuilt.
func (s *DashboardService) Invalidate(userID int64, now time.Time) {
	s.cache.Delete(dashboardKey(userID, now))
}

// CleanExpired implements cache.Cleaner for the sweep manager.
func (s *DashboardService) CleanExpired() int {
	return s.cache.CleanExpired()
}

func (s *DashboardService) build(ctx context.Context, userID int64, now time.Time) (Dashboard, error) {
	var (
		accounts     []core.Account
		transactions []core.Transaction
		bills        []core.Bill
		budgets      []core.Budget
		rewards      core.RewardOverview
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.AccountsByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		transactions, err = s.transactions.TransactionsByUser(gctx, userID, ledger.TransactionFilter{})
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bills, err = s.bills.BillsByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch bills: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.BudgetsByUser(gctx, userID, int(now.Month()), now.Year())
		if err != nil {
			return fmt.Errorf("fetch budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rewards, err = s.rewardSvc.Overview(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch rewards: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, &core.RequestError{Op: "dashboard", Err: err}
	}

	summary := core.AggregateDashboard(accounts, transactions, now)
	monthly := core.MonthlyTransactions(transactions, now)

	return Dashboard{
		Summary:     summary,
		Bills:       core.PartitionBills(bills, core.DateOf(now)),
		Rewards:     rewards,
		Budgets:     budgetStatuses(budgets, monthly),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// budgetStatuses matches each budget against the month's expense total
// for its category. Categories compare case-insensitively.
func budgetStatuses(budgets []core.Budget, monthly []core.Transaction) []BudgetStatus {
	spentBy := make(map[string]decimal.Decimal)
	for _, t := range monthly {
		if t.Type != core.TransactionExpense {
			continue
		}
		key := categoryKey(t.Category)
		spentBy[key] = spentBy[key].Add(t.Amount.Abs())
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := spentBy[categoryKey(b.Category)]
		out = append(out, BudgetStatus{
			Category:    b.Category,
			Budget:      b.Amount,
			Spent:       spent,
			Remaining:   b.Amount.Sub(spent),
			Utilization: core.Percent(spent, b.Amount),
		})
	}
	return out
}
