package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"conti/internal/core"
	"conti/internal/ledger"
)

// Store keeps every record in process memory. It backs the memory
// backend for development and doubles as the store fake in service
// tests. All methods copy on read; callers never share slices with the
// store.
type Store struct {
	mu     sync.Mutex
	nextID int64

	users        map[int64]core.User
	accounts     map[int64]core.Account
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
	bills        map[int64]core.Bill
	rewards      map[int64]core.RewardEntry
	alerts       map[int64]core.Alert
}

func New() *Store {
	return &Store{
		users:        make(map[int64]core.User),
		accounts:     make(map[int64]core.Account),
		transactions: make(map[int64]core.Transaction),
		budgets:      make(map[int64]core.Budget),
		bills:        make(map[int64]core.Bill),
		rewards:      make(map[int64]core.RewardEntry),
		alerts:       make(map[int64]core.Alert),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return core.User{}, core.ErrDuplicate
		}
	}
	u.ID = s.id()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) SetUserPoints(_ context.Context, id int64, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.Points = points
	s.users[id] = u
	return nil
}

func (s *Store) ActiveUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.User
	for _, u := range s.users {
		if u.Active {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- accounts ---

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) AccountByID(_ context.Context, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) AccountsByUser(_ context.Context, userID int64) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return core.ErrNotFound
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

// --- transactions ---

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) TransactionsByUser(_ context.Context, userID int64, f ledger.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID || !f.Matches(t) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// --- budgets ---

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) BudgetsByUser(_ context.Context, userID int64, month, year int) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID != userID {
			continue
		}
		if month > 0 && b.Month != month {
			continue
		}
		if year > 0 && b.Year != year {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- bills ---

func (s *Store) CreateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.bills[b.ID] = b
	return b, nil
}

func (s *Store) BillByID(_ context.Context, id int64) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return core.Bill{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) BillsByUser(_ context.Context, userID int64) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Bill
	for _, b := range s.bills {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sortBills(out)
	return out, nil
}

func (s *Store) AllBills(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		out = append(out, b)
	}
	sortBills(out)
	return out, nil
}

func sortBills(bills []core.Bill) {
	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].DueDate.Equal(bills[j].DueDate.Time) {
			return bills[i].DueDate.Before(bills[j].DueDate.Time)
		}
		return bills[i].ID < bills[j].ID
	})
}

func (s *Store) UpdateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[b.ID]; !ok {
		return core.ErrNotFound
	}
	s.bills[b.ID] = b
	return nil
}

func (s *Store) DeleteBill(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.bills, id)
	return nil
}

// --- rewards ---

func (s *Store) CreateReward(_ context.Context, e core.RewardEntry) (core.RewardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.rewards[e.ID] = e
	return e, nil
}

func (s *Store) RewardsByUser(_ context.Context, userID int64, limit int) ([]core.RewardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RewardEntry
	for _, e := range s.rewards {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarnedAt.Equal(out[j].EarnedAt) {
			return out[i].EarnedAt.After(out[j].EarnedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) RewardForBill(_ context.Context, userID, billID int64) (core.RewardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest core.RewardEntry
	found := false
	for _, e := range s.rewards {
		if e.UserID != userID || e.BillID != billID {
			continue
		}
		if !found || e.EarnedAt.After(latest.EarnedAt) || (e.EarnedAt.Equal(latest.EarnedAt) && e.ID > latest.ID) {
			latest = e
			found = true
		}
	}
	if !found {
		return core.RewardEntry{}, core.ErrNotFound
	}
	return latest, nil
}

// --- alerts ---

func (s *Store) CreateAlert(_ context.Context, a core.Alert) (core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.alerts[a.ID] = a
	return a, nil
}

func (s *Store) AlertByID(_ context.Context, id int64) (core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return core.Alert{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) AlertsByUser(_ context.Context, userID int64) ([]core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Alert
	for _, a := range s.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateAlert(_ context.Context, a core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[a.ID]; !ok {
		return core.ErrNotFound
	}
	s.alerts[a.ID] = a
	return nil
}

func (s *Store) DeleteAlert(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.alerts, id)
	return nil
}

func (s *Store) MarkAllRead(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for id, a := range s.alerts {
		if a.UserID == userID && !a.IsRead {
			a.IsRead = true
			s.alerts[id] = a
			updated++
		}
	}
	return updated, nil
}

func (s *Store) LatestAlert(_ context.Context, userID int64, typ core.AlertType, entityType string, entityID int64) (core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest core.Alert
	found := false
	for _, a := range s.alerts {
		if a.UserID != userID || a.Type != typ {
			continue
		}
		if a.EntityType != entityType || a.EntityID != entityID {
			continue
		}
		if !found || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
			found = true
		}
	}
	if !found {
		return core.Alert{}, core.ErrNotFound
	}
	return latest, nil
}
