package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"conti/internal/core"
	"conti/internal/ledger"
)

// MaxBulkIDs caps one bulk action. Larger requests are rejected before
// any item is touched.
const MaxBulkIDs = 100

// BulkAction names one of the four bulk state transitions.
type BulkAction string

const (
	BulkMarkRead   BulkAction = "mark_read"
	BulkMarkUnread BulkAction = "mark_unread"
	BulkDismiss    BulkAction = "dismiss"
	BulkDelete     BulkAction = "delete"
)

func (a BulkAction) Valid() bool {
	switch a {
	case BulkMarkRead, BulkMarkUnread, BulkDismiss, BulkDelete:
		return true
	}
	return false
}

// AlertUpdate is a partial update for one alert. Nil fields are left
// untouched.
type AlertUpdate struct {
	Status *core.AlertStatus
	IsRead *bool
}

// AlertCoordinator serves the alert endpoints: list/stats, per-item
// updates, and bulk actions over a per-user selection set. Bulk items
// are processed independently with no rollback; the result reports
// each item's outcome. After a bulk action with at least one success
// the selection is cleared and the refresh hook runs.
type AlertCoordinator struct {
	alerts  ledger.AlertStore
	refresh func(userID int64)

	mu       sync.Mutex
	selected map[int64]map[int64]struct{} // userID -> alert ID set
}

// NewAlertCoordinator wires the coordinator. refresh may be nil; when
// set it runs after every bulk action that changed at least one alert.
func NewAlertCoordinator(alerts ledger.AlertStore, refresh func(userID int64)) *AlertCoordinator {
	return &AlertCoordinator{
		alerts:   alerts,
		refresh:  refresh,
		selected: make(map[int64]map[int64]struct{}),
	}
}

// --- selection set ---

// Select adds an alert ID to the user's selection.
func (c *AlertCoordinator) Select(userID, alertID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.selected[userID]
	if !ok {
		set = make(map[int64]struct{})
		c.selected[userID] = set
	}
	set[alertID] = struct{}{}
}

// Deselect removes an alert ID from the user's selection.
func (c *AlertCoordinator) Deselect(userID, alertID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.selected[userID], alertID)
}

// Toggle flips membership and reports the new state.
func (c *AlertCoordinator) Toggle(userID, alertID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.selected[userID]
	if !ok {
		set = make(map[int64]struct{})
		c.selected[userID] = set
	}
	if _, in := set[alertID]; in {
		delete(set, alertID)
		return false
	}
	set[alertID] = struct{}{}
	return true
}

// ClearSelection empties the user's selection.
func (c *AlertCoordinator) ClearSelection(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.selected, userID)
}

// Selected returns the user's selected alert IDs in unspecified order.
func (c *AlertCoordinator) Selected(userID int64) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.selected[userID]))
	for id := range c.selected[userID] {
		ids = append(ids, id)
	}
	return ids
}

// --- queries ---

// List filters the user's alerts and returns one page plus the total
// match count. A non-empty typ further narrows by alert type.
func (c *AlertCoordinator) List(ctx context.Context, userID int64, f core.AlertFilter, typ core.AlertType, limit, offset int) ([]core.Alert, int, error) {
	all, err := c.alerts.AlertsByUser(ctx, userID)
	if err != nil {
		return nil, 0, &core.RequestError{Op: "fetch alerts", Err: err}
	}

	matched := core.FilterAlerts(all, f)
	if typ != "" {
		var byType []core.Alert
		for _, a := range matched {
			if a.Type == typ {
				byType = append(byType, a)
			}
		}
		matched = byType
	}

	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []core.Alert{}, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// Stats computes the alert stat counters for the user.
func (c *AlertCoordinator) Stats(ctx context.Context, userID int64, now time.Time) (core.AlertStats, error) {
	all, err := c.alerts.AlertsByUser(ctx, userID)
	if err != nil {
		return core.AlertStats{}, &core.RequestError{Op: "fetch alerts", Err: err}
	}
	return core.CountAlertStats(all, now), nil
}

// --- single-item operations ---

// Get returns one alert after the ownership check.
func (c *AlertCoordinator) Get(ctx context.Context, userID, alertID int64) (core.Alert, error) {
	return c.owned(ctx, userID, alertID)
}

// Update applies a partial update. Setting status to resolved or
// dismissed forces the read flag on; an explicit IsRead afterwards
// still wins.
func (c *AlertCoordinator) Update(ctx context.Context, userID, alertID int64, patch AlertUpdate) (core.Alert, error) {
	alert, err := c.owned(ctx, userID, alertID)
	if err != nil {
		return core.Alert{}, err
	}

	if patch.Status != nil {
		switch *patch.Status {
		case core.StatusActive:
			alert.Status = core.StatusActive
		case core.StatusResolved:
			alert.Resolve()
		case core.StatusDismissed:
			alert.Dismiss()
		default:
			return core.Alert{}, core.NewValidationError("status", "must be active, resolved, or dismissed")
		}
	}
	if patch.IsRead != nil {
		alert.IsRead = *patch.IsRead
	}

	if err := c.alerts.UpdateAlert(ctx, alert); err != nil {
		return core.Alert{}, fmt.Errorf("update alert %d: %w", alertID, err)
	}
	return alert, nil
}

// Delete removes one alert and drops it from the selection.
func (c *AlertCoordinator) Delete(ctx context.Context, userID, alertID int64) error {
	if _, err := c.owned(ctx, userID, alertID); err != nil {
		return err
	}
	if err := c.alerts.DeleteAlert(ctx, alertID); err != nil {
		return fmt.Errorf("delete alert %d: %w", alertID, err)
	}
	c.Deselect(userID, alertID)
	return nil
}

// MarkAllRead flags every alert of the user read and returns the
// number of alerts that changed.
func (c *AlertCoordinator) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	n, err := c.alerts.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, &core.RequestError{Op: "mark all read", Err: err}
	}
	slog.InfoContext(ctx, "Alerts marked read", "user_id", userID, "count", n)
	return n, nil
}

// --- bulk operations ---

// Bulk applies one action to the given IDs, or to the current
// selection when ids is empty. Items run independently: one failure
// does not stop the rest, and nothing is rolled back. When at least
// one item succeeded the selection is cleared, even on partial
// failure, and the refresh hook runs. The error is nil on full
// success, a PartialBatchError when some items failed, or a
// ValidationError before anything ran.
func (c *AlertCoordinator) Bulk(ctx context.Context, userID int64, ids []int64, action BulkAction) (*core.BatchResult, error) {
	if !action.Valid() {
		return nil, core.NewValidationError("action", "must be mark_read, mark_unread, dismiss, or delete")
	}
	if len(ids) == 0 {
		ids = c.Selected(userID)
	}
	if len(ids) == 0 {
		return nil, core.NewValidationError("ids", "no alerts selected")
	}
	if len(ids) > MaxBulkIDs {
		return nil, core.NewValidationError("ids", fmt.Sprintf("at most %d ids per bulk action", MaxBulkIDs))
	}

	result := &core.BatchResult{}
	for _, id := range ids {
		result.Add(id, c.apply(ctx, userID, id, action))
	}

	if result.Succeeded() > 0 {
		c.ClearSelection(userID)
		if c.refresh != nil {
			c.refresh(userID)
		}
	}

	slog.InfoContext(ctx, "Bulk alert action",
		"user_id", userID,
		"action", string(action),
		"succeeded", result.Succeeded(),
		"failed", result.Failed())
	return result, result.Err()
}

func (c *AlertCoordinator) apply(ctx context.Context, userID, alertID int64, action BulkAction) error {
	alert, err := c.owned(ctx, userID, alertID)
	if err != nil {
		return err
	}

	switch action {
	case BulkMarkRead:
		alert.MarkRead()
	case BulkMarkUnread:
		alert.MarkUnread()
	case BulkDismiss:
		alert.Dismiss()
	case BulkDelete:
		return c.alerts.DeleteAlert(ctx, alertID)
	}
	return c.alerts.UpdateAlert(ctx, alert)
}

func (c *AlertCoordinator) owned(ctx context.Context, userID, alertID int64) (core.Alert, error) {
	alert, err := c.alerts.AlertByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Alert{}, core.ErrNotFound
		}
		return core.Alert{}, fmt.Errorf("load alert %d: %w", alertID, err)
	}
	if alert.UserID != userID {
		return core.Alert{}, core.ErrNotOwner
	}
	return alert, nil
}
