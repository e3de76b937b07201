package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"conti/internal/core"
	"conti/internal/ledger/memory"
)

var coordNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func seedAlert(t *testing.T, store *memory.Store, a core.Alert) core.Alert {
	t.Helper()
	if a.Type == "" {
		a.Type = core.AlertInfo
	}
	if a.Severity == "" {
		a.Severity = core.SeverityInfo
	}
	if a.Status == "" {
		a.Status = core.StatusActive
	}
	if a.Title == "" {
		a.Title = "Test alert"
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = coordNow
	}
	created, err := store.CreateAlert(context.Background(), a)
	if err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	return created
}

func TestAlertCoordinator_List(t *testing.T) {
	store := memory.New()
	c := NewAlertCoordinator(store, nil)
	user := seedUser(t, store, "ada")

	seedAlert(t, store, core.Alert{
		UserID: user.ID, Type: core.AlertBudgetExceeded, Title: "Budget exceeded: food",
		CreatedAt: coordNow.Add(-3 * time.Hour),
	})
	seedAlert(t, store, core.Alert{
		UserID: user.ID, Type: core.AlertLowBalance, Title: "Low balance in Checking",
		IsRead: true, CreatedAt: coordNow.Add(-2 * time.Hour),
	})
	seedAlert(t, store, core.Alert{
		UserID: user.ID, Type: core.AlertBillDue, Title: "Bill due tomorrow",
		Status: core.StatusDismissed, IsRead: true, CreatedAt: coordNow.Add(-1 * time.Hour),
	})
	other := seedUser(t, store, "grace")
	seedAlert(t, store, core.Alert{UserID: other.ID, Title: "Not yours"})

	t.Run("unfiltered returns only the user's alerts", func(t *testing.T) {
		alerts, total, err := c.List(context.Background(), user.ID, core.AlertFilter{}, "", 0, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 3 || len(alerts) != 3 {
			t.Fatalf("got %d/%d alerts, want 3/3", len(alerts), total)
		}
		// Newest first.
		if alerts[0].Type != core.AlertBillDue {
			t.Errorf("first alert = %s, want bill_due", alerts[0].Type)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		alerts, total, err := c.List(context.Background(), user.ID, core.AlertFilter{Status: "dismissed"}, "", 0, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 1 || alerts[0].Type != core.AlertBillDue {
			t.Errorf("got %d alerts (first %s), want the dismissed bill_due", total, alerts[0].Type)
		}
	})

	t.Run("unread only", func(t *testing.T) {
		alerts, _, err := c.List(context.Background(), user.ID, core.AlertFilter{UnreadOnly: true}, "", 0, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(alerts) != 1 || alerts[0].Type != core.AlertBudgetExceeded {
			t.Errorf("unread filter returned %+v", alerts)
		}
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		_, total, err := c.List(context.Background(), user.ID, core.AlertFilter{Query: "CHECKING"}, "", 0, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 1 {
			t.Errorf("search matched %d alerts, want 1", total)
		}
	})

	t.Run("type narrows after the filter", func(t *testing.T) {
		alerts, total, err := c.List(context.Background(), user.ID, core.AlertFilter{}, core.AlertLowBalance, 0, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 1 || alerts[0].Type != core.AlertLowBalance {
			t.Errorf("type filter returned %+v", alerts)
		}
	})

	t.Run("paging reports the full total", func(t *testing.T) {
		alerts, total, err := c.List(context.Background(), user.ID, core.AlertFilter{}, "", 2, 1)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if len(alerts) != 2 || alerts[0].Type != core.AlertLowBalance {
			t.Errorf("page = %+v, want low_balance then budget_exceeded", alerts)
		}
	})

	t.Run("offset past the end is an empty page", func(t *testing.T) {
		alerts, total, err := c.List(context.Background(), user.ID, core.AlertFilter{}, "", 10, 50)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 3 || len(alerts) != 0 {
			t.Errorf("got %d/%d, want empty page with total 3", len(alerts), total)
		}
	})
}

func TestAlertCoordinator_Update(t *testing.T) {
	store := memory.New()
	c := NewAlertCoordinator(store, nil)
	user := seedUser(t, store, "ada")
	other := seedUser(t, store, "grace")

	t.Run("resolving forces the read flag", func(t *testing.T) {
		a := seedAlert(t, store, core.Alert{UserID: user.ID})
		status := core.StatusResolved
		updated, err := c.Update(context.Background(), user.ID, a.ID, AlertUpdate{Status: &status})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Status != core.StatusResolved || !updated.IsRead {
			t.Errorf("got %s read=%v, want resolved read=true", updated.Status, updated.IsRead)
		}
	})

	t.Run("explicit read flag wins over the transition", func(t *testing.T) {
		a := seedAlert(t, store, core.Alert{UserID: user.ID})
		status := core.StatusDismissed
		unread := false
		updated, err := c.Update(context.Background(), user.ID, a.ID, AlertUpdate{Status: &status, IsRead: &unread})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Status != core.StatusDismissed || updated.IsRead {
			t.Errorf("got %s read=%v, want dismissed read=false", updated.Status, updated.IsRead)
		}
	})

	t.Run("read-only patch leaves status alone", func(t *testing.T) {
		a := seedAlert(t, store, core.Alert{UserID: user.ID})
		read := true
		updated, err := c.Update(context.Background(), user.ID, a.ID, AlertUpdate{IsRead: &read})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Status != core.StatusActive || !updated.IsRead {
			t.Errorf("got %s read=%v, want active read=true", updated.Status, updated.IsRead)
		}
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		a := seedAlert(t, store, core.Alert{UserID: user.ID})
		status := core.AlertStatus("archived")
		_, err := c.Update(context.Background(), user.ID, a.ID, AlertUpdate{Status: &status})
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Field != "status" {
			t.Fatalf("expected status validation error, got %v", err)
		}
	})

	t.Run("missing alert", func(t *testing.T) {
		_, err := c.Update(context.Background(), user.ID, 9999, AlertUpdate{})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("foreign alert", func(t *testing.T) {
		a := seedAlert(t, store, core.Alert{UserID: other.ID})
		_, err := c.Update(context.Background(), user.ID, a.ID, AlertUpdate{})
		if !errors.Is(err, core.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})
}

func TestAlertCoordinator_Delete(t *testing.T) {
	store := memory.New()
	c := NewAlertCoordinator(store, nil)
	user := seedUser(t, store, "ada")

	a := seedAlert(t, store, core.Alert{UserID: user.ID})
	c.Select(user.ID, a.ID)

	if err := c.Delete(context.Background(), user.ID, a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.AlertByID(context.Background(), a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("alert still present after delete: %v", err)
	}
	if ids := c.Selected(user.ID); len(ids) != 0 {
		t.Errorf("deleted alert still selected: %v", ids)
	}
}

func TestAlertCoordinator_MarkAllRead(t *testing.T) {
	store := memory.New()
	c := NewAlertCoordinator(store, nil)
	user := seedUser(t, store, "ada")

	seedAlert(t, store, core.Alert{UserID: user.ID})
	seedAlert(t, store, core.Alert{UserID: user.ID})
	seedAlert(t, store, core.Alert{UserID: user.ID, IsRead: true})

	n, err := c.MarkAllRead(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}
}

func TestAlertCoordinator_Bulk(t *testing.T) {
	t.Run("full success clears the selection and refreshes", func(t *testing.T) {
		store := memory.New()
		var refreshed []int64
		c := NewAlertCoordinator(store, func(userID int64) { refreshed = append(refreshed, userID) })
		user := seedUser(t, store, "ada")
		a1 := seedAlert(t, store, core.Alert{UserID: user.ID})
		a2 := seedAlert(t, store, core.Alert{UserID: user.ID})
		c.Select(user.ID, a1.ID)
		c.Select(user.ID, a2.ID)

		result, err := c.Bulk(context.Background(), user.ID, []int64{a1.ID, a2.ID}, BulkDismiss)
		if err != nil {
			t.Fatalf("Bulk failed: %v", err)
		}
		if result.Succeeded() != 2 || result.Failed() != 0 {
			t.Fatalf("succeeded=%d failed=%d, want 2/0", result.Succeeded(), result.Failed())
		}
		for _, id := range []int64{a1.ID, a2.ID} {
			got, err := store.AlertByID(context.Background(), id)
			if err != nil {
				t.Fatalf("reload alert %d: %v", id, err)
			}
			if got.Status != core.StatusDismissed || !got.IsRead {
				t.Errorf("alert %d = %s read=%v, want dismissed read=true", id, got.Status, got.IsRead)
			}
		}
		if ids := c.Selected(user.ID); len(ids) != 0 {
			t.Errorf("selection not cleared: %v", ids)
		}
		if len(refreshed) != 1 || refreshed[0] != user.ID {
			t.Errorf("refresh hook calls = %v, want one for the user", refreshed)
		}
	})

	t.Run("partial failure reports each item", func(t *testing.T) {
		store := memory.New()
		refreshes := 0
		c := NewAlertCoordinator(store, func(int64) { refreshes++ })
		user := seedUser(t, store, "ada")
		other := seedUser(t, store, "grace")
		mine := seedAlert(t, store, core.Alert{UserID: user.ID})
		theirs := seedAlert(t, store, core.Alert{UserID: other.ID})

		result, err := c.Bulk(context.Background(), user.ID,
			[]int64{mine.ID, theirs.ID, 9999}, BulkMarkRead)

		var perr *core.PartialBatchError
		if !errors.As(err, &perr) {
			t.Fatalf("expected PartialBatchError, got %v", err)
		}
		if result.Succeeded() != 1 || result.Failed() != 2 {
			t.Fatalf("succeeded=%d failed=%d, want 1/2", result.Succeeded(), result.Failed())
		}
		if !result.Items[0].OK || result.Items[1].OK || result.Items[2].OK {
			t.Errorf("item outcomes = %+v", result.Items)
		}
		if refreshes != 1 {
			t.Errorf("refreshes = %d, want 1 (at least one item changed)", refreshes)
		}
		got, _ := store.AlertByID(context.Background(), theirs.ID)
		if got.IsRead {
			t.Error("foreign alert was modified")
		}
	})

	t.Run("zero successes keep the selection", func(t *testing.T) {
		store := memory.New()
		refreshes := 0
		c := NewAlertCoordinator(store, func(int64) { refreshes++ })
		user := seedUser(t, store, "ada")
		c.Select(user.ID, 9999)

		result, err := c.Bulk(context.Background(), user.ID, nil, BulkDelete)
		var perr *core.PartialBatchError
		if !errors.As(err, &perr) {
			t.Fatalf("expected PartialBatchError, got %v", err)
		}
		if result.Succeeded() != 0 {
			t.Fatalf("succeeded = %d, want 0", result.Succeeded())
		}
		if refreshes != 0 {
			t.Error("refresh hook ran with nothing changed")
		}
		if ids := c.Selected(user.ID); len(ids) != 1 {
			t.Errorf("selection = %v, want the failed id retained", ids)
		}
	})

	t.Run("empty ids fall back to the selection", func(t *testing.T) {
		store := memory.New()
		c := NewAlertCoordinator(store, nil)
		user := seedUser(t, store, "ada")
		a1 := seedAlert(t, store, core.Alert{UserID: user.ID})
		a2 := seedAlert(t, store, core.Alert{UserID: user.ID})
		c.Select(user.ID, a1.ID)
		c.Select(user.ID, a2.ID)

		result, err := c.Bulk(context.Background(), user.ID, nil, BulkMarkRead)
		if err != nil {
			t.Fatalf("Bulk failed: %v", err)
		}
		if result.Succeeded() != 2 {
			t.Errorf("succeeded = %d, want 2", result.Succeeded())
		}
	})

	t.Run("input validation", func(t *testing.T) {
		store := memory.New()
		c := NewAlertCoordinator(store, nil)
		user := seedUser(t, store, "ada")

		cases := []struct {
			name      string
			ids       []int64
			action    BulkAction
			wantField string
		}{
			{"unknown action", []int64{1}, BulkAction("archive"), "action"},
			{"nothing selected", nil, BulkMarkRead, "ids"},
			{"over the cap", make([]int64, MaxBulkIDs+1), BulkMarkRead, "ids"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := c.Bulk(context.Background(), user.ID, tc.ids, tc.action)
				var verr *core.ValidationError
				if !errors.As(err, &verr) || verr.Field != tc.wantField {
					t.Fatalf("expected %s validation error, got %v", tc.wantField, err)
				}
			})
		}
	})
}

func TestAlertCoordinator_Toggle(t *testing.T) {
	c := NewAlertCoordinator(memory.New(), nil)

	if !c.Toggle(1, 42) {
		t.Error("first toggle should select")
	}
	if c.Toggle(1, 42) {
		t.Error("second toggle should deselect")
	}
	if ids := c.Selected(1); len(ids) != 0 {
		t.Errorf("selection = %v, want empty", ids)
	}
}
