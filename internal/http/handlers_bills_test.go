package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"conti/internal/core"
)

func createBill(t *testing.T, srv *Server, token string, body map[string]any) core.Bill {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/v1/bills", token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create bill status = %d (body %s)", rr.Code, rr.Body.String())
	}
	return decodeBody[core.Bill](t, rr)
}

func TestBills(t *testing.T) {
	srv, store := newTestServer(t)
	_, token := seedSession(t, srv, store, "ada")

	bill := createBill(t, srv, token, map[string]any{
		"name":     "Electric",
		"amount":   60,
		"due_date": "2026-09-10",
		"category": "utilities",
	})

	t.Run("create applies defaults", func(t *testing.T) {
		if bill.Currency != "USD" || bill.Frequency != core.FrequencyMonthly || bill.ReminderDays != 3 {
			t.Errorf("defaults not applied: %+v", bill)
		}
		if !bill.AmountUSD.Equal(decimal.NewFromInt(60)) {
			t.Errorf("amount_usd = %s", bill.AmountUSD)
		}
		if bill.IsPaid {
			t.Error("new bill is paid")
		}
	})

	t.Run("missing due date", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/bills", token, map[string]any{
			"name":     "Water",
			"amount":   20,
			"category": "utilities",
		})
		errorField(t, rr, http.StatusUnprocessableEntity, "due_date")
	})

	t.Run("negative reminder window", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/bills", token, map[string]any{
			"name":          "Water",
			"amount":        20,
			"due_date":      "2026-09-12",
			"category":      "utilities",
			"reminder_days": -1,
		})
		errorField(t, rr, http.StatusUnprocessableEntity, "reminder_days")
	})

	t.Run("ownership", func(t *testing.T) {
		_, rivalToken := seedSession(t, srv, store, "rival")
		rr := doJSON(t, srv, http.MethodGet, urlWithID("/api/v1/bills", bill.ID), rivalToken, nil)
		if rr.Code != http.StatusForbidden {
			t.Errorf("foreign get = %d, want 403", rr.Code)
		}
		rr = doJSON(t, srv, http.MethodGet, "/api/v1/bills/99999", token, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("unknown get = %d, want 404", rr.Code)
		}
	})

	t.Run("update leaves paid state alone", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPut, urlWithID("/api/v1/bills", bill.ID), token, map[string]any{
			"name":      "Electric (new provider)",
			"amount":    75,
			"currency":  "USD",
			"due_date":  "2026-09-15",
			"frequency": "quarterly",
			"category":  "utilities",
			"is_paid":   true,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
		}
		updated := decodeBody[core.Bill](t, rr)
		if updated.Name != "Electric (new provider)" || updated.Frequency != core.FrequencyQuarterly {
			t.Errorf("updated = %+v", updated)
		}
		if updated.IsPaid {
			t.Error("update flipped paid state")
		}
	})

	t.Run("delete", func(t *testing.T) {
		doomed := createBill(t, srv, token, map[string]any{
			"name": "Trial", "amount": 5, "due_date": "2026-09-30", "category": "subscriptions",
		})
		rr := doJSON(t, srv, http.MethodDelete, urlWithID("/api/v1/bills", doomed.ID), token, nil)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rr.Code)
		}
		rr = doJSON(t, srv, http.MethodGet, urlWithID("/api/v1/bills", doomed.ID), token, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", rr.Code)
		}
	})
}

func TestPayBill(t *testing.T) {
	srv, store := newTestServer(t)
	user, token := seedSession(t, srv, store, "payer")

	bill := createBill(t, srv, token, map[string]any{
		"name":     "Rent",
		"amount":   900,
		"due_date": time.Now().AddDate(0, 0, 5).Format("2006-01-02"),
		"category": "housing",
	})

	rr := doJSON(t, srv, http.MethodPost, urlWithID("/api/v1/bills", bill.ID)+"/pay", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("pay status = %d (body %s)", rr.Code, rr.Body.String())
	}
	paid := decodeBody[struct {
		core.Bill
		ReminderProgress float64 `json:"reminder_progress"`
	}](t, rr)
	if !paid.IsPaid || !paid.PaidDate.Equal(core.DateOf(time.Now()).Time) {
		t.Errorf("paid bill = %+v", paid)
	}
	if paid.ReminderProgress != 100 {
		t.Errorf("reminder_progress = %v, want 100 once paid", paid.ReminderProgress)
	}

	after, err := store.UserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Points <= 0 {
		t.Fatalf("points after payment = %d, want > 0", after.Points)
	}

	// Paying again must not double the grant.
	rr = doJSON(t, srv, http.MethodPost, urlWithID("/api/v1/bills", bill.ID)+"/pay", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("second pay status = %d", rr.Code)
	}
	again, err := store.UserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Points != after.Points {
		t.Errorf("points moved on retry: %d -> %d", after.Points, again.Points)
	}
}

func TestBillListFilters(t *testing.T) {
	srv, store := newTestServer(t)
	_, token := seedSession(t, srv, store, "lister")

	electric := createBill(t, srv, token, map[string]any{
		"name": "Electric", "amount": 60, "due_date": "2026-09-10", "category": "utilities",
	})
	createBill(t, srv, token, map[string]any{
		"name": "Gym", "amount": 30, "due_date": "2026-09-12", "category": "health",
	})
	rr := doJSON(t, srv, http.MethodPost, urlWithID("/api/v1/bills", electric.ID)+"/pay", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("pay status = %d", rr.Code)
	}

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"Electric", "Gym"}},
		{"unpaid only", "?paid=false", []string{"Gym"}},
		{"paid only", "?paid=true", []string{"Electric"}},
		{"by category", "?category=UTILITIES", []string{"Electric"}},
		{"no match", "?category=travel", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodGet, "/api/v1/bills"+tc.query, token, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			body := decodeBody[map[string][]core.Bill](t, rr)
			var names []string
			for _, b := range body["bills"] {
				names = append(names, b.Name)
			}
			if len(names) != len(tc.want) {
				t.Fatalf("bills = %v, want %v", names, tc.want)
			}
			for i := range tc.want {
				if names[i] != tc.want[i] {
					t.Errorf("bills = %v, want %v", names, tc.want)
				}
			}
		})
	}
}

func TestBillsDueSoon(t *testing.T) {
	srv, store := newTestServer(t)
	_, token := seedSession(t, srv, store, "soon")

	near := createBill(t, srv, token, map[string]any{
		"name": "Internet", "amount": 45,
		"due_date": time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		"category": "utilities",
	})
	createBill(t, srv, token, map[string]any{
		"name": "Insurance", "amount": 120,
		"due_date": time.Now().AddDate(0, 0, 20).Format("2006-01-02"),
		"category": "insurance",
	})

	rr := doJSON(t, srv, http.MethodGet, "/api/v1/bills/due-soon?days=7", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody[struct {
		Bills []core.Bill `json:"bills"`
		Days  int         `json:"days"`
	}](t, rr)
	if body.Days != 7 {
		t.Errorf("days = %d", body.Days)
	}
	if len(body.Bills) != 1 || body.Bills[0].ID != near.ID {
		t.Errorf("due soon = %+v", body.Bills)
	}
}

func TestBillsSummary(t *testing.T) {
	srv, store := newTestServer(t)
	_, token := seedSession(t, srv, store, "summed")

	paid := createBill(t, srv, token, map[string]any{
		"name": "Electric", "amount": 60, "due_date": "2026-09-10", "category": "utilities",
	})
	createBill(t, srv, token, map[string]any{
		"name": "Rent", "amount": 900, "due_date": "2026-09-01", "category": "housing",
	})
	createBill(t, srv, token, map[string]any{
		"name": "October thing", "amount": 10, "due_date": "2026-10-05", "category": "misc",
	})
	rr := doJSON(t, srv, http.MethodPost, urlWithID("/api/v1/bills", paid.ID)+"/pay", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("pay status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/v1/bills/summary?month=9&year=2026", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	summary := decodeBody[core.BillMonthSummary](t, rr)
	if summary.Month != 9 || summary.Year != 2026 {
		t.Errorf("period = %d/%d", summary.Month, summary.Year)
	}
	if summary.TotalBills != 2 || summary.PaidBills != 1 || summary.UnpaidBills != 1 {
		t.Errorf("counts = %+v", summary)
	}
	if !summary.TotalAmount.Equal(decimal.NewFromInt(960)) {
		t.Errorf("total = %s, want 960", summary.TotalAmount)
	}
	if len(summary.ByCategory) != 2 || summary.ByCategory[0].Name != "housing" {
		t.Errorf("breakdown = %+v", summary.ByCategory)
	}
}
