package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"conti/internal/core"
)

func TestToUSDFallbackRates(t *testing.T) {
	c := New("", nil)
	ctx := context.Background()

	cases := []struct {
		amount string
		from   core.Currency
		want   string
	}{
		{"100", "USD", "100"},
		{"92", "EUR", "100"},
		{"150.25", "JPY", "1"},
		{"100", "EUR", "108.7"}, // 100/0.92 = 108.695..., half-up
		{"1", "GBP", "1.27"},    // 1/0.79 = 1.2658...
	}
	for i, tc := range cases {
		got, err := c.ToUSD(ctx, decimal.RequireFromString(tc.amount), tc.from)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got.String() != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}

func TestFromUSD(t *testing.T) {
	c := New("", nil)
	got, err := c.FromUSD(context.Background(), decimal.NewFromInt(100), "EUR")
	if err != nil || got.String() != "92" {
		t.Fatalf("got %s err=%v", got, err)
	}
}

func TestUnknownCurrencyRejected(t *testing.T) {
	c := New("", nil)
	if _, err := c.ToUSD(context.Background(), decimal.NewFromInt(1), "XXX"); !errors.Is(err, core.ErrInvalidCurrency) {
		t.Fatalf("got %v", err)
	}
}

func TestLiveRatesUsedAndCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"rates":{"EUR":0.5}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	ctx := context.Background()

	got, err := c.ToUSD(ctx, decimal.NewFromInt(50), "EUR")
	if err != nil || got.String() != "100" {
		t.Fatalf("live rate: got %s err=%v", got, err)
	}
	// Second conversion hits the cache, not the endpoint.
	if _, err := c.ToUSD(ctx, decimal.NewFromInt(1), "EUR"); err != nil {
		t.Fatalf("cached: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}

func TestLiveFetchFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	got, err := c.ToUSD(context.Background(), decimal.NewFromInt(92), "EUR")
	if err != nil || got.String() != "100" {
		t.Fatalf("fallback: got %s err=%v", got, err)
	}
}
