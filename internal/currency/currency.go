// Package currency converts bill amounts to USD. Rates come from an
// optional live endpoint and fall back to a static table, so conversion
// keeps working offline.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"conti/internal/cache"
	"conti/internal/core"
)

// fallbackRates is units per USD. Used whenever no live endpoint is
// configured or the fetch fails.
var fallbackRates = map[core.Currency]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.NewFromFloat(0.92),
	"GBP": decimal.NewFromFloat(0.79),
	"JPY": decimal.NewFromFloat(150.25),
	"CAD": decimal.NewFromFloat(1.35),
	"AUD": decimal.NewFromFloat(1.52),
	"INR": decimal.NewFromFloat(83.10),
	"SGD": decimal.NewFromFloat(1.34),
}

const rateTTL = time.Hour

// Converter resolves exchange rates with a one-hour cache in front.
type Converter struct {
	apiURL string
	client *http.Client
	rates  *cache.LRUCache[decimal.Decimal]
	logger *slog.Logger
}

// New creates a converter. An empty apiURL disables live rates; the
// static table then serves everything.
func New(apiURL string, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		apiURL: apiURL,
		client: &http.Client{Timeout: 10 * time.Second},
		rates:  cache.NewLRUCache[decimal.Decimal](len(fallbackRates), rateTTL),
		logger: logger,
	}
}

// CleanExpired implements cache.Cleaner for the sweep manager.
func (c *Converter) CleanExpired() int {
	return c.rates.CleanExpired()
}

// RatePerUSD returns how many units of the currency one USD buys.
func (c *Converter) RatePerUSD(ctx context.Context, cur core.Currency) (decimal.Decimal, error) {
	if !cur.Valid() {
		return decimal.Zero, core.ErrInvalidCurrency
	}
	if cur == "USD" {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := c.rates.Get(string(cur)); ok {
		return rate, nil
	}

	rate := fallbackRates[cur]
	if c.apiURL != "" {
		live, err := c.fetchRate(ctx, cur)
		if err != nil {
			c.logger.Warn("live rate fetch failed, using fallback", "currency", cur, "error", err)
		} else {
			rate = live
		}
	}
	c.rates.Set(string(cur), rate)
	return rate, nil
}

// ToUSD converts an amount from the given currency, rounded half-up to
// two decimals.
func (c *Converter) ToUSD(ctx context.Context, amount decimal.Decimal, from core.Currency) (decimal.Decimal, error) {
	rate, err := c.RatePerUSD(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	return core.RoundAmount(amount.Div(rate)), nil
}

// FromUSD converts a USD amount to the given currency, rounded half-up
// to two decimals.
func (c *Converter) FromUSD(ctx context.Context, amount decimal.Decimal, to core.Currency) (decimal.Decimal, error) {
	rate, err := c.RatePerUSD(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	return core.RoundAmount(amount.Mul(rate)), nil
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (c *Converter) fetchRate(ctx context.Context, cur core.Currency) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate endpoint returned %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rates: %w", err)
	}
	rate, ok := body.Rates[string(cur)]
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("no usable rate for %s", cur)
	}
	return decimal.NewFromFloat(rate), nil
}
