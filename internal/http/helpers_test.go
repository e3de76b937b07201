package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"conti/internal/auth"
	"conti/internal/cardvault"
	"conti/internal/core"
	"conti/internal/currency"
	"conti/internal/ledger/memory"
	"conti/internal/services"
)

// newTestServer assembles the whole API over the in-memory store with
// an offline currency converter and a vault in a temp dir. The store
// comes back too so tests can seed records directly.
func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	srv, store := newTestServerLimited(t, 100_000)
	return srv, store
}

func newTestServerLimited(t *testing.T, ratePerMinute int) (*Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	vault, err := cardvault.New(filepath.Join(t.TempDir(), "cards.json"), nil)
	if err != nil {
		t.Fatalf("open card vault: %v", err)
	}

	rewards := services.NewRewardService(store, store)
	bills := services.NewBillService(store, store, rewards, currency.New("", nil), nil)
	dashboard := services.NewDashboardService(store, store, store, store, rewards, time.Minute)

	srv := NewServer(":0", Deps{
		Auth:               services.NewAuthService(store, tokens),
		Tokens:             tokens,
		Dashboard:          dashboard,
		Bills:              bills,
		Rewards:            rewards,
		Alerts:             services.NewAlertCoordinator(store, nil),
		Cards:              services.NewCardService(vault),
		Exports:            services.NewExportService(store, nil),
		Accounts:           store,
		Transactions:       store,
		Budgets:            store,
		RateLimitPerMinute: ratePerMinute,
	})
	t.Cleanup(srv.limiter.Stop)
	return srv, store
}

// seedSession creates an active user and a valid bearer token for it.
func seedSession(t *testing.T, srv *Server, store *memory.Store, username string) (core.User, string) {
	t.Helper()
	user, err := store.CreateUser(context.Background(), core.User{
		Username: username,
		Email:    username + "@example.com",
		Currency: "USD",
		Active:   true,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	token, err := srv.deps.Tokens.Generate(user.ID, user.Username)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

// doJSON runs one request through the full middleware chain. A non-nil
// body is marshalled to JSON; an empty token leaves the request
// unauthenticated.
func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func urlWithID(base string, id int64) string {
	return fmt.Sprintf("%s/%d", base, id)
}

// decodeBody unmarshals a recorded JSON response.
func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

// errorField asserts a field-scoped error response and returns it.
func errorField(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantField string) {
	t.Helper()
	if rr.Code != wantStatus {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, wantStatus, rr.Body.String())
	}
	body := decodeBody[map[string]any](t, rr)
	if body["field"] != wantField {
		t.Fatalf("error field = %v, want %s (body %s)", body["field"], wantField, rr.Body.String())
	}
}
