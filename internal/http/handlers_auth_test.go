package http

import (
	"net/http"
	"strings"
	"testing"
)

func TestRegister(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("creates an active user", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username": "ada",
			"email":    "ada@example.com",
			"password": "correct-horse",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
		}
		user := decodeBody[map[string]any](t, rr)
		if user["username"] != "ada" || user["is_active"] != true {
			t.Errorf("user = %v", user)
		}
		if strings.Contains(rr.Body.String(), "password") {
			t.Errorf("password material leaked: %s", rr.Body.String())
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username": "ada",
			"email":    "other@example.com",
			"password": "correct-horse",
		})
		if rr.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rr.Code)
		}
	})

	t.Run("short password", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username": "grace",
			"email":    "grace@example.com",
			"password": "short",
		})
		errorField(t, rr, http.StatusUnprocessableEntity, "password")
	})

	t.Run("bad email", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username": "grace",
			"email":    "not-an-email",
			"password": "correct-horse",
		})
		errorField(t, rr, http.StatusUnprocessableEntity, "email")
	})
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "ada",
		"email":    "ada@example.com",
		"password": "correct-horse",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rr.Code)
	}

	t.Run("issues a working token", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "ada",
			"password": "correct-horse",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
		}
		body := decodeBody[struct {
			Token string         `json:"token"`
			User  map[string]any `json:"user"`
		}](t, rr)
		if body.Token == "" || body.User["username"] != "ada" {
			t.Fatalf("login body = %s", rr.Body.String())
		}

		me := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", body.Token, nil)
		if me.Code != http.StatusOK {
			t.Fatalf("me with fresh token = %d", me.Code)
		}
	})

	t.Run("wrong password is 401 without a challenge", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "ada",
			"password": "wrong",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
		// Credentials were presented; the bearer challenge belongs to
		// token failures only.
		if rr.Header().Get("WWW-Authenticate") != "" {
			t.Error("unexpected WWW-Authenticate header")
		}
		if !strings.Contains(rr.Body.String(), "invalid username or password") {
			t.Errorf("body = %s", rr.Body.String())
		}
	})

	t.Run("unknown user gets the same answer", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "nobody",
			"password": "whatever",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "invalid username or password") {
			t.Errorf("body = %s", rr.Body.String())
		}
	})
}

func TestMeAndLogout(t *testing.T) {
	srv, store := newTestServer(t)
	user, token := seedSession(t, srv, store, "ada")

	rr := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me status = %d", rr.Code)
	}
	profile := decodeBody[map[string]any](t, rr)
	if int64(profile["id"].(float64)) != user.ID {
		t.Errorf("profile = %v", profile)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rr.Code)
	}
}
