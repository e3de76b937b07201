package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conti/internal/core"
)

type parserProbe struct {
	Username string `json:"username" validate:"required,min=3,max=10"`
	Email    string `json:"email" validate:"omitempty,email"`
	Currency string `json:"currency" validate:"omitempty,currency"`
	DueDate  string `json:"due_date" validate:"omitempty,dateonly"`
	Kind     string `json:"kind" validate:"omitempty,oneof=income expense"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantField   string
		wantMessage string
	}{
		{
			name: "valid input",
			body: `{"username":"ada","email":"ada@example.com","currency":"EUR","due_date":"2026-03-01","kind":"income"}`,
		},
		{
			name:        "malformed JSON",
			body:        `{"username":`,
			wantField:   "body",
			wantMessage: "malformed JSON",
		},
		{
			name:        "missing required field",
			body:        `{}`,
			wantField:   "username",
			wantMessage: "is required",
		},
		{
			name:        "too short",
			body:        `{"username":"ab"}`,
			wantField:   "username",
			wantMessage: "must be at least 3 characters",
		},
		{
			name:        "too long",
			body:        `{"username":"abcdefghijk"}`,
			wantField:   "username",
			wantMessage: "must be at most 10 characters",
		},
		{
			name:        "bad email",
			body:        `{"username":"ada","email":"not-an-email"}`,
			wantField:   "email",
			wantMessage: "must be a valid email address",
		},
		{
			name:        "unsupported currency",
			body:        `{"username":"ada","currency":"XTS"}`,
			wantField:   "currency",
			wantMessage: "unsupported currency",
		},
		{
			name:        "bad date",
			body:        `{"username":"ada","due_date":"01/03/2026"}`,
			wantField:   "due_date",
			wantMessage: "must be a date in YYYY-MM-DD format",
		},
		{
			name:        "outside the enum",
			body:        `{"username":"ada","kind":"transfer"}`,
			wantField:   "kind",
			wantMessage: "must be one of: income expense",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var probe parserProbe
			err := DecodeJSON(req, &probe)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("DecodeJSON failed: %v", err)
				}
				return
			}
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField || verr.Message != tt.wantMessage {
				t.Errorf("got %s: %s, want %s: %s", verr.Field, verr.Message, tt.wantField, tt.wantMessage)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		missing bool
	}{
		{"7", 7, false},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run("id="+tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.SetPathValue("id", tt.raw)
			id, err := pathID(req)
			if tt.missing {
				if !errors.Is(err, core.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil || id != tt.want {
				t.Fatalf("pathID = %d, %v; want %d", id, err, tt.want)
			}
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/?limit=25&bad=xyz&flag=true&bit=1&off=false&month=3&year=2026&from=2026-01-15", nil)

	if got := queryInt(req, "limit", 10); got != 25 {
		t.Errorf("limit = %d, want 25", got)
	}
	if got := queryInt(req, "absent", 10); got != 10 {
		t.Errorf("absent int = %d, want default 10", got)
	}
	if got := queryInt(req, "bad", 10); got != 10 {
		t.Errorf("unparseable int = %d, want default 10", got)
	}

	if !queryBool(req, "flag") || !queryBool(req, "bit") {
		t.Error("true forms not recognized")
	}
	if queryBool(req, "off") || queryBool(req, "absent") {
		t.Error("false forms read as true")
	}

	month, year := queryMonthYear(req)
	if month != 3 || year != 2026 {
		t.Errorf("month/year = %d/%d, want 3/2026", month, year)
	}

	from, err := queryDate(req, "from")
	if err != nil || from.Year() != 2026 || from.Month() != 1 || from.Day() != 15 {
		t.Errorf("from = %v, %v", from, err)
	}
	absent, err := queryDate(req, "to")
	if err != nil || !absent.IsZero() {
		t.Errorf("absent date = %v, %v; want zero", absent, err)
	}
}

func TestQueryDateMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=15.01.2026", nil)
	_, err := queryDate(req, "from")
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field != "from" {
		t.Fatalf("expected from validation error, got %v", err)
	}
}
