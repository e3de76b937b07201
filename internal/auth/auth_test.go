package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Generate(42, "demo")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "demo" {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Generate(1, "demo")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenService("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)
	token, err := svc.Generate(1, "demo")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	for _, bad := range []string{"", "not.a.token", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := svc.Verify(bad); err == nil {
			t.Fatalf("%q should not verify", bad)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("hash must not be the plaintext")
	}
	if err := CheckPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("short passwords must be rejected")
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := SessionFrom(ctx); ok {
		t.Fatalf("empty context must not carry a session")
	}
	ctx = WithSession(ctx, Session{UserID: 7, Username: "demo"})
	s, ok := SessionFrom(ctx)
	if !ok || s.UserID != 7 || s.Username != "demo" {
		t.Fatalf("session: %+v ok=%v", s, ok)
	}
}
