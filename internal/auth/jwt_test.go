package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Minute, "school-inventory")
	tok, err := tokens.GenerateToken(models.User{ID: 7, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tokens.ParseToken(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Username != "admin" || claims.Subject != "7" || claims.ID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("test-secret", time.Minute, "")
	tok, _ := tokens.GenerateToken(models.User{ID: 1, Username: "admin"})

	other := NewTokens("another-secret", time.Minute, "")
	if _, err := other.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for a foreign signature, got %v", err)
	}

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := tokens.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword(hash, "secret") || CheckPassword(hash, "wrong") {
		t.Error("bcrypt check mismatch")
	}
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()
	_ = r.Revoke(ctx, "a", time.Now().Add(time.Minute))
	_ = r.Revoke(ctx, "b", time.Now().Add(-time.Minute))

	if ok, _ := r.Revoked(ctx, "a"); !ok {
		t.Error("expected a to be revoked")
	}
	if ok, _ := r.Revoked(ctx, "b"); ok {
		t.Error("expired revocation should be forgotten")
	}
	if ok, _ := r.Revoked(ctx, "c"); ok {
		t.Error("unknown token should not be revoked")
	}
}
