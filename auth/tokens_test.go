package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, exp, err := tokens.Issue("abc123", "admin", KindUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry should be in the future")
	}

	claims, err := tokens.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "abc123" || claims.Role != "admin" || claims.Kind != KindUser {
		t.Fatalf("unexpected claims %+v", claims)
	}

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other", time.Hour).Parse(signed)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokens("test-secret", time.Hour)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		stale, _, err := old.Issue("abc123", "customer", KindUser)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := tokens.Parse(stale); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := tokens.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatal("password should match")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Fatal("wrong password matched")
	}
}

func TestNilVerifier(t *testing.T) {
	var v *FirebaseVerifier
	if _, err := v.Verify(context.Background(), "x"); !errors.Is(err, ErrFirebaseDisabled) {
		t.Fatalf("expected ErrFirebaseDisabled, got %v", err)
	}
}
