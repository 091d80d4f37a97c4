package auth

import (
	"context"
	"testing"
	"time"
)

func TestStaticValidatorRejectsUnknownAndExpired(t *testing.T) {
	v := NewStaticValidator()
	v.Register("good", Claims{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	v.Register("stale", Claims{UserID: "u2", ExpiresAt: time.Now().Add(-time.Minute)})

	if _, err := v.Validate(context.Background(), "missing"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for unknown token, got %v", err)
	}
	if _, err := v.Validate(context.Background(), "stale"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
	claims, err := v.Validate(context.Background(), "good")
	if err != nil || claims.UserID != "u1" {
		t.Fatalf("expected valid claims for u1, got %+v err=%v", claims, err)
	}
}

func TestDevValidatorParsesPrefix(t *testing.T) {
	v := DevValidator{TTL: time.Minute}

	claims, err := v.Validate(context.Background(), "dev:alice")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "alice" {
		t.Fatalf("expected user id alice, got %s", claims.UserID)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected a future expiry, got %v", claims.ExpiresAt)
	}

	for _, token := range []string{"alice", "dev:", ""} {
		if _, err := v.Validate(context.Background(), token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestDevDirectoryEchoesUserID(t *testing.T) {
	d := DevDirectory{}
	profile, err := d.FindByUserID(context.Background(), "bob")
	if err != nil || profile.Username != "bob" {
		t.Fatalf("expected profile for bob, got %+v err=%v", profile, err)
	}
	if _, err := d.FindByUserID(context.Background(), ""); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for empty id, got %v", err)
	}
}
