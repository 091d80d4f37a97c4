package auth

import (
	"context"
	"strings"
	"time"
)

const devPrefix = "dev:"

// DevValidator accepts tokens of the form "dev:<userId>" and mints claims
// with a fixed TTL. It exists so the server can run without a real token
// issuer; never enable it outside local development.
type DevValidator struct {
	TTL time.Duration
}

// Validate implements TokenValidator.
func (v DevValidator) Validate(_ context.Context, token string) (Claims, error) {
	userID := strings.TrimPrefix(token, devPrefix)
	if userID == token || userID == "" {
		return Claims{}, ErrInvalidToken
	}
	ttl := v.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return Claims{
		UserID:    userID,
		Email:     userID + "@dev.local",
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// DevDirectory resolves every user id to a profile named after it.
type DevDirectory struct{}

// FindByUserID implements UserDirectory.
func (DevDirectory) FindByUserID(_ context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrUserNotFound
	}
	return Profile{UserID: userID, Username: userID}, nil
}
