// Package auth defines the identity collaborators the room consumes.
// Token verification and profile lookup are external systems; the room
// only sees these interfaces.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidToken is returned when a bearer token fails validation or has
// already expired.
var ErrInvalidToken = errors.New("auth: invalid token")

// ErrUserNotFound is returned when no profile exists for a user id.
var ErrUserNotFound = errors.New("auth: user not found")

// Claims is the decoded identity carried by a validated token.
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Profile is the subset of a user record the room needs.
type Profile struct {
	UserID   string
	Username string
}

// TokenValidator validates a bearer token. Implementations must return
// ErrInvalidToken for unknown or expired tokens.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Claims, error)
}

// UserDirectory resolves a user id to a profile.
type UserDirectory interface {
	FindByUserID(ctx context.Context, userID string) (Profile, error)
}

// StaticValidator validates tokens against an in-memory table. Used by
// tests and local development; production wires a real verifier.
type StaticValidator struct {
	mu     sync.RWMutex
	tokens map[string]Claims
}

// NewStaticValidator returns an empty token table.
func NewStaticValidator() *StaticValidator {
	return &StaticValidator{tokens: make(map[string]Claims)}
}

// Register adds or replaces a token.
func (v *StaticValidator) Register(token string, claims Claims) {
	v.mu.Lock()
	v.tokens[token] = claims
	v.mu.Unlock()
}

// Validate implements TokenValidator.
func (v *StaticValidator) Validate(_ context.Context, token string) (Claims, error) {
	v.mu.RLock()
	claims, ok := v.tokens[token]
	v.mu.RUnlock()
	if !ok || !claims.ExpiresAt.After(time.Now()) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// StaticDirectory resolves profiles from an in-memory map.
type StaticDirectory struct {
	mu    sync.RWMutex
	users map[string]Profile
}

// NewStaticDirectory returns an empty directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{users: make(map[string]Profile)}
}

// Register adds or replaces a profile.
func (d *StaticDirectory) Register(profile Profile) {
	d.mu.Lock()
	d.users[profile.UserID] = profile
	d.mu.Unlock()
}

// FindByUserID implements UserDirectory.
func (d *StaticDirectory) FindByUserID(_ context.Context, userID string) (Profile, error) {
	d.mu.RLock()
	profile, ok := d.users[userID]
	d.mu.RUnlock()
	if !ok {
		return Profile{}, ErrUserNotFound
	}
	return profile, nil
}
