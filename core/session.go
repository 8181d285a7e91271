package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// SessionIDLength is the number of random bytes used to generate session IDs.
// 32 bytes provides 256 bits of entropy.
const SessionIDLength = 32

// DefaultSessionDuration is the default lifetime for a session (24 hours).
const DefaultSessionDuration = 24 * time.Hour

// Session represents a browser session with expiry tracking. Each session
// owns one pipeline run; all of its state is discarded when it expires.
type Session struct {
	// ID is the unique session identifier (base64 URL-encoded random bytes)
	ID string

	// CreatedAt is when the session was created
	CreatedAt time.Time

	// ExpiresAt is when the session becomes invalid
	ExpiresAt time.Time
}

// GenerateSessionID generates a cryptographically secure random session ID.
// Returns a base64 URL-encoded string of 32 random bytes (43 characters),
// safe for use in URLs and cookies without encoding.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes), nil
}

// NewSession creates a new Session with the given ID and default 24-hour expiration.
func NewSession(id string) Session {
	return NewSessionWithDuration(id, DefaultSessionDuration)
}

// NewSessionWithDuration creates a new Session with a custom expiration duration.
func NewSessionWithDuration(id string, duration time.Duration) Session {
	now := time.Now()
	return Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
}

// IsExpired returns true if the session has passed its expiration time.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TimeRemaining returns the duration until the session expires.
// Returns a negative duration if already expired.
func (s Session) TimeRemaining() time.Duration {
	return time.Until(s.ExpiresAt)
}
