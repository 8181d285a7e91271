package core

import (
	"testing"
	"time"
)

func TestGenerateSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(id) != 43 {
			t.Fatalf("session ID length = %d, want 43", len(id))
		}
		if seen[id] {
			t.Fatal("duplicate session ID generated")
		}
		seen[id] = true
	}
}

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession("test-id")
	if s.ID != "test-id" {
		t.Errorf("ID = %q", s.ID)
	}
	ttl := s.ExpiresAt.Sub(s.CreatedAt)
	if ttl != DefaultSessionDuration {
		t.Errorf("lifetime = %v, want %v", ttl, DefaultSessionDuration)
	}
	if s.IsExpired() {
		t.Error("fresh session must not be expired")
	}
}

func TestSessionExpiry(t *testing.T) {
	s := NewSessionWithDuration("short", -time.Second)
	if !s.IsExpired() {
		t.Error("session with past expiry must be expired")
	}
	if s.TimeRemaining() >= 0 {
		t.Errorf("expired session has remaining time %v", s.TimeRemaining())
	}

	long := NewSessionWithDuration("long", time.Hour)
	if long.TimeRemaining() <= 59*time.Minute {
		t.Errorf("unexpected remaining time %v", long.TimeRemaining())
	}
}
