package webui

import (
	"context"
	"sync"
	"time"

	"foresight_backend/core"
	"foresight_backend/pipeline"

	"go.uber.org/zap"
)

// SessionEntry binds one browser session to its pipeline orchestrator. All
// pipeline state is session scoped and in memory only.
type SessionEntry struct {
	Session      core.Session
	Orchestrator *pipeline.Orchestrator
}

// SessionStore tracks active sessions and evicts expired ones. Safe for
// concurrent use.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*SessionEntry

	ttl    time.Duration
	cfg    *core.Config
	logger *zap.Logger
}

// NewSessionStore creates a SessionStore with the given session lifetime.
func NewSessionStore(cfg *core.Config, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		entries: make(map[string]*SessionEntry),
		ttl:     ttl,
		cfg:     cfg,
		logger:  logger,
	}
}

// Create starts a new session with a fresh orchestrator.
func (s *SessionStore) Create() (*SessionEntry, error) {
	id, err := core.GenerateSessionID()
	if err != nil {
		return nil, err
	}
	session := core.NewSessionWithDuration(id, s.ttl)

	entry := &SessionEntry{
		Session:      session,
		Orchestrator: pipeline.NewOrchestrator(s.cfg, s.logger),
	}

	s.mu.Lock()
	s.entries[session.ID] = entry
	s.mu.Unlock()

	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return entry, nil
}

// Get returns the live session entry for an ID. Expired sessions are
// treated as absent.
func (s *SessionStore) Get(id string) (*SessionEntry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || entry.Session.IsExpired() {
		return nil, false
	}
	return entry, true
}

// Delete removes a session and discards its pipeline state.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len returns the number of tracked sessions, expired ones included until
// the next sweep.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		if entry.Session.IsExpired() {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired sessions on the given interval until the
// context is canceled.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug("expired sessions removed", zap.Int("count", removed))
			}
		}
	}
}
