// Package auth provides signup, login and opaque-token sessions.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SessionTTL is how long a session stays valid (7 days).
const SessionTTL = 7 * 24 * time.Hour

// ErrSessionNotFound is returned when a token does not resolve to a session.
var ErrSessionNotFound = errors.New("auth: session not found")

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	// Create opens a session for the user and returns its opaque token.
	Create(ctx context.Context, userID string) (string, error)

	// Resolve returns the user ID a token belongs to.
	// Returns ErrSessionNotFound for unknown or expired tokens.
	Resolve(ctx context.Context, token string) (string, error)

	// Destroy invalidates a token. Unknown tokens are a no-op.
	Destroy(ctx context.Context, token string) error
}

// Compile-time check that MemorySessions implements SessionStore.
var _ SessionStore = (*MemorySessions)(nil)

// MemorySessions is an in-memory SessionStore for development and tests.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// NewMemorySessions creates a new in-memory session store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		sessions: make(map[string]memorySession),
	}
}

// Create opens a session for the user and returns its opaque token.
func (s *MemorySessions) Create(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := newToken()
	s.sessions[token] = memorySession{
		userID:    userID,
		expiresAt: time.Now().Add(SessionTTL),
	}
	return token, nil
}

// Resolve returns the user ID a token belongs to.
func (s *MemorySessions) Resolve(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || time.Now().After(sess.expiresAt) {
		return "", ErrSessionNotFound
	}
	return sess.userID, nil
}

// Destroy invalidates a token.
func (s *MemorySessions) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
