package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session ID is unknown or already evicted
var ErrNotFound = fmt.Errorf("session not found")

// Store keeps sessions in memory. Sessions are ephemeral: they live for the
// duration of a conversation and are dropped on delete or idle eviction.
type Store struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex
}

// NewStore creates a new in-memory session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create creates a new empty session
func (s *Store) Create(ctx context.Context) (*Session, error) {
	sess := newSession()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess

	return sess, nil
}

// Get retrieves a session by ID and marks it as recently used
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}

	sess.Touch()
	return sess, nil
}

// Delete removes a session and all its state
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return ErrNotFound
	}

	delete(s.sessions, id)
	return nil
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PruneIdle evicts sessions that have been idle longer than maxIdle and
// returns how many were removed
func (s *Store) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			pruned++
		}
	}

	return pruned
}
