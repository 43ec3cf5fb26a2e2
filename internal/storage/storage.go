package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/tryon/internal/wizard"
)

type session struct {
	controller *wizard.Controller
	lastSeen   time.Time
}

// SessionStore keeps one wizard controller per browser session
type SessionStore struct {
	sessions map[string]*session
	mu       sync.RWMutex
	now      func() time.Time
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create registers c under a new random ID.
func (s *SessionStore) Create(c *wizard.Controller) string {
	sessionID := uuid.NewString()
	s.Set(sessionID, c)
	return sessionID
}

// Get returns the session and marks it as recently used.
func (s *SessionStore) Get(sessionID string) (*wizard.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, exists := s.sessions[sessionID]
	if !exists {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.controller, true
}

func (s *SessionStore) Set(sessionID string, c *wizard.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &session{controller: c, lastSeen: s.now()}
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Delete removes the session and reports whether it existed.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return exists
}

// Sweep drops sessions not used within maxIdle and returns how many were removed.
func (s *SessionStore) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
