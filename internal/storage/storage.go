package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davka-nysa/davka/internal/models"
)

// DefaultSessionTTL is how long an admin panel login stays valid.
const DefaultSessionTTL = 12 * time.Hour

type SessionStore struct {
	sessions map[string]*models.AdminSession
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

func New(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*models.AdminSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session and drops any expired ones.
func (s *SessionStore) Create() *models.AdminSession {
	now := s.now()
	session := &models.AdminSession{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.sessions {
		if existing.Expired(now) {
			delete(s.sessions, id)
		}
	}
	s.sessions[session.ID] = session
	return session
}

// Get returns a live session. Expired sessions are reported as missing.
func (s *SessionStore) Get(sessionID string) (*models.AdminSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists || session.Expired(s.now()) {
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
