package memory

import (
	"sync"

	"smart-learning-portal/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionStore, keyed by
// student ID. Sessions are process-local; a student reconnecting to the same
// instance resumes their running attempt.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.AttemptSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.AttemptSession),
	}
}

func (s *SessionStore) Put(studentID string, session *app.AttemptSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[studentID] = session
}

func (s *SessionStore) Get(studentID string) (*app.AttemptSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[studentID]
	return session, ok
}

func (s *SessionStore) Delete(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, studentID)
}
