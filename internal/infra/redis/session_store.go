package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"smart-learning-portal/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Notes:
//   - Attempt sessions themselves stay in-process: the countdown and the
//     submit guard live on the session mutex and do not survive a move to
//     another instance.
//   - Redis marks which students have a live attempt, which lets operators
//     see in-flight attempts and could be extended to route reconnects to
//     the owning instance.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.AttemptSession
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.AttemptSession),
	}
}

func (s *SessionStore) Put(studentID string, session *app.AttemptSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[studentID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(studentID), session.Quiz().ID, s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(studentID)).Err()
}

func (s *SessionStore) key(studentID string) string {
	return "portal:attempt:" + studentID
}
