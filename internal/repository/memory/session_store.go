package memory

import (
	"context"
	"sync"

	"github.com/iamasit07/blog/backend/internal/domain"
)

// SessionStore holds one refresh token per identity. A single mutex
// serializes bind, lookup and revoke, so both indexes always agree.
type SessionStore struct {
	mu      sync.Mutex
	byUser  map[int64]string
	byToken map[string]int64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byUser:  make(map[int64]string),
		byToken: make(map[string]int64),
	}
}

// Bind replaces any session the identity already had.
func (s *SessionStore) Bind(ctx context.Context, userID int64, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byUser[userID]; ok {
		delete(s.byToken, old)
	}
	s.byUser[userID] = refreshToken
	s.byToken[refreshToken] = userID
	return nil
}

func (s *SessionStore) LookupByRefreshToken(ctx context.Context, refreshToken string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.byToken[refreshToken]
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	return userID, nil
}

func (s *SessionStore) Revoke(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.byUser[userID]; ok {
		delete(s.byToken, token)
		delete(s.byUser, userID)
	}
	return nil
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}
