package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/blog/backend/internal/domain"
)

const maxTxRetries = 5

// SessionStore keeps two keys per session:
//
//	session:<userID>        -> refresh token
//	refresh_token:<token>   -> userID
//
// Writes WATCH the session key so concurrent binds for one user apply in
// some serial order and never leave an orphaned reverse key.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration // 0 keeps sessions until replaced or revoked
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

func tokenKey(token string) string {
	return "refresh_token:" + token
}

func (s *SessionStore) Bind(ctx context.Context, userID int64, refreshToken string) error {
	key := sessionKey(userID)
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if old != "" {
				pipe.Del(ctx, tokenKey(old))
			}
			pipe.Set(ctx, key, refreshToken, s.ttl)
			pipe.Set(ctx, tokenKey(refreshToken), userID, s.ttl)
			return nil
		})
		return err
	})
}

// LookupByRefreshToken resolves a token and confirms it is still the
// user's current session.
func (s *SessionStore) LookupByRefreshToken(ctx context.Context, refreshToken string) (int64, error) {
	raw, err := s.client.Get(ctx, tokenKey(refreshToken)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrSessionNotFound
	}

	current, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	if current != refreshToken {
		return 0, domain.ErrSessionNotFound
	}
	return userID, nil
}

func (s *SessionStore) Revoke(ctx context.Context, userID int64) error {
	key := sessionKey(userID)
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		token, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, tokenKey(token))
			return nil
		})
		return err
	})
}

func (s *SessionStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("session transaction failed: %w", err)
		}
		return nil
	}
	return fmt.Errorf("session transaction failed: too much contention on %s", key)
}
