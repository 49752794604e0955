package stubapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound marks a token whose server-side session is gone,
// either expired or revoked by logout.
var ErrSessionNotFound = errors.New("session not found")

// Sessions tracks live sessions in Redis keyed by token ID, so logout can
// revoke a token before its expiry.
type Sessions struct {
	redis *redis.Client
}

// NewSessions creates a session store over the given Redis client.
func NewSessions(client *redis.Client) *Sessions {
	return &Sessions{redis: client}
}

func sessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// Put records a session for the token ID, expiring with the token.
// Without Redis sessions are not tracked and tokens stand alone.
func (s *Sessions) Put(ctx context.Context, jti, accountID string, ttl time.Duration) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, sessionKey(jti), accountID, ttl).Err()
}

// Get returns the account ID bound to the token ID.
func (s *Sessions) Get(ctx context.Context, jti string) (string, error) {
	if s.redis == nil {
		return "", nil
	}
	accountID, err := s.redis.Get(ctx, sessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}

// Revoke deletes the session, invalidating the token immediately.
func (s *Sessions) Revoke(ctx context.Context, jti string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, sessionKey(jti)).Err()
}
