package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the active token id of each user in Redis.
// Key format: session:<user_id> -> <token_id>, expiring with the token.
type SessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client}
}

// Activate overwrites any previous session of userID.
func (s *SessionStore) Activate(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(userID), tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("activate session: %w", err)
	}
	return nil
}

// IsActive reports whether tokenID is the user's current session.
func (s *SessionStore) IsActive(ctx context.Context, userID, tokenID string) (bool, error) {
	current, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("session lookup: %w", err)
	}
	return current == tokenID, nil
}

// Revoke drops the user's session. Revoking a missing session is not an error.
func (s *SessionStore) Revoke(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(userID string) string {
	return "session:" + userID
}
