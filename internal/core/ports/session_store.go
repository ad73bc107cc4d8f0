package ports

import (
	"context"
	"time"
)

// SessionStore tracks the single active session (token id) per user.
type SessionStore interface {
	// Activate makes tokenID the user's only valid session for ttl.
	Activate(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	IsActive(ctx context.Context, userID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID string) error
}
