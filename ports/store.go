package ports

import (
	"context"
	"time"

	"github.com/fidena/fidena/core"
)

// ChallengeStore keeps registration challenges until they are consumed or expire
type ChallengeStore interface {
	// Put stores the challenge until its ExpiresAt
	Put(ctx context.Context, challenge core.Challenge) error

	// Consume atomically removes the challenge and returns its bytes.
	// Returns core.ErrChallengeNotFound if absent, consumed or expired.
	Consume(ctx context.Context, id string) ([]byte, error)
}

// RevocationStore is a denylist of session token IDs
type RevocationStore interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
