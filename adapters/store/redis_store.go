package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/ports"
	"github.com/redis/go-redis/v9"
)

const (
	challengePrefix  = "fidena:challenge:"
	revocationPrefix = "fidena:revoked:"
)

// RedisChallengeStore shares challenges between server instances.
// Expiry is delegated to Redis key TTLs.
type RedisChallengeStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisChallengeStore creates a new Redis challenge store
func NewRedisChallengeStore(client redis.UniversalClient) ports.ChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: challengePrefix,
		now:    time.Now,
	}
}

// Put stores the challenge with a TTL matching its remaining lifetime
func (s *RedisChallengeStore) Put(ctx context.Context, challenge core.Challenge) error {
	ttl := challenge.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	value := base64.RawURLEncoding.EncodeToString(challenge.Bytes)
	if err := s.client.Set(ctx, s.prefix+challenge.ID, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	return nil
}

// Consume reads and deletes the challenge with a single GETDEL
func (s *RedisChallengeStore) Consume(ctx context.Context, id string) ([]byte, error) {
	value, err := s.client.GetDel(ctx, s.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("corrupt challenge %s: %w", id, err)
	}

	return raw, nil
}

// RedisRevocationStore is a Redis implementation of the RevocationStore interface
type RedisRevocationStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRevocationStore creates a new Redis revocation store
func NewRedisRevocationStore(client redis.UniversalClient) ports.RevocationStore {
	return &RedisRevocationStore{
		client: client,
		prefix: revocationPrefix,
	}
}

// InvalidateToken marks a token as invalidated in Redis
func (s *RedisRevocationStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	if expiry <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, s.prefix+tokenID, "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	return nil
}

// IsTokenInvalidated checks if a token is invalidated in Redis
func (s *RedisRevocationStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	val, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}

	return val > 0, nil
}
