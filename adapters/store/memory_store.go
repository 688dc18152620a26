package store

import (
	"context"
	"sync"
	"time"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/ports"
)

// MemoryChallengeStore is an in-process challenge cache. It is only correct
// when a single server instance handles both halves of a registration.
type MemoryChallengeStore struct {
	challenges map[string]core.Challenge
	mu         sync.Mutex
	now        func() time.Time
}

// NewMemoryChallengeStore creates a new in-memory challenge store
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		challenges: make(map[string]core.Challenge),
		now:        time.Now,
	}
}

var _ ports.ChallengeStore = (*MemoryChallengeStore)(nil)

// SetClock replaces the time source. Used by tests.
func (s *MemoryChallengeStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put stores a challenge and sweeps every expired entry
func (s *MemoryChallengeStore) Put(ctx context.Context, challenge core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, c := range s.challenges {
		if c.Expired(now) {
			delete(s.challenges, id)
		}
	}

	s.challenges[challenge.ID] = challenge
	return nil
}

// Consume removes the challenge and returns its bytes. Lookup and delete
// happen under one lock so only one caller can win a given id.
func (s *MemoryChallengeStore) Consume(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.challenges[id]
	if !exists {
		return nil, core.ErrChallengeNotFound
	}
	delete(s.challenges, id)

	if c.Expired(s.now()) {
		return nil, core.ErrChallengeNotFound
	}

	return c.Bytes, nil
}

// Len returns the number of stored entries, expired or not
func (s *MemoryChallengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}

// MemoryRevocationStore is an in-memory denylist of session token IDs
type MemoryRevocationStore struct {
	invalidatedTokens map[string]time.Time
	mu                sync.RWMutex
	now               func() time.Time
}

// NewMemoryRevocationStore creates a new in-memory revocation store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		invalidatedTokens: make(map[string]time.Time),
		now:               time.Now,
	}
}

var _ ports.RevocationStore = (*MemoryRevocationStore)(nil)

// InvalidateToken marks a token as invalidated until expiry elapses.
// Entries past their expiry are dropped on the next write.
func (s *MemoryRevocationStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, until := range s.invalidatedTokens {
		if !now.Before(until) {
			delete(s.invalidatedTokens, id)
		}
	}

	until := now.Add(expiry)
	if stored, exists := s.invalidatedTokens[tokenID]; exists && stored.After(until) {
		return nil
	}
	s.invalidatedTokens[tokenID] = until

	return nil
}

// IsTokenInvalidated checks if a token is invalidated
func (s *MemoryRevocationStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	until, exists := s.invalidatedTokens[tokenID]
	if !exists {
		return false, nil
	}

	return s.now().Before(until), nil
}
