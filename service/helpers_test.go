package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fidena/fidena/adapters/memory"
	"github.com/fidena/fidena/adapters/store"
	"github.com/fidena/fidena/adapters/tokenizer"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic  string
	userID string
	extra  string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishRegistered(ctx context.Context, userID, registrationType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{"registered", userID, registrationType})
	return nil
}

func (p *recordingPublisher) PublishLogout(ctx context.Context, userID, tokenID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{"logout", userID, tokenID})
	return nil
}

func (p *recordingPublisher) Events() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type fixture struct {
	auth        *AuthService
	reg         *RegistrationService
	storage     *memory.Storage
	challenges  *store.MemoryChallengeStore
	revocations *store.MemoryRevocationStore
	events      *recordingPublisher
}

func newFixture(t *testing.T, withRevocation bool) *fixture {
	t.Helper()

	tk, err := tokenizer.NewJWTTokenizer([]byte("service-test-secret"))
	require.NoError(t, err)

	f := &fixture{
		storage:    memory.NewStorage(),
		challenges: store.NewMemoryChallengeStore(),
		events:     &recordingPublisher{},
	}

	var revocations *store.MemoryRevocationStore
	if withRevocation {
		revocations = store.NewMemoryRevocationStore()
		f.revocations = revocations
	}

	cfg := AuthConfig{Issuer: tokenizer.Issuer("test")}
	if revocations != nil {
		f.auth = NewAuthService(tk, f.challenges, revocations, f.events, nil, cfg)
	} else {
		f.auth = NewAuthService(tk, f.challenges, nil, f.events, nil, cfg)
	}
	f.reg = NewRegistrationService(f.storage, f.auth, f.events, nil)
	return f
}

var errBroker = errors.New("broker unavailable")
