package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/ports"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultChallengeTTL = 5 * time.Minute
	DefaultSessionTTL   = 30 * 24 * time.Hour

	challengeIDBytes = 16
)

// AuthConfig holds the knobs of AuthService
type AuthConfig struct {
	Issuer       string
	SessionTTL   time.Duration
	ChallengeTTL time.Duration
}

// AuthService handles authentication business logic
type AuthService struct {
	tokenizer   ports.Tokenizer
	challenges  ports.ChallengeStore
	revocations ports.RevocationStore
	eventPub    ports.EventPublisher
	logger      *zap.Logger

	issuer       string
	sessionTTL   time.Duration
	challengeTTL time.Duration
	now          func() time.Time
}

// NewAuthService creates a new authentication service. A nil revocations
// store disables the denylist; logout then only clears the cookie.
func NewAuthService(
	tokenizer ports.Tokenizer,
	challenges ports.ChallengeStore,
	revocations ports.RevocationStore,
	eventPub ports.EventPublisher,
	logger *zap.Logger,
	cfg AuthConfig,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = DefaultChallengeTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		tokenizer:    tokenizer,
		challenges:   challenges,
		revocations:  revocations,
		eventPub:     eventPub,
		logger:       logger,
		issuer:       cfg.Issuer,
		sessionTTL:   cfg.SessionTTL,
		challengeTTL: cfg.ChallengeTTL,
		now:          time.Now,
	}
}

// SessionTTL is the lifetime of issued sessions
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// CreateChallenge generates and stores a new registration challenge
func (s *AuthService) CreateChallenge(ctx context.Context) (*core.Challenge, error) {
	bytes, err := protocol.CreateChallenge()
	if err != nil {
		return nil, fmt.Errorf("failed to generate challenge: %w", err)
	}

	idBytes := make([]byte, challengeIDBytes)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, fmt.Errorf("failed to generate challenge id: %w", err)
	}

	challenge := &core.Challenge{
		ID:        hex.EncodeToString(idBytes),
		Bytes:     bytes,
		ExpiresAt: s.now().Add(s.challengeTTL),
	}

	if err := s.challenges.Put(ctx, *challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge, nil
}

// ConsumeChallenge redeems a challenge id exactly once
func (s *AuthService) ConsumeChallenge(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, core.ErrChallengeNotFound
	}
	return s.challenges.Consume(ctx, id)
}

// IssueSession mints a session token for the user
func (s *AuthService) IssueSession(userID string) (string, *core.Session, error) {
	now := s.now()
	session := &core.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Issuer:    s.issuer,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return token, session, nil
}

// VerifySession validates a session token. Any token problem is reported
// as core.ErrInvalidToken, core.ErrTokenExpired or core.ErrTokenRevoked.
func (s *AuthService) VerifySession(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}

	if s.revocations != nil && session.ID != "" {
		revoked, err := s.revocations.IsTokenInvalidated(ctx, session.ID)
		if err != nil {
			// Fail closed: an unreachable denylist means no identity
			s.logger.Error("revocation lookup failed", zap.Error(err))
			return nil, core.ErrTokenRevoked
		}
		if revoked {
			return nil, core.ErrTokenRevoked
		}
	}

	return session, nil
}

// Logout ends the session carried by token. It never fails on a bad token;
// the caller always clears the cookie.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.VerifySession(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrInvalidToken) || errors.Is(err, core.ErrTokenExpired) || errors.Is(err, core.ErrTokenRevoked) {
			return nil
		}
		return err
	}

	if s.revocations != nil && session.ID != "" {
		remaining := session.ExpiresAt.Sub(s.now())
		if err := s.revocations.InvalidateToken(ctx, session.ID, remaining); err != nil {
			return fmt.Errorf("failed to invalidate token: %w", err)
		}
	}

	if err := s.eventPub.PublishLogout(ctx, session.UserID, session.ID); err != nil {
		// Best effort; the cookie is cleared regardless
		s.logger.Warn("failed to publish logout event", zap.Error(err), zap.String("user_id", session.UserID))
	}

	return nil
}
