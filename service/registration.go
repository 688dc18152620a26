package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/metrics"
	"github.com/fidena/fidena/ports"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// PasswordRegistration is the password variant of a registration request
type PasswordRegistration struct {
	Email    string
	Password string
}

// WebAuthnRegistration is the passkey variant of a registration request
type WebAuthnRegistration struct {
	Email        *string
	CredentialID string
	PublicKey    string
	Counter      string
	Transports   []string
	ChallengeID  string
}

// Registered is the outcome of a successful registration
type Registered struct {
	User    *core.User
	Token   string
	Session *core.Session
}

// RegistrationService creates accounts and signs them in
type RegistrationService struct {
	storage  ports.Storage
	auth     *AuthService
	eventPub ports.EventPublisher
	logger   *zap.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(storage ports.Storage, auth *AuthService, eventPub ports.EventPublisher, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		storage:  storage,
		auth:     auth,
		eventPub: eventPub,
		logger:   logger,
	}
}

// RegisterPassword creates a password account
func (s *RegistrationService) RegisterPassword(ctx context.Context, req PasswordRegistration) (*Registered, error) {
	email := req.Email

	exists, err := s.storage.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, s.fail(core.RegistrationPassword, fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, s.fail(core.RegistrationPassword, core.ErrEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, s.fail(core.RegistrationPassword, fmt.Errorf("hash password: %w", err))
	}
	hashStr := string(hash)

	user, err := s.storage.Users().Create(ctx, &core.User{
		Email:            &email,
		PasswordHash:     &hashStr,
		RegistrationType: core.RegistrationPassword,
	})
	if err != nil {
		return nil, s.fail(core.RegistrationPassword, err)
	}

	return s.complete(ctx, user)
}

// RegisterWebAuthn redeems the challenge and creates the user and its
// credential in one transaction
func (s *RegistrationService) RegisterWebAuthn(ctx context.Context, req WebAuthnRegistration) (*Registered, error) {
	if _, err := s.auth.ConsumeChallenge(ctx, req.ChallengeID); err != nil {
		return nil, s.fail(core.RegistrationWebAuthn, err)
	}

	var email *string
	if req.Email != nil && *req.Email != "" {
		email = req.Email
	}

	var user *core.User
	err := s.storage.WithTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if email != nil {
			exists, err := repos.Users().ExistsByEmail(ctx, *email)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if exists {
				return core.ErrEmailTaken
			}
		}

		created, err := repos.Users().Create(ctx, &core.User{
			Email:            email,
			RegistrationType: core.RegistrationWebAuthn,
		})
		if err != nil {
			return err
		}

		if err := repos.Credentials().Create(ctx, &core.Credential{
			ID:         req.CredentialID,
			UserID:     created.ID,
			PublicKey:  req.PublicKey,
			Counter:    req.Counter,
			Transports: req.Transports,
		}); err != nil {
			return fmt.Errorf("store credential: %w", err)
		}

		user = created
		return nil
	})
	if err != nil {
		return nil, s.fail(core.RegistrationWebAuthn, err)
	}

	return s.complete(ctx, user)
}

func (s *RegistrationService) complete(ctx context.Context, user *core.User) (*Registered, error) {
	token, session, err := s.auth.IssueSession(user.ID)
	if err != nil {
		return nil, s.fail(user.RegistrationType, err)
	}

	if err := s.eventPub.PublishRegistered(ctx, user.ID, string(user.RegistrationType)); err != nil {
		s.logger.Warn("failed to publish registration event", zap.Error(err), zap.String("user_id", user.ID))
	}

	metrics.RecordRegistration(string(user.RegistrationType), metrics.OutcomeSuccess)
	return &Registered{User: user, Token: token, Session: session}, nil
}

func (s *RegistrationService) fail(regType core.RegistrationType, err error) error {
	outcome := metrics.OutcomeError
	if errors.Is(err, core.ErrEmailTaken) || errors.Is(err, core.ErrChallengeNotFound) {
		outcome = metrics.OutcomeRejected
	}
	metrics.RecordRegistration(string(regType), outcome)
	return err
}
