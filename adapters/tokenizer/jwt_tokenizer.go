package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/ports"
	"github.com/golang-jwt/jwt/v5"
)

// IssuerPrefix identifies the signing scheme. Tokens whose issuer lacks it are rejected.
const IssuerPrefix = "fidena-backend_"

// Issuer returns the issuer string for the given build version
func Issuer(version string) string {
	return IssuerPrefix + version
}

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	now    func() time.Time
}

// Option customizes a JWTTokenizer
type Option func(*JWTTokenizer)

// WithClock overrides the time source used for validation
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) { j.now = now }
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, opts ...Option) (ports.Tokenizer, error) {
	if len(secret) == 0 {
		return nil, core.ErrMissingSecret
	}
	j := &JWTTokenizer{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// SessionToToken converts a Session to a signed JWT
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    session.Issuer,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// TokenToSession parses a JWT and returns the session it asserts.
// Every failure maps to core.ErrInvalidToken or core.ErrTokenExpired.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrInvalidToken
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	if claims.Subject == "" || !strings.HasPrefix(claims.Issuer, IssuerPrefix) {
		return nil, core.ErrInvalidToken
	}

	session := &core.Session{
		ID:        claims.ID,
		UserID:    claims.Subject,
		Issuer:    claims.Issuer,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	return session, nil
}
