package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDHeader carries the verified caller identity to downstream handlers.
// Only the gate may set it; inbound values are always discarded.
const UserIDHeader = "X-User-Id"

// SessionVerifier validates session tokens
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*core.Session, error)
}

type identityKey struct{}

// WithIdentity returns a context carrying a gate-verified user id
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// IdentityFromContext returns the user id verified by the gate, if any
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}

// Pattern matches request paths segment by segment. A segment starting
// with ':' matches exactly one non-empty path segment.
type Pattern struct {
	raw      string
	segments []string
}

// ParsePattern compiles a path pattern such as /api/bank-accounts/:id
func ParsePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("pattern %q must start with /", raw)
	}
	segments := strings.Split(raw[1:], "/")
	for _, s := range segments {
		if s == ":" {
			return Pattern{}, fmt.Errorf("pattern %q has an unnamed parameter", raw)
		}
	}
	return Pattern{raw: raw, segments: segments}, nil
}

// MustParsePattern is ParsePattern that panics on error
func MustParsePattern(raw string) Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) String() string { return p.raw }

// Match reports whether path matches the pattern. A single trailing slash
// on path is ignored.
func (p Pattern) Match(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	parts := strings.Split(path[1:], "/")
	if len(parts) != len(p.segments) {
		return false
	}
	for i, seg := range p.segments {
		if strings.HasPrefix(seg, ":") {
			if parts[i] == "" {
				return false
			}
			continue
		}
		if seg != parts[i] {
			return false
		}
	}
	return true
}

// Matcher binds a set of patterns to a handling strategy
type Matcher struct {
	Patterns []Pattern
	Handler  gin.HandlerFunc
}

func (m Matcher) matches(path string) bool {
	for _, p := range m.Patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// GateConfig lists gated paths and where unauthenticated callers go
type GateConfig struct {
	PathPatterns   []string
	RedirectTarget string
}

// Gate decides per request whether to forward it, with an injected
// identity header, or redirect it. Unmatched paths pass through.
type Gate struct {
	matchers []Matcher
	logger   *zap.Logger
}

// NewGate builds a gate with a single "require session" matcher over cfg.PathPatterns
func NewGate(verifier SessionVerifier, cfg GateConfig, logger *zap.Logger) (*Gate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	patterns := make([]Pattern, 0, len(cfg.PathPatterns))
	for _, raw := range cfg.PathPatterns {
		p, err := ParsePattern(raw)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	redirect := cfg.RedirectTarget
	if redirect == "" {
		redirect = "/auth/login"
	}

	g := &Gate{logger: logger}
	g.matchers = []Matcher{{
		Patterns: patterns,
		Handler:  RequireSession(verifier, redirect, logger),
	}}
	return g, nil
}

// NewGateWithMatchers builds a gate from an explicit ordered matcher list
func NewGateWithMatchers(matchers []Matcher, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{matchers: matchers, logger: logger}
}

// Middleware returns the gin handler running the gate
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Header.Del(UserIDHeader)

		path := c.Request.URL.Path
		for _, m := range g.matchers {
			if m.matches(path) {
				m.Handler(c)
				return
			}
		}

		metrics.RecordGateDecision(metrics.GatePassthrough)
		c.Next()
	}
}

// RequireSession forwards requests carrying a valid session cookie and
// redirects everything else to redirectTarget
func RequireSession(verifier SessionVerifier, redirectTarget string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := IdentityFromContext(c.Request.Context())
		if !ok {
			token, err := c.Cookie(SessionCookieName)
			if err != nil || token == "" {
				redirect(c, redirectTarget)
				return
			}

			session, err := verifier.VerifySession(c.Request.Context(), token)
			if err != nil {
				logger.Debug("session rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
				redirect(c, redirectTarget)
				return
			}
			userID = session.UserID
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), userID))
		}

		c.Request.Header.Set(UserIDHeader, userID)
		metrics.RecordGateDecision(metrics.GateForwarded)
		c.Next()
	}
}

func redirect(c *gin.Context, target string) {
	metrics.RecordGateDecision(metrics.GateRedirected)
	c.Redirect(http.StatusTemporaryRedirect, target)
	c.Abort()
}
