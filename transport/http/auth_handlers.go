package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	auth         *service.AuthService
	registration *service.RegistrationService
	cookies      CookieConfig
	logger       *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth *service.AuthService, registration *service.RegistrationService, cookies CookieConfig, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		auth:         auth,
		registration: registration,
		cookies:      cookies,
		logger:       logger,
	}
}

// Challenge issues a WebAuthn registration challenge
func (h *AuthHandlers) Challenge(c *gin.Context) {
	challenge, err := h.auth.CreateChallenge(c.Request.Context())
	if err != nil {
		h.logger.Error("challenge generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to generate challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge":   base64.RawURLEncoding.EncodeToString(challenge.Bytes),
		"challengeId": challenge.ID,
	})
}

type registrationKind struct {
	Type string `json:"type"`
}

type passwordRegistrationRequest struct {
	Type     string `json:"type" validate:"required,eq=password"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type webauthnRegistrationRequest struct {
	Type         string   `json:"type" validate:"required,eq=webauthn"`
	Email        *string  `json:"email" validate:"omitempty,email"`
	CredentialID string   `json:"credentialId" validate:"required"`
	PublicKey    string   `json:"publicKey" validate:"required"`
	Counter      string   `json:"counter" validate:"required"`
	Transports   []string `json:"transports"`
	ChallengeID  string   `json:"challengeId" validate:"required"`
}

// Register creates an account from either registration variant and
// signs the new user in
func (h *AuthHandlers) Register(c *gin.Context) {
	body, err := readBody(c.Request.Body)
	if err != nil {
		respondError(c, h.logger, err, "Registration failed")
		return
	}

	var kind registrationKind
	if err := json.Unmarshal(body, &kind); err != nil {
		respondError(c, h.logger, core.NewValidationError(decodeIssue(err)), "Registration failed")
		return
	}

	var res *service.Registered
	switch kind.Type {
	case string(core.RegistrationPassword):
		var req passwordRegistrationRequest
		if err := decodeStrict(body, &req); err != nil {
			respondError(c, h.logger, err, "Registration failed")
			return
		}
		res, err = h.registration.RegisterPassword(c.Request.Context(), service.PasswordRegistration{
			Email:    req.Email,
			Password: req.Password,
		})

	case string(core.RegistrationWebAuthn):
		var req webauthnRegistrationRequest
		if err := decodeStrict(body, &req); err != nil {
			respondError(c, h.logger, err, "Registration failed")
			return
		}
		res, err = h.registration.RegisterWebAuthn(c.Request.Context(), service.WebAuthnRegistration{
			Email:        req.Email,
			CredentialID: req.CredentialID,
			PublicKey:    req.PublicKey,
			Counter:      req.Counter,
			Transports:   req.Transports,
			ChallengeID:  req.ChallengeID,
		})

	default:
		respondError(c, h.logger, core.NewValidationError(core.Issue{
			Field:   "type",
			Message: "Invalid discriminator value. Expected 'password' | 'webauthn'",
		}), "Registration failed")
		return
	}

	if err != nil {
		respondError(c, h.logger, err, "Registration failed")
		return
	}

	setSessionCookie(c, h.cookies, res.Token)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"userId":           res.User.ID,
		"registrationType": res.User.RegistrationType,
	})
}

// Logout clears the session cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("logout bookkeeping failed", zap.Error(err))
		}
	}

	clearSessionCookie(c, h.cookies)
	c.Status(http.StatusNoContent)
}
