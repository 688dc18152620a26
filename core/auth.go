package core

import "time"

// Challenge represents a single-use WebAuthn registration challenge
type Challenge struct {
	ID        string    // Random hex identifier handed to the client
	Bytes     []byte    // Random challenge bytes for the credential-creation ceremony
	ExpiresAt time.Time // After this instant the challenge is treated as absent
}

// Expired reports whether the challenge is past its expiry at the given instant
func (c Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Session represents a verified session token
type Session struct {
	ID        string    // Token identifier (jti)
	UserID    string    // Subject of the token
	Issuer    string    // Issuer, carries the build version
	IssuedAt  time.Time // When the token was minted
	ExpiresAt time.Time // Fixed at issuance, never refreshed
}
