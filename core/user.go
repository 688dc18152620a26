package core

import "time"

// RegistrationType tells how an account was created
type RegistrationType string

const (
	RegistrationPassword RegistrationType = "password"
	RegistrationWebAuthn RegistrationType = "webauthn"
)

// User is an account owner. Password accounts carry a hash, passkey accounts
// carry one or more credentials instead.
type User struct {
	ID                    string
	Email                 *string
	PasswordHash          *string
	RegistrationType      RegistrationType
	CompletedRegistration bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Credential is a WebAuthn public key credential registered for a user
type Credential struct {
	ID         string
	UserID     string
	PublicKey  string
	Counter    string
	Transports []string
	CreatedAt  time.Time
}
