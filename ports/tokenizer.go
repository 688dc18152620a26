package ports

import "github.com/fidena/fidena/core"

// Tokenizer converts between sessions and signed tokens
type Tokenizer interface {
	// SessionToToken signs the session into an opaque token string
	SessionToToken(session *core.Session) (string, error)

	// TokenToSession verifies signature, expiry and issuer and returns the session
	TokenToSession(token string) (*core.Session, error)
}
