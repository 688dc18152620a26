package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the standard claims of a session token: iat, iss, sub, exp and jti
type SessionClaims struct {
	jwt.RegisteredClaims
}
