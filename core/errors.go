package core

import "errors"

var (
	ErrTokenExpired  = errors.New("token has expired")
	ErrTokenRevoked  = errors.New("token has been revoked")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("signing secret is not configured")

	ErrChallengeNotFound = errors.New("invalid or expired challenge")

	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// Issue is a single field-level validation problem
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries itemized issues and matches ErrValidation
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + e.Issues[0].Field + ": " + e.Issues[0].Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError from field/message pairs
func NewValidationError(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}
