package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("identity already registered")
	ErrEmailTaken         = fmt.Errorf("email address already in use: %w", ErrDuplicateIdentity)
	ErrUsernameTaken      = fmt.Errorf("username already in use: %w", ErrDuplicateIdentity)
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRateLimited        = errors.New("rate limited")
)

// ValidationError indica que campo de la entrada es invalido.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// WeakPasswordError acompaña el rechazo con una sugerencia para el usuario.
type WeakPasswordError struct {
	Feedback string
}

func (e *WeakPasswordError) Error() string {
	if e.Feedback == "" {
		return ErrWeakPassword.Error()
	}
	return ErrWeakPassword.Error() + ": " + e.Feedback
}

func (e *WeakPasswordError) Unwrap() error { return ErrWeakPassword }
