// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors. Handlers map these to HTTP statuses.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrRecordNotFound     = errors.New("record not found")
	ErrForbidden          = errors.New("record belongs to another user")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidToken       = errors.New("invalid identity token")
	ErrArchiveDisabled    = errors.New("export archive is not configured")
	ErrSessionUnavailable = errors.New("session store unavailable")
)

// ValidationError describes the first invalid field of an input.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
