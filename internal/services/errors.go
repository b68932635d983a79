package services

import (
	"errors"
	"fmt"

	"github.com/itgc-audit/backend/internal/repositories"
)

var (
	ErrNotFound           = repositories.ErrNotFound
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrProfileExists      = errors.New("actor already has a profile")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrValidation         = errors.New("validation failed")
)

// ObservationError means a mutation could not be recorded in the change trail.
// The mutation has been rolled back.
type ObservationError struct {
	EntityKind string
	EntityID   int64
	ChangeType string
	Err        error
}

func (e *ObservationError) Error() string {
	return fmt.Sprintf("record %s of %s %d: %v", e.ChangeType, e.EntityKind, e.EntityID, e.Err)
}

func (e *ObservationError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
