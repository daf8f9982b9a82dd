package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the service.

// ErrNotLoggedIn is returned by session operations while no user is logged in.
var ErrNotLoggedIn = errors.New("no active session")

// ErrConfirmationRequired is returned when a destructive action was not confirmed.
var ErrConfirmationRequired = errors.New("confirmation required")

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates malformed or missing input.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrPrecondition indicates a rule that must hold before an operation can run
// (goal target > 0, deposit > 0). State is never mutated when it is returned.
type ErrPrecondition struct {
	Rule string
}

func (e *ErrPrecondition) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Rule)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
