package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
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

// ErrLevelLocked indicates the active user's level is below the mission's
// minimum level.
type ErrLevelLocked struct {
	Required int
	Current  int
}

func (e *ErrLevelLocked) Error() string {
	return fmt.Sprintf("level %d required (current %d)", e.Required, e.Current)
}

// ErrNoSession indicates an operation that needs an active user was
// called on an anonymous session.
type ErrNoSession struct {
	Operation string
}

func (e *ErrNoSession) Error() string {
	return fmt.Sprintf("no active session for %s", e.Operation)
}

// ErrDuplicate indicates the entity already exists (e.g. friend by id).
type ErrDuplicate struct {
	Resource string
	ID       string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Resource, e.ID)
}

// ErrStoreNotReady indicates the store has not finished its initial load.
type ErrStoreNotReady struct{}

func (e *ErrStoreNotReady) Error() string {
	return "store not ready: initial load pending"
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

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}
