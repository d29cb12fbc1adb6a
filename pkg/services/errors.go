// Package services provides the business logic layer between the HTTP
// API and the engine, registry, and persistence collaborators.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	ErrInvalidRequest = errors.New("invalid request")

	// Publishing validation errors (400 Bad Request).
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrNodesRequired        = errors.New("workflow must have at least one node")
	ErrTriggerNodeRequired  = errors.New("workflow must have at least one enabled trigger node")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")
	ErrWorkflowInvalid      = errors.New("workflow graph is invalid")

	// Execution errors.
	ErrWorkflowNotPublished = errors.New("workflow is not published")
	ErrExecutionNotRunning  = errors.New("execution is not running")

	// Business logic conflicts (409 Conflict).
	ErrCannotModifyPublished = errors.New("cannot modify published workflow")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrNodesRequired) ||
		errors.Is(err, ErrTriggerNodeRequired) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrWorkflowInvalid) ||
		errors.Is(err, ErrWorkflowNotPublished)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotModifyPublished) ||
		errors.Is(err, ErrExecutionNotRunning)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewConflictError creates a new conflict error with context. The
// wrapped sentinel must be one of the conflict errors so that
// IsConflictError classifies it.
func NewConflictError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
