package persistence

import "errors"

var (
	// ErrWorkflowNotFound is returned when a workflow does not exist.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound is returned when an execution record does not exist.
	ErrExecutionNotFound = errors.New("execution not found")
)

// IsWorkflowNotFound checks if an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates a missing execution record.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
