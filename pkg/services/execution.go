package services

import (
	"context"
	"fmt"
	"time"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/workflow"
)

// ErrExecutionNotFound is returned when an execution record is not found.
var ErrExecutionNotFound = persistence.ErrExecutionNotFound

const (
	defaultExecutionTimeout = 5 * time.Minute
	defaultHistoryLimit     = 20
	maxHistoryLimit         = 100
)

// Execution coordinates workflow runs: it loads published definitions,
// drives the step runner, and exposes cancellation, history, and
// context inspection.
type Execution struct {
	persistence persistence.Persistence
	executor    *workflow.Executor
	scopes      *scope.Manager
}

// NewExecution creates a new execution service.
func NewExecution(persistence persistence.Persistence, executor *workflow.Executor, scopes *scope.Manager) *Execution {
	return &Execution{
		persistence: persistence,
		executor:    executor,
		scopes:      scopes,
	}
}

// ExecuteRequest carries the caller-supplied context for one run.
type ExecuteRequest struct {
	InputData      map[string]any `json:"input_data"`
	Variables      map[string]any `json:"variables"`
	Timeout        time.Duration  `json:"timeout"`
	DeploymentID   string         `json:"deployment_id"`
	ConversationID string         `json:"conversation_id"`
	Channel        string         `json:"channel"`
}

// ExecuteWorkflow runs a published workflow synchronously: the call
// returns only once the run has reached a terminal state.
func (s *Execution) ExecuteWorkflow(ctx context.Context, workflowID string, req ExecuteRequest) (*models.WorkflowExecution, error) {
	wf, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if wf == nil {
		return nil, ErrWorkflowNotFound
	}

	if wf.Status != models.WorkflowStatusPublished {
		return nil, NewValidationError(
			"ExecuteWorkflow",
			"WORKFLOW_NOT_PUBLISHED",
			fmt.Sprintf("workflow %s has status %q and cannot be executed", workflowID, wf.Status),
			ErrWorkflowNotPublished,
		)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultExecutionTimeout
	}

	execution := s.executor.Execute(ctx, wf, req.InputData, workflow.Options{
		Timeout:        timeout,
		Variables:      req.Variables,
		DeploymentID:   req.DeploymentID,
		ConversationID: req.ConversationID,
		Channel:        req.Channel,
	})

	return execution, nil
}

// CancelExecution requests cooperative cancellation of an in-flight
// run. Returns ErrExecutionNotRunning when no such run is in flight.
func (s *Execution) CancelExecution(ctx context.Context, executionID string) error {
	if s.executor.CancelExecution(executionID) {
		return nil
	}

	return NewConflictError(
		"CancelExecution",
		"EXECUTION_NOT_RUNNING",
		fmt.Sprintf("execution %s is not running", executionID),
		ErrExecutionNotRunning,
	)
}

// FetchExecution retrieves a finished execution record by its ID.
func (s *Execution) FetchExecution(ctx context.Context, executionID string) (*models.WorkflowExecution, error) {
	execution, err := s.persistence.ExecutionRepository().GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if execution == nil {
		return nil, ErrExecutionNotFound
	}

	return execution, nil
}

// GetExecutionHistory lists finished executions of a workflow, newest
// first.
func (s *Execution) GetExecutionHistory(ctx context.Context, workflowID string, limit, offset int) ([]*models.WorkflowExecution, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	if offset < 0 {
		offset = 0
	}

	executions, err := s.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return executions, nil
}

// GetAllVariables returns the merged variable view of a scope for
// debugging tools.
func (s *Execution) GetAllVariables(scopeID string) map[string]any {
	return s.scopes.AllVariables(scopeID)
}

// GetAccessLogs returns scope access log entries matching the filter.
func (s *Execution) GetAccessLogs(filter scope.LogFilter) []models.AccessLogEntry {
	return s.scopes.AccessLogs(filter)
}
