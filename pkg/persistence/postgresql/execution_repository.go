package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence"
)

// ExecutionRepository handles execution-record database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `id, workflow_id, status, started_at, ended_at, duration_ms, steps, variables, result, error_message, logs, deployment_id, conversation_id, channel`

// Save upserts the execution record.
func (er *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	stepsJSON, err := json.Marshal(execution.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	variablesJSON, err := json.Marshal(execution.Variables)
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}

	resultJSON, err := json.Marshal(execution.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	logsJSON, err := json.Marshal(execution.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}

	query := `
		INSERT INTO executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			ended_at = EXCLUDED.ended_at,
			duration_ms = EXCLUDED.duration_ms,
			steps = EXCLUDED.steps,
			variables = EXCLUDED.variables,
			result = EXCLUDED.result,
			error_message = EXCLUDED.error_message,
			logs = EXCLUDED.logs
	`

	_, err = er.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.Status,
		execution.StartedAt,
		execution.EndedAt,
		execution.Duration.Milliseconds(),
		stepsJSON,
		variablesJSON,
		resultJSON,
		execution.Error,
		logsJSON,
		execution.DeploymentID,
		execution.ConversationID,
		execution.Channel,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

// GetByID returns one execution record.
func (er *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE id = $1`

	execution, err := scanExecution(er.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrExecutionNotFound
	}

	return execution, err
}

// ListByWorkflow returns the workflow's execution history, most recent first.
func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit, offset int) ([]*models.WorkflowExecution, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + executionColumns + `
		FROM executions WHERE workflow_id = $1
		ORDER BY started_at DESC LIMIT $2 OFFSET $3`

	rows, err := er.db.QueryContext(ctx, query, workflowID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	return executions, nil
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution     models.WorkflowExecution
		durationMS    int64
		stepsJSON     []byte
		variablesJSON []byte
		resultJSON    []byte
		logsJSON      []byte
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.Status,
		&execution.StartedAt,
		&execution.EndedAt,
		&durationMS,
		&stepsJSON,
		&variablesJSON,
		&resultJSON,
		&execution.Error,
		&logsJSON,
		&execution.DeploymentID,
		&execution.ConversationID,
		&execution.Channel,
	)
	if err != nil {
		return nil, err
	}

	execution.Duration = time.Duration(durationMS) * time.Millisecond

	if err := json.Unmarshal(stepsJSON, &execution.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}

	if err := json.Unmarshal(variablesJSON, &execution.Variables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &execution.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	if err := json.Unmarshal(logsJSON, &execution.Logs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal logs: %w", err)
	}

	return &execution, nil
}
