package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence"
)

// ExecutionRepository handles execution-record file operations.
type ExecutionRepository struct {
	root string
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) dir() string {
	return filepath.Join(er.root, "executions")
}

func (er *ExecutionRepository) path(id string) string {
	return filepath.Join(er.dir(), id+".json")
}

// Save writes the execution record to its JSON file.
func (er *ExecutionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	if err := os.MkdirAll(er.dir(), dirPerm); err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	if err := os.WriteFile(er.path(execution.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write execution file: %w", err)
	}

	return nil
}

// GetByID loads one execution record.
func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	data, err := os.ReadFile(er.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to read execution file: %w", err)
	}

	var execution models.WorkflowExecution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("failed to parse execution %s: %w", id, err)
	}

	return &execution, nil
}

// ListByWorkflow returns the workflow's execution history, most recent
// first, paginated by limit and offset.
func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit, offset int) ([]*models.WorkflowExecution, error) {
	root := os.DirFS(er.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	matched := make([]*models.WorkflowExecution, 0)

	for _, file := range jsonFiles {
		execution, err := er.GetByID(ctx, file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		if execution.WorkflowID == workflowID {
			matched = append(matched, execution)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].StartedAt.After(matched[j].StartedAt) })

	if offset >= len(matched) {
		return []*models.WorkflowExecution{}, nil
	}

	matched = matched[offset:]

	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}
