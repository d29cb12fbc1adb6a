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

const dirPerm = 0o755

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	root string
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

func (wr *WorkflowRepository) path(id string) string {
	return filepath.Join(wr.dir(), id+".json")
}

// List returns every stored workflow ordered by creation time.
func (wr *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	root := os.DirFS(wr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := file[:len(file)-5] // Remove .json extension

		workflow, err := wr.GetByID(ctx, workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool { return workflows[i].CreatedAt.Before(workflows[j].CreatedAt) })

	return workflows, nil
}

// GetByID loads one workflow from its JSON file.
func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(wr.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// Save writes the workflow to its JSON file, creating the directory on
// first use.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := os.MkdirAll(wr.dir(), dirPerm); err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	if err := os.WriteFile(wr.path(workflow.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write workflow file: %w", err)
	}

	return nil
}

// Delete removes the workflow's JSON file.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(wr.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return persistence.ErrWorkflowNotFound
	}

	return err
}
