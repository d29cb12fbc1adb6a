// Package file provides file-based persistence implementation for
// workflows and execution records.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/flowgent/flowgent/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root       string
	workflows  *WorkflowRepository
	executions *ExecutionRepository
}

// NewPersistence creates a new instance with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:       cleanRoot,
		workflows:  NewWorkflowRepository(cleanRoot),
		executions: NewExecutionRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflows
}

func (fp *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return fp.executions
}
