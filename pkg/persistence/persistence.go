// Package persistence provides the data storage abstraction layer for
// workflow definitions and execution records.
package persistence

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
)

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores finished execution records. Save is
// called best-effort by the step runner; a failure never changes an
// execution's already-decided status.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	ListByWorkflow(ctx context.Context, workflowID string, limit, offset int) ([]*models.WorkflowExecution, error)
}

// Persistence aggregates the repositories behind one backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
