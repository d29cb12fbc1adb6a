// Package memory provides an in-memory persistence implementation,
// used by tests and as the default development wiring.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence"
)

// Persistence keeps workflows and execution records in process memory.
type Persistence struct {
	workflows  *workflowRepository
	executions *executionRepository
}

// NewPersistence creates an empty in-memory store.
func NewPersistence() *Persistence {
	return &Persistence{
		workflows:  &workflowRepository{items: make(map[string]*models.Workflow)},
		executions: &executionRepository{items: make(map[string]*models.WorkflowExecution)},
	}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executions
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

type workflowRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Workflow
}

func (r *workflowRepository) List(_ context.Context) ([]*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(r.items))
	for _, wf := range r.items {
		workflows = append(workflows, wf)
	}

	sort.Slice(workflows, func(i, j int) bool { return workflows[i].CreatedAt.Before(workflows[j].CreatedAt) })

	return workflows, nil
}

func (r *workflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, ok := r.items[id]
	if !ok {
		return nil, persistence.ErrWorkflowNotFound
	}

	return wf, nil
}

func (r *workflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[workflow.ID] = workflow

	return nil
}

func (r *workflowRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return persistence.ErrWorkflowNotFound
	}

	delete(r.items, id)

	return nil
}

type executionRepository struct {
	mu    sync.RWMutex
	items map[string]*models.WorkflowExecution
}

func (r *executionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[execution.ID] = execution

	return nil
}

func (r *executionRepository) GetByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	execution, ok := r.items[id]
	if !ok {
		return nil, persistence.ErrExecutionNotFound
	}

	return execution, nil
}

func (r *executionRepository) ListByWorkflow(_ context.Context, workflowID string, limit, offset int) ([]*models.WorkflowExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.WorkflowExecution, 0)

	for _, execution := range r.items {
		if execution.WorkflowID == workflowID {
			matched = append(matched, execution)
		}
	}

	// Most recent first.
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
