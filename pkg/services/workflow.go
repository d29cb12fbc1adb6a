package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/workflow"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow provides workflow definition management.
type Workflow struct {
	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{
		persistence: persistence,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves all workflow definitions.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	wf, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if wf == nil {
		return nil, ErrWorkflowNotFound
	}

	return wf, nil
}

// Create adds a new workflow to the repository.
func (w *Workflow) Create(ctx context.Context, wf *models.Workflow) (*models.Workflow, error) {
	if wf == nil {
		return nil, ErrWorkflowNil
	}

	if wf.Name == "" {
		return nil, ErrWorkflowNameRequired
	}

	now := time.Now().UTC()
	wf.ID = uuid.New().String()
	wf.CreatedAt = now
	wf.UpdatedAt = now

	if wf.Status == "" {
		wf.Status = models.WorkflowStatusDraft
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return wf, nil
}

// Update modifies an existing workflow by its ID. Published workflows
// are immutable; unpublish or create a new draft instead.
func (w *Workflow) Update(ctx context.Context, workflowID string, wf *models.Workflow) (*models.Workflow, error) {
	if wf == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, ErrWorkflowNotFound
	}

	if existing.Status == models.WorkflowStatusPublished {
		return nil, ErrCannotModifyPublished
	}

	wf.ID = workflowID
	wf.Status = existing.Status
	wf.CreatedAt = existing.CreatedAt
	wf.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return wf, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrWorkflowNotFound
	}

	if err := w.persistence.WorkflowRepository().Delete(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// Validate runs graph validation on a stored workflow without
// executing it.
func (w *Workflow) Validate(ctx context.Context, workflowID string) (workflow.ValidationResult, error) {
	wf, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return workflow.ValidationResult{}, err
	}

	return workflow.Validate(wf), nil
}

// Publish transitions a draft workflow to published after checking
// that its graph is executable.
func (w *Workflow) Publish(ctx context.Context, workflowID string) (*models.Workflow, error) {
	wf, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := w.validateForPublishing(wf); err != nil {
		return nil, err
	}

	wf.Status = models.WorkflowStatusPublished
	wf.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to publish workflow: %w", err)
	}

	return wf, nil
}

// Unpublish transitions a published workflow to unpublished.
func (w *Workflow) Unpublish(ctx context.Context, workflowID string) (*models.Workflow, error) {
	wf, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	wf.Status = models.WorkflowStatusUnpublished
	wf.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to unpublish workflow: %w", err)
	}

	return wf, nil
}

func (w *Workflow) validateForPublishing(wf *models.Workflow) error {
	if wf.Name == "" {
		return ErrWorkflowNameRequired
	}

	if len(wf.Nodes) == 0 {
		return ErrNodesRequired
	}

	if wf.FirstTriggerNode() == nil {
		return ErrTriggerNodeRequired
	}

	if result := workflow.Validate(wf); !result.Valid {
		return NewValidationError(
			"Publish",
			"WORKFLOW_INVALID",
			result.ErrorSummary(),
			ErrWorkflowInvalid,
		)
	}

	return nil
}
