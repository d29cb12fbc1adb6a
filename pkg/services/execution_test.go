package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence/memory"
	"github.com/flowgent/flowgent/pkg/registry"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/testutil"
	"github.com/flowgent/flowgent/pkg/workflow"
)

func newExecutionService() (*Execution, *memory.Persistence) {
	store := memory.NewPersistence()
	scopes := scope.NewManager(slog.Default())

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultNodes()

	executor := workflow.NewExecutor(scopes, reg, slog.Default(),
		workflow.WithExecutionRepository(store.ExecutionRepository()))

	return NewExecution(store, executor, scopes), store
}

func publishedWorkflow(t *testing.T, store *memory.Persistence) *models.Workflow {
	t.Helper()

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode()),
		testutil.CreateTestNode(),
	)
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), wf))

	return wf
}

func TestExecuteWorkflow_RunsPublishedWorkflow(t *testing.T) {
	service, store := newExecutionService()
	wf := publishedWorkflow(t, store)

	execution, err := service.ExecuteWorkflow(context.Background(), wf.ID, ExecuteRequest{
		InputData: map[string]any{"text": "hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Len(t, execution.Steps, 2)

	saved, err := service.FetchExecution(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ID, saved.ID)
}

func TestExecuteWorkflow_UnknownWorkflow(t *testing.T) {
	service, _ := newExecutionService()

	_, err := service.ExecuteWorkflow(context.Background(), "nope", ExecuteRequest{})
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestExecuteWorkflow_RequiresPublishedStatus(t *testing.T) {
	service, store := newExecutionService()

	for _, status := range []models.WorkflowStatus{models.WorkflowStatusDraft, models.WorkflowStatusUnpublished} {
		wf := testutil.CreateTestWorkflow(testutil.CreateTestNode(testutil.WithTriggerNode()))
		wf.Status = status
		require.NoError(t, store.WorkflowRepository().Save(context.Background(), wf))

		_, err := service.ExecuteWorkflow(context.Background(), wf.ID, ExecuteRequest{})
		require.ErrorIs(t, err, ErrWorkflowNotPublished, "status %s", status)
		assert.True(t, IsValidationError(err))
	}
}

func TestExecuteWorkflow_SeedsCallerVariables(t *testing.T) {
	service, store := newExecutionService()
	wf := publishedWorkflow(t, store)

	execution, err := service.ExecuteWorkflow(context.Background(), wf.ID, ExecuteRequest{
		Variables: map[string]any{"user_name": "Ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "Ada", execution.Variables["user_name"])
}

func TestCancelExecution_NotRunning(t *testing.T) {
	service, _ := newExecutionService()

	err := service.CancelExecution(context.Background(), "exec-nope")
	require.ErrorIs(t, err, ErrExecutionNotRunning)
	assert.True(t, IsConflictError(err))
}

func TestFetchExecution_NotFound(t *testing.T) {
	service, _ := newExecutionService()

	_, err := service.FetchExecution(context.Background(), "exec-nope")
	require.ErrorIs(t, err, ErrExecutionNotFound)
}

func TestGetExecutionHistory_LimitsAndOrder(t *testing.T) {
	service, store := newExecutionService()

	base := time.Now().UTC()

	for i := range 5 {
		execution := &models.WorkflowExecution{
			ID:         "exec-" + string(rune('a'+i)),
			WorkflowID: "wf-1",
			Status:     models.ExecutionStatusCompleted,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.ExecutionRepository().Save(context.Background(), execution))
	}

	history, err := service.GetExecutionHistory(context.Background(), "wf-1", 3, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "exec-e", history[0].ID, "newest first")

	rest, err := service.GetExecutionHistory(context.Background(), "wf-1", 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	all, err := service.GetExecutionHistory(context.Background(), "wf-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5, "zero limit falls back to the default")
}

func TestGetAccessLogs_FiltersByExecution(t *testing.T) {
	service, store := newExecutionService()
	wf := publishedWorkflow(t, store)

	execution, err := service.ExecuteWorkflow(context.Background(), wf.ID, ExecuteRequest{
		Variables: map[string]any{"seed": 1},
	})
	require.NoError(t, err)

	logs := service.GetAccessLogs(scope.LogFilter{ExecutionID: execution.ID})
	assert.NotEmpty(t, logs)
}
