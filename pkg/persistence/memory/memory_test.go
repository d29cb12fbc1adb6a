package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/testutil"
)

func TestWorkflowRepository_CRUD(t *testing.T) {
	repo := NewPersistence().WorkflowRepository()
	ctx := context.Background()

	wf := testutil.CreateTestWorkflow(testutil.CreateTestNode(testutil.WithTriggerNode()))
	require.NoError(t, repo.Save(ctx, wf))

	loaded, err := repo.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.Name, loaded.Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, wf.ID))

	_, err = repo.GetByID(ctx, wf.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	require.ErrorIs(t, repo.Delete(ctx, wf.ID), persistence.ErrWorkflowNotFound)
}

func TestWorkflowRepository_ListOrderedByCreation(t *testing.T) {
	repo := NewPersistence().WorkflowRepository()
	ctx := context.Background()

	base := time.Now().UTC()

	offsets := map[string]time.Duration{
		"oldest": 0,
		"middle": time.Minute,
		"newest": 2 * time.Minute,
	}

	for id, offset := range offsets {
		wf := testutil.CreateTestWorkflow(testutil.CreateTestNode())
		wf.ID = id
		wf.CreatedAt = base.Add(offset)

		require.NoError(t, repo.Save(ctx, wf))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "oldest", all[0].ID)
	assert.Equal(t, "newest", all[2].ID)
}

func TestExecutionRepository_SaveAndGet(t *testing.T) {
	repo := NewPersistence().ExecutionRepository()
	ctx := context.Background()

	execution := &models.WorkflowExecution{
		ID:         "exec-1",
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusCompleted,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, execution))

	loaded, err := repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)

	_, err = repo.GetByID(ctx, "exec-2")
	require.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}

func TestExecutionRepository_ListByWorkflow(t *testing.T) {
	repo := NewPersistence().ExecutionRepository()
	ctx := context.Background()

	base := time.Now().UTC()

	for i := range 5 {
		require.NoError(t, repo.Save(ctx, &models.WorkflowExecution{
			ID:         "exec-" + string(rune('a'+i)),
			WorkflowID: "wf-1",
			StartedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	require.NoError(t, repo.Save(ctx, &models.WorkflowExecution{
		ID: "exec-other", WorkflowID: "wf-2", StartedAt: base,
	}))

	page, err := repo.ListByWorkflow(ctx, "wf-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "exec-e", page[0].ID, "newest first")

	rest, err := repo.ListByWorkflow(ctx, "wf-1", 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	none, err := repo.ListByWorkflow(ctx, "wf-1", 10, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHealthCheckAndClose(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.HealthCheck(context.Background()))
	require.NoError(t, store.Close(context.Background()))
}
