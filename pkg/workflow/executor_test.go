package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence/memory"
	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/registry"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/testutil"
)

type stubHandler func(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error)

func (f stubHandler) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	return f(ctx, input, execCtx)
}

type stubRegistry struct {
	handlers map[models.NodeType]protocol.NodeHandler
}

func (r *stubRegistry) CreateNodeInstance(_ context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	handler, ok := r.handlers[node.Type]
	if !ok {
		return nil, fmt.Errorf("node type '%s' not registered", node.Type)
	}

	return handler, nil
}

func passthrough(_ context.Context, input map[string]any, _ protocol.ExecutionContext) (map[string]any, error) {
	return input, nil
}

func newTestExecutor(registry HandlerRegistry, opts ...ExecutorOption) *Executor {
	return NewExecutor(scope.NewManager(slog.Default()), registry, slog.Default(), opts...)
}

func TestExecute_LinearWorkflowCompletes(t *testing.T) {
	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
		"log": stubHandler(func(_ context.Context, _ map[string]any, _ protocol.ExecutionContext) (map[string]any, error) {
			return map[string]any{"message": "done"}, nil
		}),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b")),
		testutil.CreateTestNode(testutil.WithID("c")),
	)

	execution := newTestExecutor(registry).Execute(context.Background(), wf, map[string]any{"text": "hi"}, Options{})

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Steps, 3)

	for _, step := range execution.Steps {
		assert.Equal(t, models.StepStatusCompleted, step.Status)
	}

	assert.Equal(t, map[string]any{"message": "done"}, execution.Result)
	require.NotNil(t, execution.EndedAt)
	assert.GreaterOrEqual(t, execution.Duration, time.Duration(0))
}

func TestExecute_FailureStopsRemainingNodes(t *testing.T) {
	var ran []string

	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
		"log": stubHandler(func(_ context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
			ran = append(ran, execCtx.ExecutionID)

			return nil, fmt.Errorf("boom")
		}),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b")),
		testutil.CreateTestNode(testutil.WithID("c")),
	)

	execution := newTestExecutor(registry).Execute(context.Background(), wf, nil, Options{})

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "boom", execution.Error)
	require.Len(t, execution.Steps, 2, "node c must not run after b fails")
	assert.Equal(t, models.StepStatusFailed, execution.Steps[1].Status)
	assert.Len(t, ran, 1)
}

func TestExecute_ContinueOnErrorKeepsGoing(t *testing.T) {
	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
		"flaky": stubHandler(func(_ context.Context, _ map[string]any, _ protocol.ExecutionContext) (map[string]any, error) {
			return nil, fmt.Errorf("transient failure")
		}),
		"log": stubHandler(passthrough),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b"),
			testutil.WithType("flaky", models.CategoryTypeActions),
			testutil.WithContinueOnError()),
		testutil.CreateTestNode(testutil.WithID("c")),
	)

	execution := newTestExecutor(registry).Execute(context.Background(), wf, nil, Options{})

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Empty(t, execution.Error)
	require.Len(t, execution.Steps, 3)
	assert.Equal(t, models.StepStatusFailed, execution.Steps[1].Status)
	assert.Equal(t, models.StepStatusCompleted, execution.Steps[2].Status)
}

func TestExecute_TimeoutBetweenSteps(t *testing.T) {
	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(func(_ context.Context, input map[string]any, _ protocol.ExecutionContext) (map[string]any, error) {
			time.Sleep(50 * time.Millisecond)

			return input, nil
		}),
		"log": stubHandler(passthrough),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b")),
	)

	execution := newTestExecutor(registry).Execute(context.Background(), wf, nil, Options{Timeout: 10 * time.Millisecond})

	assert.Equal(t, models.ExecutionStatusTimeout, execution.Status)
	assert.Contains(t, execution.Error, "timeout")
	require.Len(t, execution.Steps, 1, "second node must not start after the deadline")
}

func TestExecute_CancelledContext(t *testing.T) {
	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	execution := newTestExecutor(registry).Execute(ctx, wf, nil, Options{})

	assert.Equal(t, models.ExecutionStatusCancelled, execution.Status)
	assert.Empty(t, execution.Steps)
}

func TestCancelExecution_UnknownRun(t *testing.T) {
	executor := newTestExecutor(&stubRegistry{})

	assert.False(t, executor.CancelExecution("exec-nope"))
}

func TestExecute_ValidationFailure(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithID("a")),
	)

	execution := newTestExecutor(&stubRegistry{}).Execute(context.Background(), wf, nil, Options{})

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Contains(t, execution.Error, "validation failed")
}

func TestExecute_UnknownNodeTypeFailsStep(t *testing.T) {
	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b"),
			testutil.WithType("alien", models.CategoryTypeActions)),
	)

	execution := newTestExecutor(registry).Execute(context.Background(), wf, nil, Options{})

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Contains(t, execution.Error, "alien")
}

func TestExecute_DisabledNodeSkipped(t *testing.T) {
	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
		"log":                  stubHandler(passthrough),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b"), testutil.WithDisabled()),
		testutil.CreateTestNode(testutil.WithID("c")),
	)

	execution := newTestExecutor(registry).Execute(context.Background(), wf, nil, Options{})

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Steps, 3)
	assert.Equal(t, models.StepStatusSkipped, execution.Steps[1].Status)
	assert.Equal(t, models.StepStatusCompleted, execution.Steps[2].Status)
}

func TestExecute_InputPrecedence(t *testing.T) {
	var observed map[string]any

	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
		"log": stubHandler(func(_ context.Context, input map[string]any, _ protocol.ExecutionContext) (map[string]any, error) {
			observed = input

			return input, nil
		}),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b"),
			testutil.WithConfig(map[string]any{"mode": "from-config"})),
	)
	wf.Variables = map[string]any{"mode": "from-workflow", "declared": true}

	execution := newTestExecutor(registry).Execute(
		context.Background(),
		wf,
		map[string]any{"mode": "from-input", "text": "hi"},
		Options{Variables: map[string]any{"mode": "from-options"}},
	)

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.NotNil(t, observed)

	// Node configuration wins over everything else.
	assert.Equal(t, "from-config", observed["mode"])
	// Scope variables reflect the last seed: defaults < options < trigger input.
	assert.Equal(t, "from-input", execution.Variables["mode"])
	assert.Equal(t, true, observed["declared"])
	assert.Equal(t, "hi", observed["text"])
}

func TestExecute_VariablesWrittenByHandlerSurviveRun(t *testing.T) {
	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
		"log": stubHandler(func(_ context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
			require.NoError(t, execCtx.Variables.Set("touched", true))

			return input, nil
		}),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b")),
	)

	execution := newTestExecutor(registry).Execute(context.Background(), wf, nil, Options{})

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, true, execution.Variables["touched"])
}

func TestExecute_PersistsRecord(t *testing.T) {
	repo := memory.NewPersistence().ExecutionRepository()

	registry := &stubRegistry{handlers: map[models.NodeType]protocol.NodeHandler{
		models.NodeTypeTrigger: stubHandler(passthrough),
	}}

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
	)

	executor := newTestExecutor(registry, WithExecutionRepository(repo))
	execution := executor.Execute(context.Background(), wf, nil, Options{})

	saved, err := repo.GetByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, saved.Status)
	assert.Equal(t, wf.ID, saved.WorkflowID)
}

func TestExecute_KeywordConditionRoutesChatMessage(t *testing.T) {
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultNodes()

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("incoming")),
		testutil.CreateTestNode(
			testutil.WithID("wants-help"),
			testutil.WithType(models.NodeTypeCondition, models.CategoryTypeFlow),
			testutil.WithConfig(map[string]any{"condition": `{{contains .input.message "help"}}`}),
		),
		testutil.CreateTestNode(
			testutil.WithID("reply"),
			testutil.WithType(models.NodeTypeAction, models.CategoryTypeActions),
			testutil.WithConfig(map[string]any{"expression": "Happy to help! What do you need?"}),
		),
	)

	execution := newTestExecutor(reg).Execute(context.Background(), wf,
		map[string]any{"message": "I need help with my order"}, Options{})

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Steps, 3)
	assert.Equal(t, "incoming", execution.Steps[0].NodeID)
	assert.Equal(t, "wants-help", execution.Steps[1].NodeID)
	assert.Equal(t, "reply", execution.Steps[2].NodeID)

	for _, step := range execution.Steps {
		assert.Equal(t, models.StepStatusCompleted, step.Status)
	}

	assert.Equal(t, true, execution.Steps[1].Output["condition_result"])
	assert.Equal(t, "Happy to help! What do you need?", execution.Result["data"])
}
