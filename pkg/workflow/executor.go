package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flowgent/flowgent/pkg/eventbus"
	"github.com/flowgent/flowgent/pkg/events"
	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/otelhelper"
	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HandlerRegistry resolves a node handler for a node instance. The
// node handler registry is an external collaborator; the engine only
// consumes this interface.
type HandlerRegistry interface {
	CreateNodeInstance(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error)
}

// Options control one call to Execute.
type Options struct {
	Timeout        time.Duration  // Wall-clock budget, checked between steps; zero means unbounded
	Variables      map[string]any // Seed variables for the run scope
	DeploymentID   string
	ConversationID string
	Channel        string
}

// Executor is the step runner: it consumes the plan, drives the scope
// manager, dispatches to node handlers, and produces the execution
// record. One Executor serves many concurrent Execute calls; each call
// drives its own plan strictly sequentially.
type Executor struct {
	scopes     *scope.Manager
	registry   HandlerRegistry
	executions persistence.ExecutionRepository
	eventBus   eventbus.EventPublisher
	tracer     trace.Tracer
	logger     *slog.Logger

	mu       sync.Mutex
	inflight map[string]*inflightRun
}

type inflightRun struct {
	mu        sync.Mutex
	cancelled bool
}

func (r *inflightRun) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
}

func (r *inflightRun) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cancelled
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutionRepository sets the best-effort persistence sink for
// finished execution records.
func WithExecutionRepository(repo persistence.ExecutionRepository) ExecutorOption {
	return func(e *Executor) { e.executions = repo }
}

// WithEventPublisher sets the bus lifecycle events are published to.
func WithEventPublisher(bus eventbus.EventPublisher) ExecutorOption {
	return func(e *Executor) { e.eventBus = bus }
}

// NewExecutor creates a step runner over the given scope manager and
// handler registry.
func NewExecutor(scopes *scope.Manager, registry HandlerRegistry, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		scopes:   scopes,
		registry: registry,
		tracer:   otel.Tracer("flowgent/workflow"),
		logger:   logger.With("module", "workflow_executor"),
		inflight: make(map[string]*inflightRun),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// CancelExecution requests cancellation of an in-flight run. It is
// cooperative: the runner checks the flag at plan-step boundaries, so
// a handler already in flight finishes first. Returns false when no
// such execution is running.
func (e *Executor) CancelExecution(executionID string) bool {
	e.mu.Lock()
	run, ok := e.inflight[executionID]
	e.mu.Unlock()

	if !ok {
		return false
	}

	run.cancel()

	return true
}

// Execute runs the workflow against the input and returns a complete
// execution record with a terminal status. No error escapes: every
// failure mode is expressed on the record itself.
func (e *Executor) Execute(ctx context.Context, wf *models.Workflow, inputData map[string]any, options Options) *models.WorkflowExecution {
	execution := &models.WorkflowExecution{
		ID:             "exec-" + uuid.New().String()[:8],
		WorkflowID:     wf.ID,
		Status:         models.ExecutionStatusPending,
		StartedAt:      time.Now().UTC(),
		Steps:          make([]*models.ExecutionStep, 0),
		DeploymentID:   options.DeploymentID,
		ConversationID: options.ConversationID,
		Channel:        options.Channel,
	}
	execution.Transition(models.ExecutionStatusRunning)

	logger := e.logger.With("workflow_id", wf.ID, "execution_id", execution.ID)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	run := &inflightRun{}

	e.mu.Lock()
	e.inflight[execution.ID] = run
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.inflight, execution.ID)
		e.mu.Unlock()
	}()

	validation := Validate(wf)
	if !validation.Valid {
		e.fail(execution, fmt.Sprintf("workflow validation failed: %s", validation.Errors[0].Message))
		e.finish(ctx, execution, logger)

		return execution
	}

	trigger := wf.FirstTriggerNode()
	if trigger == nil {
		e.fail(execution, "workflow has no enabled trigger node")
		e.finish(ctx, execution, logger)

		return execution
	}

	plan, err := Plan(wf, trigger.ID)
	if err != nil {
		e.fail(execution, fmt.Sprintf("failed to plan execution: %v", err))
		e.finish(ctx, execution, logger)

		return execution
	}

	runScopeID, err := e.setupScopes(wf, execution, inputData, options)
	if err != nil {
		e.fail(execution, fmt.Sprintf("failed to set up execution scopes: %v", err))
		e.finish(ctx, execution, logger)

		return execution
	}

	e.publish(ctx, events.ExecutionStarted{
		BaseEvent:     events.NewBaseEvent(events.ExecutionStartedEvent, wf.ID, execution.ID),
		TriggerNodeID: trigger.ID,
		InputData:     inputData,
	})

	logger.Info("Starting execution", "plan_size", len(plan), "trigger_node", trigger.ID)

	e.runPlan(ctx, wf, execution, plan, runScopeID, options, run, logger)

	if execution.Status == models.ExecutionStatusRunning {
		execution.Transition(models.ExecutionStatusCompleted)
	}

	execution.Variables = e.scopes.AllVariables(runScopeID)

	e.finish(ctx, execution, logger)

	return execution
}

// setupScopes lazily creates the conversation scope (when a
// conversation id was supplied) and the per-run workflow scope, then
// seeds the run scope with declared defaults, caller variables, and
// the trigger input.
func (e *Executor) setupScopes(wf *models.Workflow, execution *models.WorkflowExecution, inputData map[string]any, options Options) (string, error) {
	parentID := ""

	if options.ConversationID != "" {
		conversation, err := e.scopes.EnsureScope(
			"conversation_"+options.ConversationID,
			options.ConversationID,
			models.ScopeTypeConversation,
			"",
			map[string]any{"channel": options.Channel},
		)
		if err != nil {
			return "", err
		}

		parentID = conversation.ID
	}

	runScope, err := e.scopes.EnsureScope(
		fmt.Sprintf("workflow_%s_%s", wf.ID, execution.ID),
		wf.Name,
		models.ScopeTypeWorkflow,
		parentID,
		map[string]any{"deployment_id": options.DeploymentID},
	)
	if err != nil {
		return "", err
	}

	seed := func(source map[string]any) {
		for name, value := range source {
			e.scopes.SetVariable(runScope.ID, name, value, scope.SetOptions{ExecutionID: execution.ID})
		}
	}

	seed(wf.Variables)
	seed(options.Variables)
	seed(inputData)

	return runScope.ID, nil
}

func (e *Executor) runPlan(
	ctx context.Context,
	wf *models.Workflow,
	execution *models.WorkflowExecution,
	plan []string,
	runScopeID string,
	options Options,
	run *inflightRun,
	logger *slog.Logger,
) {
	outputs := make(map[string]map[string]any, len(plan))

	var lastOutput map[string]any

	for _, nodeID := range plan {
		if run.isCancelled() || ctx.Err() != nil {
			execution.Transition(models.ExecutionStatusCancelled)
			execution.AppendLog(models.LogLevelInfo, nodeID, "execution cancelled before node "+nodeID)
			logger.Info("Execution cancelled", "node_id", nodeID)

			return
		}

		if options.Timeout > 0 && time.Since(execution.StartedAt) > options.Timeout {
			execution.Transition(models.ExecutionStatusTimeout)
			execution.Error = fmt.Sprintf("execution exceeded timeout of %s", options.Timeout)
			execution.AppendLog(models.LogLevelError, nodeID, execution.Error)
			logger.Warn("Execution timed out", "node_id", nodeID, "timeout", options.Timeout)

			return
		}

		node := wf.NodeByID(nodeID)
		if node == nil {
			e.fail(execution, fmt.Sprintf("planned node %s not found in workflow", nodeID))

			return
		}

		if !node.Enabled {
			step := newStep(node)
			step.Finish(models.StepStatusSkipped)
			execution.Steps = append(execution.Steps, step)
			execution.AppendLog(models.LogLevelInfo, node.ID, "node disabled, skipped")

			continue
		}

		step := newStep(node)
		execution.Steps = append(execution.Steps, step)

		output, err := e.runStep(ctx, wf, node, step, execution, outputs, runScopeID, logger)
		if err != nil {
			step.Error = err.Error()
			step.Finish(models.StepStatusFailed)

			e.publish(ctx, events.StepFailed{
				BaseEvent:       events.NewBaseEvent(events.StepFailedEvent, wf.ID, execution.ID),
				NodeID:          node.ID,
				NodeType:        string(node.Type),
				Error:           err.Error(),
				ContinueOnError: node.ContinueOnError,
			})

			if node.ContinueOnError {
				execution.AppendLog(models.LogLevelWarning, node.ID,
					fmt.Sprintf("node failed but is configured to continue: %v", err))
				logger.Warn("Node failed, continuing", "node_id", node.ID, "error", err)

				continue
			}

			execution.Error = err.Error()
			execution.Transition(models.ExecutionStatusFailed)
			execution.AppendLog(models.LogLevelError, node.ID, err.Error())
			logger.Error("Node failed, stopping execution", "node_id", node.ID, "error", err)

			return
		}

		outputs[node.ID] = output
		lastOutput = output
		step.Output = output
		step.Finish(models.StepStatusCompleted)
		execution.AppendLog(models.LogLevelInfo, node.ID,
			fmt.Sprintf("node %s completed in %s", node.ID, step.Duration))
	}

	execution.Result = lastOutput
}

// runStep assembles the node input, resolves the handler, and invokes
// it. The handler call is the only suspension point; the runner blocks
// until it returns.
func (e *Executor) runStep(
	ctx context.Context,
	wf *models.Workflow,
	node *models.WorkflowNode,
	step *models.ExecutionStep,
	execution *models.WorkflowExecution,
	outputs map[string]map[string]any,
	runScopeID string,
	logger *slog.Logger,
) (map[string]any, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.step",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	handler, err := e.registry.CreateNodeInstance(ctx, node)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("unknown node type %q: %w", node.Type, err)
	}

	input := e.assembleInput(wf, node, outputs, runScopeID)
	step.Input = input

	execCtx := protocol.ExecutionContext{
		ExecutionID:    execution.ID,
		WorkflowID:     wf.ID,
		DeploymentID:   execution.DeploymentID,
		ConversationID: execution.ConversationID,
		Channel:        execution.Channel,
		Variables:      e.scopes.Bind(runScopeID, node.ID, execution.ID),
		Logger:         logger.With("node_id", node.ID, "node_type", node.Type),
	}

	output, err := handler.Execute(ctx, input, execCtx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return output, nil
}

// assembleInput merges, in order of increasing precedence: the cached
// outputs of upstream nodes, the full context-variable set of the run
// scope, and the node's own configuration.
func (e *Executor) assembleInput(wf *models.Workflow, node *models.WorkflowNode, outputs map[string]map[string]any, runScopeID string) map[string]any {
	input := make(map[string]any)

	for _, conn := range wf.Connections {
		if conn.TargetNodeID() != node.ID {
			continue
		}

		if upstream, ok := outputs[conn.SourceNodeID()]; ok {
			for k, v := range upstream {
				input[k] = v
			}
		}
	}

	for k, v := range e.scopes.AllVariables(runScopeID) {
		input[k] = v
	}

	for k, v := range node.Config {
		input[k] = v
	}

	return input
}

func newStep(node *models.WorkflowNode) *models.ExecutionStep {
	return &models.ExecutionStep{
		NodeID:    node.ID,
		NodeName:  node.Name,
		NodeType:  node.Type,
		Status:    models.StepStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

func (e *Executor) fail(execution *models.WorkflowExecution, message string) {
	execution.Error = message
	execution.Transition(models.ExecutionStatusFailed)
	execution.AppendLog(models.LogLevelError, "", message)
}

// finish stamps the record terminal, persists it best-effort, and
// publishes the matching lifecycle event. Persistence failures are
// logged but never change the already-decided status.
func (e *Executor) finish(ctx context.Context, execution *models.WorkflowExecution, logger *slog.Logger) {
	if execution.EndedAt == nil {
		now := time.Now().UTC()
		execution.EndedAt = &now
		execution.Duration = now.Sub(execution.StartedAt)
	}

	if eventType := events.FinishedEventType(execution.Status); eventType != "" {
		e.publish(ctx, events.ExecutionFinished{
			BaseEvent: events.NewBaseEvent(eventType, execution.WorkflowID, execution.ID),
			Status:    execution.Status,
			Duration:  execution.Duration,
			Error:     execution.Error,
		})
	}

	if e.executions != nil {
		// The caller's context may already be cancelled or past its
		// deadline; the record still has to be saved.
		if err := e.executions.Save(context.WithoutCancel(ctx), execution); err != nil {
			logger.Error("Failed to persist execution record", "error", err)
		}
	}

	logger.Info("Execution finished",
		"status", execution.Status,
		"steps", len(execution.Steps),
		"duration", execution.Duration,
	)
}

func (e *Executor) publish(ctx context.Context, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	if err := e.eventBus.Publish(ctx, events.Topic, event); err != nil {
		e.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
