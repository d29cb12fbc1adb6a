// Package main provides the Flowgent queue worker: it consumes trigger
// messages and drives workflow executions.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowgent/flowgent/pkg/eventbus"
	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/registry"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/services"
	"github.com/flowgent/flowgent/pkg/triggers/queue"
	"github.com/flowgent/flowgent/pkg/workflow"
)

// WorkerManager owns the trigger sources and the execution pipeline
// behind them.
type WorkerManager struct {
	workerID string
	logger   *slog.Logger

	executions *services.Execution
	sources    []protocol.TriggerSource
}

// QueueBinding maps one Redis queue to one workflow.
type QueueBinding struct {
	WorkflowID string
	Queue      string
	RedisAddr  string
}

func NewWorkerManager(
	workerID string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	registry *registry.Registry,
	scopes *scope.Manager,
	logger *slog.Logger,
) *WorkerManager {
	executor := workflow.NewExecutor(
		scopes,
		registry,
		logger,
		workflow.WithExecutionRepository(persistence.ExecutionRepository()),
		workflow.WithEventPublisher(eventBus),
	)

	return &WorkerManager{
		workerID:   workerID,
		logger:     logger,
		executions: services.NewExecution(persistence, executor, scopes),
	}
}

// AddQueueBinding registers a queue trigger source for a workflow.
func (w *WorkerManager) AddQueueBinding(ctx context.Context, binding QueueBinding) error {
	trigger, err := queue.NewTrigger(ctx, map[string]any{
		"workflow_id": binding.WorkflowID,
		"queue":       binding.Queue,
		"connection": map[string]any{
			"addr": binding.RedisAddr,
		},
	}, w.logger)
	if err != nil {
		return fmt.Errorf("failed to create queue trigger for %s: %w", binding.Queue, err)
	}

	w.sources = append(w.sources, trigger)

	return nil
}

// Start launches all trigger sources and blocks until the process is
// signalled to stop.
func (w *WorkerManager) Start(ctx context.Context) error {
	callback := w.executeCallback()

	for _, source := range w.sources {
		if err := source.Start(ctx, callback); err != nil {
			return fmt.Errorf("failed to start trigger source: %w", err)
		}
	}

	w.logger.InfoContext(ctx, "Worker started", "sources", len(w.sources))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		w.logger.InfoContext(ctx, "Received signal, shutting down", "signal", sig.String())
	}

	for _, source := range w.sources {
		if err := source.Stop(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to stop trigger source", "error", err)
		}
	}

	return nil
}

func (w *WorkerManager) executeCallback() protocol.TriggerCallback {
	return func(ctx context.Context, workflowID string, data map[string]any) error {
		conversationID, _ := data["conversation_id"].(string)
		channel, _ := data["channel"].(string)

		execution, err := w.executions.ExecuteWorkflow(ctx, workflowID, services.ExecuteRequest{
			InputData:      data,
			ConversationID: conversationID,
			Channel:        channel,
		})
		if err != nil {
			return err
		}

		w.logger.InfoContext(ctx, "Triggered execution finished",
			"workflow_id", workflowID,
			"execution_id", execution.ID,
			"status", execution.Status,
		)

		return nil
	}
}
