// Package queue provides a Redis-backed trigger source that turns
// queued chat messages into workflow execution requests.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/flowgent/flowgent/pkg/protocol"
)

const (
	popTimeout     = 1 * time.Second
	connectTimeout = 5 * time.Second
	retryDelay     = 1 * time.Second
)

// Trigger consumes messages from a Redis list and submits each as an
// execution request for the configured workflow.
type Trigger struct {
	WorkflowID string
	Queue      string
	Connection map[string]string
	Enabled    bool

	client   redis.UniversalClient
	callback protocol.TriggerCallback
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewTrigger creates a queue trigger from its configuration map.
func NewTrigger(ctx context.Context, config map[string]any, logger *slog.Logger) (*Trigger, error) {
	workflowID, _ := config["workflow_id"].(string)
	queue, _ := config["queue"].(string)

	connectionConfig, _ := config["connection"].(map[string]any)

	connection := make(map[string]string)
	for k, v := range connectionConfig {
		if str, ok := v.(string); ok {
			connection[k] = str
		}
	}

	trigger := &Trigger{
		WorkflowID: workflowID,
		Queue:      queue,
		Connection: connection,
		Enabled:    true,
		stopCh:     make(chan struct{}),
		logger: logger.With(
			"module", "queue_trigger",
			"queue", queue,
			"workflow_id", workflowID,
		),
	}

	if err := trigger.Validate(ctx); err != nil {
		return nil, err
	}

	return trigger, nil
}

func (t *Trigger) Validate(_ context.Context) error {
	if t.Queue == "" {
		return errors.New("queue trigger queue name is required")
	}

	if t.WorkflowID == "" {
		return errors.New("queue trigger workflow id is required")
	}

	return nil
}

func (t *Trigger) Start(ctx context.Context, callback protocol.TriggerCallback) error {
	if !t.Enabled {
		t.logger.InfoContext(ctx, "Queue trigger is disabled")

		return nil
	}

	t.logger.InfoContext(ctx, "Starting queue trigger")
	t.callback = callback

	if err := t.initializeClient(ctx); err != nil {
		return fmt.Errorf("failed to initialize queue client: %w", err)
	}

	t.wg.Add(1)

	go t.consume(ctx)

	return nil
}

func (t *Trigger) initializeClient(ctx context.Context) error {
	addr := t.Connection["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}

	password := t.Connection["password"]
	db := 0

	if dbStr := t.Connection["db"]; dbStr != "" {
		if _, err := fmt.Sscanf(dbStr, "%d", &db); err != nil {
			return fmt.Errorf("invalid db value: %w", err)
		}
	}

	t.client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	t.logger.InfoContext(ctx, "Connected to Redis", "addr", addr, "db", db)

	return nil
}

func (t *Trigger) consume(ctx context.Context) {
	defer t.wg.Done()

	t.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-t.stopCh:
			t.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			t.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			if err := t.processMessage(ctx); err != nil {
				t.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(retryDelay)
			}
		}
	}
}

func (t *Trigger) processMessage(ctx context.Context) error {
	result, err := t.client.BLPop(ctx, popTimeout, t.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	message := result[1]

	var triggerData map[string]any
	if err := json.Unmarshal([]byte(message), &triggerData); err != nil {
		triggerData = map[string]any{
			"message": message,
		}
	}

	if triggerData["timestamp"] == nil {
		triggerData["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}

	go func() {
		if err := t.callback(ctx, t.WorkflowID, triggerData); err != nil {
			t.logger.ErrorContext(ctx, "Error executing workflow for trigger", "error", err)
		}
	}()

	return nil
}

func (t *Trigger) Stop(ctx context.Context) error {
	t.logger.InfoContext(ctx, "Stopping queue trigger")

	close(t.stopCh)
	t.wg.Wait()

	if t.client != nil {
		if err := t.client.Close(); err != nil {
			t.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
