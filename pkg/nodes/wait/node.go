// Package wait provides the pause node for workflow graph execution.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowgent/flowgent/pkg/protocol"
)

const maxDuration = time.Hour

// WaitNode pauses the run for a configured duration. Cancelling the
// execution context ends the wait early.
type WaitNode struct {
	id       string
	duration time.Duration
}

// NewWaitNode creates a new wait node.
func NewWaitNode(id string, config map[string]any) (*WaitNode, error) {
	var duration time.Duration

	switch v := config["duration"].(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", v, err)
		}

		duration = parsed
	case float64:
		duration = time.Duration(v) * time.Second
	default:
		return nil, errors.New("missing required field 'duration'")
	}

	if duration <= 0 || duration > maxDuration {
		return nil, fmt.Errorf("duration must be between 1s and %s", maxDuration)
	}

	return &WaitNode{
		id:       id,
		duration: duration,
	}, nil
}

// Execute blocks for the configured duration or until the context ends.
func (n *WaitNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	timer := time.NewTimer(n.duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return map[string]any{
		"waited": n.duration.String(),
	}, nil
}
