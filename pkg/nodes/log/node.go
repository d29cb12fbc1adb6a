// Package log provides the logging node for workflow graph execution.
package log

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

// LogNode writes a templated message to the execution's logger.
type LogNode struct {
	id      string
	message string
	level   string
}

// NewLogNode creates a new logging node.
func NewLogNode(id string, config map[string]any) (*LogNode, error) {
	message, ok := config["message"].(string)
	if !ok {
		return nil, errors.New("missing required field 'message'")
	}

	level := "info"
	if lvl, ok := config["level"].(string); ok {
		level = lvl
	}

	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	return &LogNode{
		id:      id,
		message: message,
		level:   level,
	}, nil
}

// Execute renders and logs the message.
func (n *LogNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	rendered, err := template.RenderWithContext(n.message, input, execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render log message: %w", err)
	}

	message := fmt.Sprintf("%v", rendered)

	logger := execCtx.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("node_id", n.id)

	switch n.level {
	case "debug":
		logger.Debug(message)
	case "warn":
		logger.Warn(message)
	case "error":
		logger.Error(message)
	default:
		logger.Info(message)
	}

	return map[string]any{
		"message": message,
		"level":   n.level,
	}, nil
}
