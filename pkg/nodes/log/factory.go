package log

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// LogNodeFactory creates LogNode instances.
type LogNodeFactory struct{}

// NewLogNodeFactory creates a new factory instance.
func NewLogNodeFactory() protocol.NodeFactory {
	return &LogNodeFactory{}
}

// Create creates a new LogNode instance.
func (f *LogNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewLogNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *LogNodeFactory) ID() string {
	return "log"
}

// Name returns the factory name.
func (f *LogNodeFactory) Name() string {
	return "Log"
}

// Description returns the factory description.
func (f *LogNodeFactory) Description() string {
	return "Writes a templated message to the execution log"
}

// Schema returns the JSON schema for log node configuration.
func (f *LogNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message template",
			},
			"level": map[string]any{
				"type":    "string",
				"enum":    []string{"debug", "info", "warn", "error"},
				"default": "info",
			},
		},
		"required": []string{"message"},
	}
}
