package wait

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// WaitNodeFactory creates WaitNode instances.
type WaitNodeFactory struct{}

// NewWaitNodeFactory creates a new factory instance.
func NewWaitNodeFactory() protocol.NodeFactory {
	return &WaitNodeFactory{}
}

// Create creates a new WaitNode instance.
func (f *WaitNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewWaitNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *WaitNodeFactory) ID() string {
	return string(models.NodeTypeWait)
}

// Name returns the factory name.
func (f *WaitNodeFactory) Name() string {
	return "Wait"
}

// Description returns the factory description.
func (f *WaitNodeFactory) Description() string {
	return "Pauses the run for a configured duration"
}

// Schema returns the JSON schema for wait node configuration.
func (f *WaitNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration": map[string]any{
				"description": "Wait duration: a Go duration string or a number of seconds",
				"oneOf": []map[string]any{
					{"type": "string"},
					{"type": "number", "minimum": 1},
				},
				"examples": []any{"30s", "5m", 10},
			},
		},
		"required": []string{"duration"},
	}
}
