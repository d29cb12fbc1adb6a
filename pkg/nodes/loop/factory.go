package loop

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// LoopNodeFactory creates LoopNode instances.
type LoopNodeFactory struct{}

// NewLoopNodeFactory creates a new factory instance.
func NewLoopNodeFactory() protocol.NodeFactory {
	return &LoopNodeFactory{}
}

// Create creates a new LoopNode instance.
func (f *LoopNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewLoopNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *LoopNodeFactory) ID() string {
	return string(models.NodeTypeLoop)
}

// Name returns the factory name.
func (f *LoopNodeFactory) Name() string {
	return "Loop"
}

// Description returns the factory description.
func (f *LoopNodeFactory) Description() string {
	return "Renders an expression once per element of a collection"
}

// Schema returns the JSON schema for loop node configuration.
func (f *LoopNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"description": "Collection to iterate: a literal list or a template resolving to one",
			},
			"expression": map[string]any{
				"type":        "string",
				"description": "Template rendered per element with .input.item and .input.index available",
			},
			"max_iterations": map[string]any{
				"type":    "number",
				"minimum": 1,
				"default": defaultMaxIterations,
			},
		},
		"required": []string{"items", "expression"},
	}
}
