package variable

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// VariableNodeFactory creates VariableNode instances.
type VariableNodeFactory struct{}

// NewVariableNodeFactory creates a new factory instance.
func NewVariableNodeFactory() protocol.NodeFactory {
	return &VariableNodeFactory{}
}

// Create creates a new VariableNode instance.
func (f *VariableNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewVariableNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *VariableNodeFactory) ID() string {
	return string(models.NodeTypeVariable)
}

// Name returns the factory name.
func (f *VariableNodeFactory) Name() string {
	return "Variable"
}

// Description returns the factory description.
func (f *VariableNodeFactory) Description() string {
	return "Reads, writes, or deletes a variable in the execution's scope chain"
}

// Schema returns the JSON schema for variable node configuration.
func (f *VariableNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":    "string",
				"enum":    []string{OperationSet, OperationGet, OperationDelete},
				"default": OperationSet,
			},
			"name": map[string]any{
				"type":        "string",
				"description": "Variable name",
			},
			"value": map[string]any{
				"description": "Value to store for 'set'; supports template expressions",
			},
		},
		"required": []string{"name"},
	}
}
