package transform

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// TransformNodeFactory creates TransformNode instances.
type TransformNodeFactory struct{}

// NewTransformNodeFactory creates a new factory instance.
func NewTransformNodeFactory() protocol.NodeFactory {
	return &TransformNodeFactory{}
}

// Create creates a new TransformNode instance.
func (f *TransformNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewTransformNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *TransformNodeFactory) ID() string {
	return string(models.NodeTypeAction)
}

// Name returns the factory name.
func (f *TransformNodeFactory) Name() string {
	return "Transform"
}

// Description returns the factory description.
func (f *TransformNodeFactory) Description() string {
	return "Transforms data using Go templates with access to node input and execution variables"
}

// Schema returns the JSON schema for transform node configuration.
func (f *TransformNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Go template expression producing the node output",
				"examples": []string{
					`{"user_id": "{{.vars.user_id}}", "status": "active"}`,
					`{{.input.message}}`,
					`{"greeting": "Hello {{.vars.first_name}}", "timestamp": "{{now}}"}`,
				},
			},
		},
		"required": []string{"expression"},
	}
}
