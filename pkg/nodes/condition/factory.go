package condition

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// ConditionNodeFactory creates ConditionNode instances.
type ConditionNodeFactory struct{}

// NewConditionNodeFactory creates a new factory instance.
func NewConditionNodeFactory() protocol.NodeFactory {
	return &ConditionNodeFactory{}
}

// Create creates a new ConditionNode instance.
func (f *ConditionNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewConditionNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *ConditionNodeFactory) ID() string {
	return string(models.NodeTypeCondition)
}

// Name returns the factory name.
func (f *ConditionNodeFactory) Name() string {
	return "Condition"
}

// Description returns the factory description.
func (f *ConditionNodeFactory) Description() string {
	return "Evaluates a template expression against node input and execution variables"
}

// Schema returns the JSON schema for condition node configuration.
func (f *ConditionNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"condition": map[string]any{
				"type":        "string",
				"description": "Go template expression evaluated for truthiness",
				"examples": []string{
					`{{eq .input.intent "help"}}`,
					`{{gt .vars.retry_count 3.0}}`,
					`{{.input.message}}`,
				},
			},
		},
		"required": []string{"condition"},
	}
}
