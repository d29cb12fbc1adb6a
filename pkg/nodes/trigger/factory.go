package trigger

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// TriggerNodeFactory creates TriggerNode instances.
type TriggerNodeFactory struct{}

// NewTriggerNodeFactory creates a new factory instance.
func NewTriggerNodeFactory() protocol.NodeFactory {
	return &TriggerNodeFactory{}
}

// Create creates a new TriggerNode instance.
func (f *TriggerNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewTriggerNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *TriggerNodeFactory) ID() string {
	return string(models.NodeTypeTrigger)
}

// Name returns the factory name.
func (f *TriggerNodeFactory) Name() string {
	return "Trigger"
}

// Description returns the factory description.
func (f *TriggerNodeFactory) Description() string {
	return "Entry point of a workflow; passes the trigger payload to downstream nodes"
}

// Schema returns the JSON schema for trigger node configuration.
func (f *TriggerNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"trigger_type": map[string]any{
				"type":        "string",
				"description": "Kind of event that starts the workflow",
				"enum":        []string{"manual", "chat_message", "webhook", "schedule"},
			},
		},
	}
}
