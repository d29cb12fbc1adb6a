package humanhandoff

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// HumanHandoffNodeFactory creates HumanHandoffNode instances.
type HumanHandoffNodeFactory struct{}

// NewHumanHandoffNodeFactory creates a new factory instance.
func NewHumanHandoffNodeFactory() protocol.NodeFactory {
	return &HumanHandoffNodeFactory{}
}

// Create creates a new HumanHandoffNode instance.
func (f *HumanHandoffNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewHumanHandoffNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *HumanHandoffNodeFactory) ID() string {
	return string(models.NodeTypeHumanHandoff)
}

// Name returns the factory name.
func (f *HumanHandoffNodeFactory) Name() string {
	return "Human Handoff"
}

// Description returns the factory description.
func (f *HumanHandoffNodeFactory) Description() string {
	return "Routes the conversation to a human agent queue"
}

// Schema returns the JSON schema for human handoff node configuration.
func (f *HumanHandoffNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"queue": map[string]any{
				"type":        "string",
				"description": "Agent queue to route the conversation to",
				"default":     defaultQueue,
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "Handoff reason template shown to the agent",
			},
		},
	}
}
