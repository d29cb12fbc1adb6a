// Package trigger provides the entry-point node for workflow graph execution.
package trigger

import (
	"context"

	"github.com/flowgent/flowgent/pkg/protocol"
)

// TriggerNode is the entry point of a workflow run. It passes the
// trigger payload through unchanged so downstream nodes can consume it.
type TriggerNode struct {
	id          string
	triggerType string
}

// NewTriggerNode creates a new trigger node.
func NewTriggerNode(id string, config map[string]any) (*TriggerNode, error) {
	triggerType, _ := config["trigger_type"].(string)
	if triggerType == "" {
		triggerType = "manual"
	}

	return &TriggerNode{
		id:          id,
		triggerType: triggerType,
	}, nil
}

// Execute passes the trigger payload through.
func (n *TriggerNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	output := make(map[string]any, len(input)+1)
	for k, v := range input {
		output[k] = v
	}

	output["trigger_type"] = n.triggerType

	return output, nil
}
