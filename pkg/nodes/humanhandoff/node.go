// Package humanhandoff provides the node that routes a conversation to a human agent.
package humanhandoff

import (
	"context"
	"fmt"
	"time"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

const defaultQueue = "general"

// HumanHandoffNode marks the conversation as handed off to a human
// queue and records the handoff in the execution's variables so later
// runs on the same conversation can see it.
type HumanHandoffNode struct {
	id     string
	queue  string
	reason string
}

// NewHumanHandoffNode creates a new human handoff node.
func NewHumanHandoffNode(id string, config map[string]any) (*HumanHandoffNode, error) {
	node := &HumanHandoffNode{
		id:    id,
		queue: defaultQueue,
	}

	if queue, ok := config["queue"].(string); ok && queue != "" {
		node.queue = queue
	}

	if reason, ok := config["reason"].(string); ok {
		node.reason = reason
	}

	return node, nil
}

// Execute records the handoff and returns its details.
func (n *HumanHandoffNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	reason := n.reason
	if reason != "" {
		rendered, err := template.RenderWithContext(reason, input, execCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render handoff reason: %w", err)
		}

		reason = fmt.Sprintf("%v", rendered)
	}

	requestedAt := time.Now().UTC().Format(time.RFC3339)

	if err := execCtx.Variables.Set("handoff_requested", true); err != nil {
		return nil, fmt.Errorf("failed to record handoff: %w", err)
	}

	if err := execCtx.Variables.Set("handoff_queue", n.queue); err != nil {
		return nil, fmt.Errorf("failed to record handoff queue: %w", err)
	}

	return map[string]any{
		"handoff":         true,
		"queue":           n.queue,
		"reason":          reason,
		"conversation_id": execCtx.ConversationID,
		"channel":         execCtx.Channel,
		"requested_at":    requestedAt,
	}, nil
}
