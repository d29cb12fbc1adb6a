package webhook

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// WebhookNodeFactory creates WebhookNode instances.
type WebhookNodeFactory struct{}

// NewWebhookNodeFactory creates a new factory instance.
func NewWebhookNodeFactory() protocol.NodeFactory {
	return &WebhookNodeFactory{}
}

// Create creates a new WebhookNode instance.
func (f *WebhookNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewWebhookNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *WebhookNodeFactory) ID() string {
	return string(models.NodeTypeWebhook)
}

// Name returns the factory name.
func (f *WebhookNodeFactory) Name() string {
	return "Webhook"
}

// Description returns the factory description.
func (f *WebhookNodeFactory) Description() string {
	return "Delivers a JSON payload to an external webhook URL"
}

// Schema returns the JSON schema for webhook node configuration.
func (f *WebhookNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Webhook URL; supports template expressions",
			},
			"payload": map[string]any{
				"type":        "object",
				"description": "Payload template; defaults to the node input when omitted",
			},
			"headers": map[string]any{
				"type": "object",
			},
			"timeout": map[string]any{
				"type":    "number",
				"minimum": 1,
				"maximum": 300,
			},
		},
		"required": []string{"url"},
	}
}
