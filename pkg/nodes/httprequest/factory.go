package httprequest

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// HTTPRequestNodeFactory creates HTTPRequestNode instances.
type HTTPRequestNodeFactory struct{}

// NewHTTPRequestNodeFactory creates a new factory instance.
func NewHTTPRequestNodeFactory() protocol.NodeFactory {
	return &HTTPRequestNodeFactory{}
}

// Create creates a new HTTPRequestNode instance.
func (f *HTTPRequestNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewHTTPRequestNode(node.ID, node.Config)
}

// ID returns the factory ID.
func (f *HTTPRequestNodeFactory) ID() string {
	return string(models.NodeTypeIntegration)
}

// Name returns the factory name.
func (f *HTTPRequestNodeFactory) Name() string {
	return "HTTP Request"
}

// Description returns the factory description.
func (f *HTTPRequestNodeFactory) Description() string {
	return "Calls an external HTTP API with templated URL, headers, and body"
}

// Schema returns the JSON schema for HTTP request node configuration.
func (f *HTTPRequestNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Request URL; supports template expressions",
			},
			"method": map[string]any{
				"type": "string",
				"enum": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers; values support template expressions",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Request body template",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Per-request timeout in seconds",
				"minimum":     1,
				"maximum":     300,
			},
			"retries": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"attempts": map[string]any{"type": "number", "minimum": 1, "maximum": 10},
					"delay":    map[string]any{"type": "number", "minimum": 0, "maximum": 30000},
				},
			},
		},
		"required": []string{"url"},
	}
}
