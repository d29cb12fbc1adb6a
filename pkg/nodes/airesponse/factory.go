package airesponse

import (
	"context"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
)

// AIResponseNodeFactory creates AIResponseNode instances. A nil client
// makes each node build its own from the OPENAI_API_KEY environment
// variable.
type AIResponseNodeFactory struct {
	client ChatCompleter
}

// NewAIResponseNodeFactory creates a new factory instance.
func NewAIResponseNodeFactory(client ChatCompleter) protocol.NodeFactory {
	return &AIResponseNodeFactory{client: client}
}

// Create creates a new AIResponseNode instance.
func (f *AIResponseNodeFactory) Create(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewAIResponseNode(node.ID, node.Config, f.client)
}

// ID returns the factory ID.
func (f *AIResponseNodeFactory) ID() string {
	return string(models.NodeTypeAIResponse)
}

// Name returns the factory name.
func (f *AIResponseNodeFactory) Name() string {
	return "AI Response"
}

// Description returns the factory description.
func (f *AIResponseNodeFactory) Description() string {
	return "Generates an assistant reply with a chat completion model"
}

// Schema returns the JSON schema for AI response node configuration.
func (f *AIResponseNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "User prompt template; rendered with node input and execution variables",
				"examples": []string{
					`Reply to the customer message: {{.input.message}}`,
				},
			},
			"system_prompt": map[string]any{
				"type":        "string",
				"description": "Optional system prompt template",
			},
			"model": map[string]any{
				"type":        "string",
				"description": "Chat completion model name",
				"default":     defaultModel,
			},
			"temperature": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 2,
			},
			"max_tokens": map[string]any{
				"type":    "number",
				"minimum": 1,
			},
		},
		"required": []string{"prompt"},
	}
}
