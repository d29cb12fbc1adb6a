// Package airesponse provides the LLM response node for workflow graph execution.
package airesponse

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

const defaultModel = openai.GPT4oMini

// ChatCompleter is the subset of the OpenAI client used by the node.
// Tests provide a stub implementation.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIResponseNode renders a prompt from the node input and execution
// variables and asks a chat completion model for a reply.
type AIResponseNode struct {
	id           string
	client       ChatCompleter
	model        string
	systemPrompt string
	prompt       string
	temperature  float32
	maxTokens    int
}

// NewAIResponseNode creates a new AI response node.
func NewAIResponseNode(id string, config map[string]any, client ChatCompleter) (*AIResponseNode, error) {
	prompt, ok := config["prompt"].(string)
	if !ok {
		return nil, errors.New("missing required field 'prompt'")
	}

	node := &AIResponseNode{
		id:     id,
		client: client,
		model:  defaultModel,
		prompt: prompt,
	}

	if model, ok := config["model"].(string); ok && model != "" {
		node.model = model
	}

	if systemPrompt, ok := config["system_prompt"].(string); ok {
		node.systemPrompt = systemPrompt
	}

	if temperature, ok := config["temperature"].(float64); ok {
		node.temperature = float32(temperature)
	}

	if maxTokens, ok := config["max_tokens"].(float64); ok {
		node.maxTokens = int(maxTokens)
	}

	if node.client == nil {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY is not set and no client was provided")
		}

		node.client = openai.NewClient(apiKey)
	}

	return node, nil
}

// Execute renders the prompt templates and requests a completion.
func (n *AIResponseNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	rendered, err := template.RenderWithContext(n.prompt, input, execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	prompt := fmt.Sprintf("%v", rendered)

	messages := make([]openai.ChatCompletionMessage, 0, 2)

	if n.systemPrompt != "" {
		renderedSystem, err := template.RenderWithContext(n.systemPrompt, input, execCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render system prompt: %w", err)
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf("%v", renderedSystem),
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       n.model,
		Messages:    messages,
		Temperature: n.temperature,
		MaxTokens:   n.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return map[string]any{
		"response":      resp.Choices[0].Message.Content,
		"role":          openai.ChatMessageRoleAssistant,
		"model":         resp.Model,
		"finish_reason": string(resp.Choices[0].FinishReason),
		"usage": map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}, nil
}
