// Package webhook provides the node that delivers a JSON payload to an external webhook URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

const defaultTimeout = 30

// WebhookNode posts a JSON payload to a configured URL. The payload is
// the rendered `payload` config when present, otherwise the node input.
type WebhookNode struct {
	id      string
	url     string
	payload map[string]any
	headers map[string]string
	timeout int
}

// NewWebhookNode creates a new webhook delivery node.
func NewWebhookNode(id string, config map[string]any) (*WebhookNode, error) {
	url, ok := config["url"].(string)
	if !ok {
		return nil, errors.New("missing required field 'url'")
	}

	node := &WebhookNode{
		id:      id,
		url:     url,
		headers: make(map[string]string),
		timeout: defaultTimeout,
	}

	if payload, ok := config["payload"].(map[string]any); ok {
		node.payload = payload
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if strVal, ok := v.(string); ok {
				node.headers[k] = strVal
			}
		}
	}

	if timeout, ok := config["timeout"].(float64); ok {
		node.timeout = int(timeout)
	}

	return node, nil
}

// Execute renders and delivers the payload.
func (n *WebhookNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	renderedURL, err := template.RenderValue(n.url, input, execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render webhook URL: %w", err)
	}

	urlStr, ok := renderedURL.(string)
	if !ok {
		return nil, errors.New("webhook URL template must render to string")
	}

	var payload any = input

	if n.payload != nil {
		payload, err = template.RenderValue(n.payload, input, execCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render webhook payload: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range n.headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: time.Duration(n.timeout) * time.Second}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook delivery failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return map[string]any{
		"delivered":   true,
		"status_code": resp.StatusCode,
		"body":        string(respBody),
	}, nil
}
