// Package httprequest provides the integration node for calling external HTTP APIs.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

// HTTPRequestNode performs an HTTP request against an external service.
type HTTPRequestNode struct {
	id     string
	config HTTPRequestConfig
}

// HTTPRequestConfig defines the configuration for HTTP request nodes.
type HTTPRequestConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
	Timeout int               `json:"timeout"`
	Retries RetryConfig       `json:"retries"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	Attempts int `json:"attempts"`
	Delay    int `json:"delay"`
}

// NewHTTPRequestNode creates a new HTTP request node.
func NewHTTPRequestNode(id string, config map[string]any) (*HTTPRequestNode, error) {
	httpConfig := HTTPRequestConfig{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
		Timeout: 30,
		Retries: RetryConfig{Attempts: 1, Delay: 0},
	}

	if url, ok := config["url"].(string); ok {
		httpConfig.URL = url
	} else {
		return nil, errors.New("missing required field 'url'")
	}

	if method, ok := config["method"].(string); ok {
		httpConfig.Method = strings.ToUpper(method)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if strVal, ok := v.(string); ok {
				httpConfig.Headers[k] = strVal
			}
		}
	}

	if body, ok := config["body"].(string); ok {
		httpConfig.Body = body
	}

	if timeout, ok := config["timeout"].(float64); ok {
		httpConfig.Timeout = int(timeout)
	}

	if retries, ok := config["retries"].(map[string]any); ok {
		if attempts, ok := retries["attempts"].(float64); ok {
			httpConfig.Retries.Attempts = int(attempts)
		}

		if delay, ok := retries["delay"].(float64); ok {
			httpConfig.Retries.Delay = int(delay)
		}
	}

	return &HTTPRequestNode{
		id:     id,
		config: httpConfig,
	}, nil
}

// Execute renders the request templates and performs the call,
// retrying on network and server errors.
func (n *HTTPRequestNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	renderedURL, err := template.RenderWithContext(n.config.URL, input, execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render URL template: %w", err)
	}

	urlStr, ok := renderedURL.(string)
	if !ok {
		return nil, errors.New("URL template must render to string")
	}

	var renderedBody string

	if n.config.Body != "" {
		renderedBodyAny, err := template.RenderWithContext(n.config.Body, input, execCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render body template: %w", err)
		}

		switch v := renderedBodyAny.(type) {
		case string:
			renderedBody = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode rendered body: %w", err)
			}

			renderedBody = string(encoded)
		}
	}

	renderedHeaders := make(map[string]string, len(n.config.Headers))

	for key, value := range n.config.Headers {
		renderedValue, err := template.RenderWithContext(value, input, execCtx)
		if err != nil {
			renderedHeaders[key] = value // Use original value if template fails
		} else if strVal, ok := renderedValue.(string); ok {
			renderedHeaders[key] = strVal
		} else {
			renderedHeaders[key] = value
		}
	}

	var lastErr error

	for attempt := 1; attempt <= n.config.Retries.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(n.config.Retries.Delay) * time.Millisecond):
			}
		}

		result, err := n.performRequest(ctx, urlStr, renderedBody, renderedHeaders)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Don't retry client errors, only server and network errors.
		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
			break
		}
	}

	return nil, fmt.Errorf("HTTP request failed after %d attempts: %w", n.config.Retries.Attempts, lastErr)
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// performRequest executes a single HTTP request.
func (n *HTTPRequestNode) performRequest(ctx context.Context, url, body string, headers map[string]string) (map[string]any, error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, n.config.Method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{
		Timeout: time.Duration(n.config.Timeout) * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"headers":     resp.Header,
		"body":        string(respBody),
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		result["json"] = jsonBody
	}

	return result, nil
}
