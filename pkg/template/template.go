// Package template renders Go text/template expressions used in node
// configuration values.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/flowgent/flowgent/pkg/protocol"
)

// RenderWithContext renders a template string with the execution's
// variables, input data, and environment exposed as template data.
func RenderWithContext(input string, data map[string]any, execCtx protocol.ExecutionContext) (any, error) {
	templateData := map[string]any{
		"input": data,
		"vars":  execCtx.Variables.All(),
		"env":   getEnvVars(),
		"execution": map[string]any{
			"id":              execCtx.ExecutionID,
			"workflow_id":     execCtx.WorkflowID,
			"conversation_id": execCtx.ConversationID,
			"channel":         execCtx.Channel,
		},
	}

	return Render(input, templateData)
}

// NeedsTemplating reports whether a string references template data and
// is worth running through the renderer.
func NeedsTemplating(input string) bool {
	return strings.Contains(input, "{{")
}

func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("transform").
		Funcs(template.FuncMap{
			"contains":  strings.Contains,
			"hasPrefix": strings.HasPrefix,
			"hasSuffix": strings.HasSuffix,
			"lower":     strings.ToLower,
			"upper":     strings.ToUpper,
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}
				num := make([]byte, 1)
				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	// Restore structure for values that rendered as JSON.
	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return jsonResult, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}

// RenderValue renders template expressions inside a configuration
// value, descending into maps and slices.
func RenderValue(value any, data map[string]any, execCtx protocol.ExecutionContext) (any, error) {
	switch v := value.(type) {
	case string:
		if !NeedsTemplating(v) {
			return v, nil
		}

		return RenderWithContext(v, data, execCtx)
	case map[string]any:
		rendered := make(map[string]any, len(v))
		for key, item := range v {
			r, err := RenderValue(item, data, execCtx)
			if err != nil {
				return nil, err
			}

			rendered[key] = r
		}

		return rendered, nil
	case []any:
		rendered := make([]any, len(v))
		for i, item := range v {
			r, err := RenderValue(item, data, execCtx)
			if err != nil {
				return nil, err
			}

			rendered[i] = r
		}

		return rendered, nil
	default:
		return value, nil
	}
}

func getEnvVars() map[string]any {
	envMap := make(map[string]any)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	return envMap
}
