// Package condition provides conditional branching node implementation for workflow graph execution.
package condition

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

// ConditionNode evaluates a template expression against the node input
// and execution variables and reports the boolean outcome.
type ConditionNode struct {
	id        string
	condition string
}

// NewConditionNode creates a new condition node.
func NewConditionNode(id string, config map[string]any) (*ConditionNode, error) {
	condition, ok := config["condition"].(string)
	if !ok {
		return nil, errors.New("missing required field 'condition'")
	}

	return &ConditionNode{
		id:        id,
		condition: condition,
	}, nil
}

// Execute evaluates the condition and returns its outcome.
func (n *ConditionNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	result, err := template.RenderWithContext(n.condition, input, execCtx)
	if err != nil {
		return nil, fmt.Errorf("condition evaluation failed: %w", err)
	}

	return map[string]any{
		"condition_result": isTruthy(result),
		"evaluated_value":  result,
	}, nil
}

// isTruthy converts the rendered condition value to a boolean.
func isTruthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		// Non-empty strings are truthy
		return v != ""
	case int, int64, int32:
		return v != 0
	case float64, float32:
		return v != 0.0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case nil:
		return false
	default:
		return false
	}
}
