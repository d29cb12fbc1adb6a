// Package variable provides the node that reads and writes execution-scoped variables.
package variable

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

const (
	OperationSet    = "set"
	OperationGet    = "get"
	OperationDelete = "delete"
)

// VariableNode performs one operation against the execution's variable
// store. Reads resolve through ancestor scopes; writes land in the
// execution's own scope.
type VariableNode struct {
	id        string
	operation string
	name      string
	value     any
}

// NewVariableNode creates a new variable node.
func NewVariableNode(id string, config map[string]any) (*VariableNode, error) {
	name, ok := config["name"].(string)
	if !ok || name == "" {
		return nil, errors.New("missing required field 'name'")
	}

	operation := OperationSet
	if op, ok := config["operation"].(string); ok && op != "" {
		operation = op
	}

	switch operation {
	case OperationSet, OperationGet, OperationDelete:
	default:
		return nil, fmt.Errorf("unknown operation %q", operation)
	}

	node := &VariableNode{
		id:        id,
		operation: operation,
		name:      name,
	}

	if operation == OperationSet {
		value, ok := config["value"]
		if !ok {
			return nil, errors.New("operation 'set' requires a 'value' field")
		}

		node.value = value
	}

	return node, nil
}

// Execute performs the configured variable operation.
func (n *VariableNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	switch n.operation {
	case OperationSet:
		value, err := template.RenderValue(n.value, input, execCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render value for %q: %w", n.name, err)
		}

		if err := execCtx.Variables.Set(n.name, value); err != nil {
			return nil, fmt.Errorf("failed to set %q: %w", n.name, err)
		}

		return map[string]any{
			"operation": n.operation,
			"name":      n.name,
			"value":     value,
		}, nil
	case OperationGet:
		value, found := execCtx.Variables.Get(n.name)

		return map[string]any{
			"operation": n.operation,
			"name":      n.name,
			"value":     value,
			"found":     found,
		}, nil
	case OperationDelete:
		if err := execCtx.Variables.Delete(n.name); err != nil {
			return nil, fmt.Errorf("failed to delete %q: %w", n.name, err)
		}

		return map[string]any{
			"operation": n.operation,
			"name":      n.name,
		}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", n.operation)
	}
}
