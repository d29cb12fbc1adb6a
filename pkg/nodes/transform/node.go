// Package transform provides the generic action node that reshapes data with Go templates.
package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

// TransformNode renders a template expression over the node input and
// execution variables and exposes the rendered value downstream.
type TransformNode struct {
	id         string
	expression string
}

// NewTransformNode creates a new transform node.
func NewTransformNode(id string, config map[string]any) (*TransformNode, error) {
	expression, ok := config["expression"].(string)
	if !ok {
		return nil, errors.New("missing required field 'expression'")
	}

	return &TransformNode{
		id:         id,
		expression: expression,
	}, nil
}

// Execute renders the transformation expression.
func (n *TransformNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	result, err := template.RenderWithContext(n.expression, input, execCtx)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	if m, ok := result.(map[string]any); ok {
		return m, nil
	}

	return map[string]any{"data": result}, nil
}
