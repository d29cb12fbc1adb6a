// Package loop provides the iteration node for workflow graph execution.
package loop

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/flowgent/flowgent/pkg/template"
)

const defaultMaxIterations = 1000

// LoopNode resolves a collection and renders an expression once per
// element, collecting the results in order.
type LoopNode struct {
	id            string
	items         any
	expression    string
	maxIterations int
}

// NewLoopNode creates a new loop node.
func NewLoopNode(id string, config map[string]any) (*LoopNode, error) {
	items, ok := config["items"]
	if !ok {
		return nil, errors.New("missing required field 'items'")
	}

	expression, ok := config["expression"].(string)
	if !ok {
		return nil, errors.New("missing required field 'expression'")
	}

	node := &LoopNode{
		id:            id,
		items:         items,
		expression:    expression,
		maxIterations: defaultMaxIterations,
	}

	if maxIterations, ok := config["max_iterations"].(float64); ok {
		node.maxIterations = int(maxIterations)
	}

	return node, nil
}

// Execute resolves the collection and renders the expression per element.
func (n *LoopNode) Execute(ctx context.Context, input map[string]any, execCtx protocol.ExecutionContext) (map[string]any, error) {
	resolved, err := template.RenderValue(n.items, input, execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve loop items: %w", err)
	}

	items, ok := resolved.([]any)
	if !ok {
		return nil, fmt.Errorf("loop items must resolve to a list, got %T", resolved)
	}

	if len(items) > n.maxIterations {
		return nil, fmt.Errorf("loop of %d items exceeds the limit of %d", len(items), n.maxIterations)
	}

	results := make([]any, 0, len(items))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		iterationData := make(map[string]any, len(input)+2)
		for k, v := range input {
			iterationData[k] = v
		}

		iterationData["item"] = item
		iterationData["index"] = i

		result, err := template.RenderWithContext(n.expression, iterationData, execCtx)
		if err != nil {
			return nil, fmt.Errorf("iteration %d failed: %w", i, err)
		}

		results = append(results, result)
	}

	return map[string]any{
		"results": results,
		"count":   len(results),
	}, nil
}
