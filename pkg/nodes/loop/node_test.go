package loop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/testutil"
)

func TestNewLoopNode_Validation(t *testing.T) {
	_, err := NewLoopNode("l1", map[string]any{"expression": "{{.item}}"})
	require.Error(t, err, "items is required")

	_, err = NewLoopNode("l1", map[string]any{"items": []any{}})
	require.Error(t, err, "expression is required")
}

func TestLoopNode_IteratesLiteralList(t *testing.T) {
	node, err := NewLoopNode("l1", map[string]any{
		"items":      []any{"a", "b", "c"},
		"expression": "{{.input.index}}:{{.input.item}}",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, output["count"])
	assert.Equal(t, []any{"0:a", "1:b", "2:c"}, output["results"])
}

func TestLoopNode_ResolvesItemsFromVariables(t *testing.T) {
	node, err := NewLoopNode("l1", map[string]any{
		"items":      "{{.vars.names}}",
		"expression": "hi {{.input.item}}",
	})
	require.NoError(t, err)

	execCtx := testutil.NewExecutionContext(map[string]any{"names": `["Ada", "Lin"]`})

	output, err := node.Execute(context.Background(), map[string]any{}, execCtx)
	require.NoError(t, err)
	assert.Equal(t, []any{"hi Ada", "hi Lin"}, output["results"])
}

func TestLoopNode_RejectsNonList(t *testing.T) {
	node, err := NewLoopNode("l1", map[string]any{
		"items":      "just a string",
		"expression": "{{.input.item}}",
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must resolve to a list")
}

func TestLoopNode_EnforcesMaxIterations(t *testing.T) {
	node, err := NewLoopNode("l1", map[string]any{
		"items":          []any{1, 2, 3},
		"expression":     "{{.input.item}}",
		"max_iterations": float64(2),
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the limit")
}

func TestLoopNode_CancelledContext(t *testing.T) {
	node, err := NewLoopNode("l1", map[string]any{
		"items":      []any{1, 2},
		"expression": "{{.input.item}}",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = node.Execute(ctx, map[string]any{}, testutil.NewExecutionContext(nil))
	require.ErrorIs(t, err, context.Canceled)
}
