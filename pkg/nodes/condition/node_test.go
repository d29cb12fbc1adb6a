package condition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/testutil"
)

func TestNewConditionNode_RequiresCondition(t *testing.T) {
	_, err := NewConditionNode("c1", map[string]any{})
	require.Error(t, err)
}

func TestConditionNode_TrueFromVariable(t *testing.T) {
	node, err := NewConditionNode("c1", map[string]any{
		"condition": `{{eq .vars.status "active"}}`,
	})
	require.NoError(t, err)

	execCtx := testutil.NewExecutionContext(map[string]any{"status": "active"})

	output, err := node.Execute(context.Background(), map[string]any{}, execCtx)
	require.NoError(t, err)
	assert.Equal(t, true, output["condition_result"])
}

func TestConditionNode_FalseLiteral(t *testing.T) {
	node, err := NewConditionNode("c1", map[string]any{"condition": "false"})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)
	assert.Equal(t, false, output["condition_result"])
	assert.Equal(t, false, output["evaluated_value"])
}

func TestConditionNode_InputReference(t *testing.T) {
	node, err := NewConditionNode("c1", map[string]any{"condition": "{{.input.count}}"})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{"count": 3}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)
	assert.Equal(t, true, output["condition_result"])
	assert.Equal(t, float64(3), output["evaluated_value"])
}

func TestConditionNode_BadTemplate(t *testing.T) {
	node, err := NewConditionNode("c1", map[string]any{"condition": "{{.unclosed"})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.Error(t, err)
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, isTruthy(true))
	assert.True(t, isTruthy("yes"))
	assert.True(t, isTruthy(float64(1)))
	assert.True(t, isTruthy([]any{1}))
	assert.True(t, isTruthy(map[string]any{"k": "v"}))

	assert.False(t, isTruthy(false))
	assert.False(t, isTruthy(""))
	assert.False(t, isTruthy("false"))
	assert.False(t, isTruthy(float64(0)))
	assert.False(t, isTruthy([]any{}))
	assert.False(t, isTruthy(nil))
}
