package humanhandoff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/testutil"
)

func TestHumanHandoffNode_Defaults(t *testing.T) {
	node, err := NewHumanHandoffNode("h1", map[string]any{})
	require.NoError(t, err)

	execCtx := testutil.NewExecutionContext(nil)

	output, err := node.Execute(context.Background(), nil, execCtx)
	require.NoError(t, err)

	assert.Equal(t, true, output["handoff"])
	assert.Equal(t, "general", output["queue"])
	assert.Equal(t, "conv-test", output["conversation_id"])
	assert.NotEmpty(t, output["requested_at"])
}

func TestHumanHandoffNode_RecordsVariables(t *testing.T) {
	node, err := NewHumanHandoffNode("h1", map[string]any{"queue": "billing"})
	require.NoError(t, err)

	execCtx := testutil.NewExecutionContext(nil)

	_, err = node.Execute(context.Background(), nil, execCtx)
	require.NoError(t, err)

	requested, ok := execCtx.Variables.Get("handoff_requested")
	require.True(t, ok)
	assert.Equal(t, true, requested)

	queue, ok := execCtx.Variables.Get("handoff_queue")
	require.True(t, ok)
	assert.Equal(t, "billing", queue)
}

func TestHumanHandoffNode_RendersReason(t *testing.T) {
	node, err := NewHumanHandoffNode("h1", map[string]any{
		"reason": "user {{.input.user}} asked for a human",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{"user": "Ada"}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "user Ada asked for a human", output["reason"])
}
