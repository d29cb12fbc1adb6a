package trigger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/testutil"
)

func TestTriggerNode_PassesInputThrough(t *testing.T) {
	node, err := NewTriggerNode("t1", map[string]any{"trigger_type": "chat_message"})
	require.NoError(t, err)

	input := map[string]any{"text": "hello", "from": "+5511999"}

	output, err := node.Execute(context.Background(), input, testutil.NewExecutionContext(nil))
	require.NoError(t, err)

	assert.Equal(t, "hello", output["text"])
	assert.Equal(t, "+5511999", output["from"])
	assert.Equal(t, "chat_message", output["trigger_type"])
}

func TestTriggerNode_DefaultsToManual(t *testing.T) {
	node, err := NewTriggerNode("t1", map[string]any{})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "manual", output["trigger_type"])
}

func TestTriggerNodeFactory(t *testing.T) {
	factory := NewTriggerNodeFactory()

	assert.Equal(t, "trigger", factory.ID())
	assert.NotNil(t, factory.Schema())

	handler, err := factory.Create(context.Background(), testutil.CreateTestNode(testutil.WithTriggerNode()))
	require.NoError(t, err)
	assert.NotNil(t, handler)
}
