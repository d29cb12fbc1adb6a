package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortID(t *testing.T) {
	nodeID, port, ok := ParsePortID("node-1:main")
	require.True(t, ok)
	assert.Equal(t, "node-1", nodeID)
	assert.Equal(t, "main", port)

	_, _, ok = ParsePortID("no-separator")
	assert.False(t, ok)
}

func TestMakePortID(t *testing.T) {
	assert.Equal(t, "node-1:main", MakePortID("node-1", "main"))
}

func TestConnection_NodeIDs(t *testing.T) {
	conn := &Connection{
		SourcePort: MakePortID("a", DefaultOutputPort),
		TargetPort: MakePortID("b", DefaultInputPort),
	}

	assert.Equal(t, "a", conn.SourceNodeID())
	assert.Equal(t, "b", conn.TargetNodeID())
}

func TestWorkflow_FirstTriggerNode(t *testing.T) {
	wf := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "disabled-trigger", Type: NodeTypeTrigger, Category: CategoryTypeTriggers, Enabled: false},
			{ID: "action", Type: NodeTypeAction, Category: CategoryTypeActions, Enabled: true},
			{ID: "trigger", Type: NodeTypeTrigger, Category: CategoryTypeTriggers, Enabled: true},
		},
	}

	trigger := wf.FirstTriggerNode()
	require.NotNil(t, trigger)
	assert.Equal(t, "trigger", trigger.ID)
}

func TestWorkflow_FirstTriggerNode_None(t *testing.T) {
	wf := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "action", Type: NodeTypeAction, Category: CategoryTypeActions, Enabled: true},
		},
	}

	assert.Nil(t, wf.FirstTriggerNode())
}

func TestWorkflow_NodeByID(t *testing.T) {
	wf := &Workflow{
		Nodes: []*WorkflowNode{{ID: "a"}, {ID: "b"}},
	}

	require.NotNil(t, wf.NodeByID("b"))
	assert.Nil(t, wf.NodeByID("c"))
}

func TestInferVariableType(t *testing.T) {
	assert.Equal(t, VariableTypeString, InferVariableType("x"))
	assert.Equal(t, VariableTypeBoolean, InferVariableType(true))
	assert.Equal(t, VariableTypeNumber, InferVariableType(3))
	assert.Equal(t, VariableTypeNumber, InferVariableType(3.5))
	assert.Equal(t, VariableTypeArray, InferVariableType([]any{1}))
	assert.Equal(t, VariableTypeObject, InferVariableType(map[string]any{}))
}
