package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/testutil"
)

func TestValidate_ValidWorkflow(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode()),
		testutil.CreateTestNode(),
		testutil.CreateTestNode(),
	)

	result := Validate(wf)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_MissingTrigger(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(),
		testutil.CreateTestNode(),
	)

	result := Validate(wf)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeMissingTrigger, result.Errors[0].Code)
}

func TestValidate_OrphanedNodeIsWarning(t *testing.T) {
	orphan := testutil.CreateTestNode(testutil.WithID("orphan"))
	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode()),
		testutil.CreateTestNode(),
	)
	wf.Nodes = append(wf.Nodes, orphan)

	result := Validate(wf)

	assert.True(t, result.Valid, "orphaned nodes must not block execution")
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, CodeOrphanedNode, result.Warnings[0].Code)
	assert.Equal(t, "orphan", result.Warnings[0].NodeID)
}

func TestValidate_CircularDependency(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b")),
		testutil.CreateTestNode(testutil.WithID("c")),
	)
	wf.Connections = append(wf.Connections, testutil.Connect("c", "b"))

	result := Validate(wf)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeCircularDependency, result.Errors[0].Code)
}

func TestValidate_SelfLoop(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
		testutil.CreateTestNode(testutil.WithID("b")),
	)
	wf.Connections = append(wf.Connections, testutil.Connect("b", "b"))

	result := Validate(wf)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeCircularDependency, result.Errors[0].Code)
	assert.Equal(t, "b", result.Errors[0].NodeID)
}

func TestValidate_DiamondIsAcyclic(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("a")),
	)
	for _, id := range []string{"b", "c", "d"} {
		wf.Nodes = append(wf.Nodes, testutil.CreateTestNode(testutil.WithID(id)))
	}

	wf.Connections = []*models.Connection{
		testutil.Connect("a", "b"),
		testutil.Connect("a", "c"),
		testutil.Connect("b", "d"),
		testutil.Connect("c", "d"),
	}

	result := Validate(wf)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidationResult_ErrorSummary(t *testing.T) {
	result := ValidationResult{
		Errors: []ValidationIssue{
			{Code: CodeMissingTrigger, Message: "workflow has no trigger node"},
			{Code: CodeCircularDependency, Message: "cycle detected through node b"},
		},
	}

	assert.Equal(t, "workflow has no trigger node; cycle detected through node b", result.ErrorSummary())
	assert.Empty(t, ValidationResult{}.ErrorSummary())
}
