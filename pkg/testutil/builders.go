// Package testutil provides test data builders shared across package tests.
package testutil

import (
	"github.com/google/uuid"

	"github.com/flowgent/flowgent/pkg/models"
)

// CreateTestNode creates a test WorkflowNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:       uuid.New().String(),
		Type:     "log",
		Category: models.CategoryTypeActions,
		Name:     "Test Node",
		Config:   map[string]any{"message": "test", "level": "info"},
		Enabled:  true,
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node id.
func WithID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithType sets the node type and matching category.
func WithType(nodeType models.NodeType, category models.CategoryType) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = nodeType
		n.Category = category
	}
}

// WithTriggerNode configures the node as an enabled chat-message trigger.
func WithTriggerNode() func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = models.NodeTypeTrigger
		n.Category = models.CategoryTypeTriggers
		n.Config = map[string]any{"trigger_type": "chat_message"}
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Config = config
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Name = name
	}
}

// WithPriority sets the planner tie-break priority.
func WithPriority(priority int) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Priority = priority
	}
}

// WithContinueOnError marks node failures as non-fatal.
func WithContinueOnError() func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ContinueOnError = true
	}
}

// WithDisabled marks the node disabled.
func WithDisabled() func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Enabled = false
	}
}

// CreateTestWorkflow creates a published workflow from the given nodes,
// connected linearly in order.
func CreateTestWorkflow(nodes ...*models.WorkflowNode) *models.Workflow {
	wf := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Test Workflow",
		Status:      models.WorkflowStatusPublished,
		Nodes:       nodes,
		Connections: []*models.Connection{},
		Variables:   map[string]any{},
	}

	for i := 1; i < len(nodes); i++ {
		wf.Connections = append(wf.Connections, Connect(nodes[i-1].ID, nodes[i].ID))
	}

	return wf
}

// Connect builds a main-port connection between two nodes.
func Connect(sourceNodeID, targetNodeID string) *models.Connection {
	return &models.Connection{
		ID:         uuid.New().String(),
		SourcePort: models.MakePortID(sourceNodeID, models.DefaultOutputPort),
		TargetPort: models.MakePortID(targetNodeID, models.DefaultInputPort),
	}
}
