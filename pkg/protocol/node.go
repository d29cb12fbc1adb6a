// Package protocol defines the interfaces and contracts for pluggable node handlers.
package protocol

import (
	"context"
	"log/slog"

	"github.com/flowgent/flowgent/pkg/models"
)

// VariableStore is the handler-facing view of the execution's variable
// scope chain. Reads resolve through ancestor scopes; writes land in
// the execution's own scope.
type VariableStore interface {
	Get(name string) (any, bool)
	Set(name string, value any) error
	Delete(name string) error
	All() map[string]any
}

// ExecutionContext carries the run-level identity and services a node
// handler may use during Execute.
type ExecutionContext struct {
	ExecutionID    string
	WorkflowID     string
	DeploymentID   string
	ConversationID string
	Channel        string
	Variables      VariableStore
	Logger         *slog.Logger
}

// NodeHandler executes one node. Execute may suspend (perform
// asynchronous work); the step runner does not proceed until it
// returns. Returning an error is interpreted as a node failure.
type NodeHandler interface {
	Execute(ctx context.Context, input map[string]any, execCtx ExecutionContext) (map[string]any, error)
}

// NodeFactory creates node handler instances and provides metadata
// about the node type.
type NodeFactory interface {
	// Create creates a handler for the given node instance.
	Create(ctx context.Context, node *models.WorkflowNode) (NodeHandler, error)

	// ID returns the node type this factory serves.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for configuring this node.
	Schema() map[string]any
}
