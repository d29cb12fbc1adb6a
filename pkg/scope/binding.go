package scope

import "fmt"

// Binding is a protocol.VariableStore view of the manager pinned to one
// scope and one acting node/execution, handed to node handlers.
type Binding struct {
	manager     *Manager
	scopeID     string
	nodeID      string
	executionID string
}

// Bind creates a handler-facing variable store for the given scope.
func (m *Manager) Bind(scopeID, nodeID, executionID string) *Binding {
	return &Binding{
		manager:     m,
		scopeID:     scopeID,
		nodeID:      nodeID,
		executionID: executionID,
	}
}

func (b *Binding) Get(name string) (any, bool) {
	return b.manager.GetVariable(b.scopeID, name, AccessOptions{NodeID: b.nodeID, ExecutionID: b.executionID})
}

func (b *Binding) Set(name string, value any) error {
	ok := b.manager.SetVariable(b.scopeID, name, value, SetOptions{NodeID: b.nodeID, ExecutionID: b.executionID})
	if !ok {
		return fmt.Errorf("variable %q is readonly or scope %s is gone", name, b.scopeID)
	}

	return nil
}

func (b *Binding) Delete(name string) error {
	ok := b.manager.DeleteVariable(b.scopeID, name, AccessOptions{NodeID: b.nodeID, ExecutionID: b.executionID})
	if !ok {
		return fmt.Errorf("variable %q is readonly or not set in scope %s", name, b.scopeID)
	}

	return nil
}

func (b *Binding) All() map[string]any {
	return b.manager.AllVariables(b.scopeID)
}
