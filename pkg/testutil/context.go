package testutil

import (
	"log/slog"

	"github.com/flowgent/flowgent/pkg/protocol"
)

// MapVariableStore is an in-memory protocol.VariableStore for node tests.
type MapVariableStore map[string]any

func (s MapVariableStore) Get(name string) (any, bool) {
	value, ok := s[name]

	return value, ok
}

func (s MapVariableStore) Set(name string, value any) error {
	s[name] = value

	return nil
}

func (s MapVariableStore) Delete(name string) error {
	delete(s, name)

	return nil
}

func (s MapVariableStore) All() map[string]any { return s }

// NewExecutionContext creates an execution context backed by a
// MapVariableStore, for driving node handlers directly.
func NewExecutionContext(vars map[string]any) protocol.ExecutionContext {
	if vars == nil {
		vars = map[string]any{}
	}

	return protocol.ExecutionContext{
		ExecutionID:    "exec-test",
		WorkflowID:     "wf-test",
		ConversationID: "conv-test",
		Channel:        "test",
		Variables:      MapVariableStore(vars),
		Logger:         slog.Default(),
	}
}
