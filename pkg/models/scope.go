package models

import "time"

// ScopeType is the level of a variable scope in the inheritance chain.
type ScopeType string

const (
	ScopeTypeGlobal       ScopeType = "global"
	ScopeTypeWorkflow     ScopeType = "workflow"
	ScopeTypeConversation ScopeType = "conversation"
	ScopeTypeSession      ScopeType = "session"
	ScopeTypeLocal        ScopeType = "local"
)

// TTL returns how long scopes of this type live; zero means unbounded.
func (t ScopeType) TTL() time.Duration {
	switch t {
	case ScopeTypeSession:
		return 24 * time.Hour
	case ScopeTypeLocal:
		return time.Hour
	case ScopeTypeGlobal, ScopeTypeWorkflow, ScopeTypeConversation:
		return 0
	}

	return 0
}

// VariableType is the declared or inferred type of a context variable.
type VariableType string

const (
	VariableTypeString  VariableType = "string"
	VariableTypeNumber  VariableType = "number"
	VariableTypeBoolean VariableType = "boolean"
	VariableTypeObject  VariableType = "object"
	VariableTypeArray   VariableType = "array"
)

// InferVariableType derives a VariableType from a value's shape.
func InferVariableType(value any) VariableType {
	switch value.(type) {
	case string:
		return VariableTypeString
	case bool:
		return VariableTypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return VariableTypeNumber
	case []any:
		return VariableTypeArray
	default:
		return VariableTypeObject
	}
}

// ContextVariable is one named value stored in a scope.
type ContextVariable struct {
	Name      string       `json:"name"`
	Value     any          `json:"value"`
	Type      VariableType `json:"type"`
	ScopeID   string       `json:"scope_id"`
	Readonly  bool         `json:"readonly"`
	Encrypted bool         `json:"encrypted"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ContextScope is a named container of variables. Relationships are
// held by id, not by live pointers; the arena in pkg/scope owns the
// scope set.
type ContextScope struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	Type      ScopeType                   `json:"type"`
	ParentID  string                      `json:"parent_id,omitempty"`
	ChildIDs  []string                    `json:"child_ids,omitempty"`
	Variables map[string]*ContextVariable `json:"variables"`
	Metadata  map[string]any              `json:"metadata,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	ExpiresAt *time.Time                  `json:"expires_at,omitempty"`
}

// Expired reports whether the scope is past its expiry at the given instant.
func (s *ContextScope) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// AccessAction classifies scope access-log entries.
type AccessAction string

const (
	AccessActionRead   AccessAction = "read"
	AccessActionWrite  AccessAction = "write"
	AccessActionDelete AccessAction = "delete"
	AccessActionDenied AccessAction = "denied" // Readonly conflict; no mutation happened
)

// AccessLogEntry records one variable read, write, or delete.
type AccessLogEntry struct {
	Timestamp    time.Time    `json:"timestamp"`
	Action       AccessAction `json:"action"`
	VariableName string       `json:"variable_name"`
	ScopeID      string       `json:"scope_id"`
	NodeID       string       `json:"node_id,omitempty"`
	ExecutionID  string       `json:"execution_id,omitempty"`
	OldValue     any          `json:"old_value,omitempty"`
	NewValue     any          `json:"new_value,omitempty"`
}

// ContextSnapshot captures the full variable set of a group of scopes
// at a point in time.
type ContextSnapshot struct {
	ID          string                                 `json:"id"`
	ExecutionID string                                 `json:"execution_id"`
	Scopes      map[string]map[string]*ContextVariable `json:"scopes"` // scope id -> variable name -> copy
	CreatedAt   time.Time                              `json:"created_at"`
}
