// Package scope provides the hierarchical execution-context manager: a
// process-wide tree of variable scopes with inheritance, access
// logging, and snapshot/restore. Scopes are held in an id-keyed arena
// and reference each other by id only. All mutation goes through the
// manager lock, so a read-modify-write of one variable never
// interleaves with another writer's.
package scope

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/google/uuid"
)

const (
	maxAccessLogEntries = 1000
	maxSnapshots        = 100
)

// AccessOptions identifies the actor behind a variable operation for
// the audit trail.
type AccessOptions struct {
	NodeID      string
	ExecutionID string
}

// SetOptions controls how a variable is stored.
type SetOptions struct {
	Type        models.VariableType // Inferred from the value when empty
	Readonly    bool
	Encrypted   bool
	NodeID      string
	ExecutionID string
}

// LogFilter selects access-log entries. Zero fields match everything.
type LogFilter struct {
	Action       models.AccessAction
	VariableName string
	ScopeID      string
	NodeID       string
	ExecutionID  string
	Since        time.Time
	Until        time.Time
}

// Manager owns the scope arena, the access log, and the snapshot
// store. Construct one per engine; it is safe for concurrent use by
// many executions.
type Manager struct {
	mu        sync.RWMutex
	scopes    map[string]*models.ContextScope
	snapshots map[string]*models.ContextSnapshot
	accessLog []models.AccessLogEntry
	cipher    Cipher
	logger    *slog.Logger
	globalID  string
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithCipher replaces the default reversible codec used for encrypted
// variables.
func WithCipher(c Cipher) Option {
	return func(m *Manager) { m.cipher = c }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager with a root global scope.
func NewManager(logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		scopes:    make(map[string]*models.ContextScope),
		snapshots: make(map[string]*models.ContextSnapshot),
		cipher:    NewObfuscatingCipher(),
		logger:    logger.With("module", "scope_manager"),
		now:       func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(m)
	}

	global := &models.ContextScope{
		ID:        "global",
		Name:      "global",
		Type:      models.ScopeTypeGlobal,
		Variables: make(map[string]*models.ContextVariable),
		CreatedAt: m.now(),
	}
	m.scopes[global.ID] = global
	m.globalID = global.ID

	return m
}

// GlobalScopeID returns the id of the root scope.
func (m *Manager) GlobalScopeID() string {
	return m.globalID
}

// CreateScope allocates a new scope with a generated id and links it
// under the given parent (the global scope when parentID is empty).
func (m *Manager) CreateScope(name string, scopeType models.ScopeType, parentID string, metadata map[string]any) (*models.ContextScope, error) {
	id := fmt.Sprintf("%s_%s", scopeType, uuid.New().String())

	return m.EnsureScope(id, name, scopeType, parentID, metadata)
}

// EnsureScope returns the scope with the given stable id, creating it
// lazily on first use (e.g. "workflow_{id}_{executionID}").
func (m *Manager) EnsureScope(id, name string, scopeType models.ScopeType, parentID string, metadata map[string]any) (*models.ContextScope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.scopes[id]; ok {
		return existing, nil
	}

	if parentID == "" {
		parentID = m.globalID
	}

	parent, ok := m.scopes[parentID]
	if !ok {
		return nil, fmt.Errorf("parent scope %s not found", parentID)
	}

	scope := &models.ContextScope{
		ID:        id,
		Name:      name,
		Type:      scopeType,
		ParentID:  parentID,
		Variables: make(map[string]*models.ContextVariable),
		Metadata:  metadata,
		CreatedAt: m.now(),
	}

	if ttl := scopeType.TTL(); ttl > 0 {
		expires := m.now().Add(ttl)
		scope.ExpiresAt = &expires
	}

	parent.ChildIDs = append(parent.ChildIDs, id)
	m.scopes[id] = scope

	m.logger.Debug("Created scope", "scope_id", id, "type", scopeType, "parent_id", parentID)

	return scope, nil
}

// Scope returns the scope with the given id, or nil.
func (m *Manager) Scope(id string) *models.ContextScope {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.scopes[id]
}

// DestroyScope removes a scope and all of its descendants.
func (m *Manager) DestroyScope(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == m.globalID {
		return false
	}

	scope, ok := m.scopes[id]
	if !ok {
		return false
	}

	if parent, ok := m.scopes[scope.ParentID]; ok {
		parent.ChildIDs = removeString(parent.ChildIDs, id)
	}

	m.destroyLocked(id)

	return true
}

func (m *Manager) destroyLocked(id string) {
	scope, ok := m.scopes[id]
	if !ok {
		return
	}

	for _, childID := range scope.ChildIDs {
		m.destroyLocked(childID)
	}

	delete(m.scopes, id)
}

// SetVariable stores a value in the named scope. It returns false
// without mutation when the variable already exists and is readonly.
func (m *Manager) SetVariable(scopeID, name string, value any, opts SetOptions) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	scope, ok := m.scopes[scopeID]
	if !ok {
		return false
	}

	var oldValue any

	existing, exists := scope.Variables[name]
	if exists {
		if existing.Readonly {
			m.appendLogLocked(models.AccessLogEntry{
				Timestamp:    m.now(),
				Action:       models.AccessActionDenied,
				VariableName: name,
				ScopeID:      scopeID,
				NodeID:       opts.NodeID,
				ExecutionID:  opts.ExecutionID,
			})

			return false
		}

		oldValue = existing.Value
	}

	varType := opts.Type
	if varType == "" {
		varType = models.InferVariableType(value)
	}

	stored := value

	if opts.Encrypted {
		encoded, err := m.cipher.Encode(value)
		if err != nil {
			m.logger.Error("Failed to encode encrypted variable", "variable", name, "error", err)

			return false
		}

		stored = encoded
	}

	now := m.now()
	created := now

	if exists {
		created = existing.CreatedAt
	}

	scope.Variables[name] = &models.ContextVariable{
		Name:      name,
		Value:     stored,
		Type:      varType,
		ScopeID:   scopeID,
		Readonly:  opts.Readonly,
		Encrypted: opts.Encrypted,
		CreatedAt: created,
		UpdatedAt: now,
	}

	m.appendLogLocked(models.AccessLogEntry{
		Timestamp:    now,
		Action:       models.AccessActionWrite,
		VariableName: name,
		ScopeID:      scopeID,
		NodeID:       opts.NodeID,
		ExecutionID:  opts.ExecutionID,
		OldValue:     oldValue,
		NewValue:     value,
	})

	return true
}

// GetVariable resolves a variable by walking the scope chain from the
// named scope to the root; the nearest definition wins. Encrypted
// values are decrypted transparently. The second return reports
// whether a definition was found.
func (m *Manager) GetVariable(scopeID, name string, opts AccessOptions) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.scopes[scopeID]
	for current != nil {
		if variable, ok := current.Variables[name]; ok {
			value := variable.Value

			if variable.Encrypted {
				decoded, err := m.cipher.Decode(value)
				if err != nil {
					m.logger.Error("Failed to decode encrypted variable", "variable", name, "error", err)

					return nil, false
				}

				value = decoded
			}

			m.appendLogLocked(models.AccessLogEntry{
				Timestamp:    m.now(),
				Action:       models.AccessActionRead,
				VariableName: name,
				ScopeID:      current.ID,
				NodeID:       opts.NodeID,
				ExecutionID:  opts.ExecutionID,
			})

			return value, true
		}

		current = m.scopes[current.ParentID]
	}

	return nil, false
}

// DeleteVariable removes a variable from the named scope only;
// ancestor definitions of the same name are untouched. Readonly
// variables cannot be deleted.
func (m *Manager) DeleteVariable(scopeID, name string, opts AccessOptions) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	scope, ok := m.scopes[scopeID]
	if !ok {
		return false
	}

	variable, ok := scope.Variables[name]
	if !ok {
		return false
	}

	if variable.Readonly {
		m.appendLogLocked(models.AccessLogEntry{
			Timestamp:    m.now(),
			Action:       models.AccessActionDenied,
			VariableName: name,
			ScopeID:      scopeID,
			NodeID:       opts.NodeID,
			ExecutionID:  opts.ExecutionID,
		})

		return false
	}

	delete(scope.Variables, name)

	m.appendLogLocked(models.AccessLogEntry{
		Timestamp:    m.now(),
		Action:       models.AccessActionDelete,
		VariableName: name,
		ScopeID:      scopeID,
		NodeID:       opts.NodeID,
		ExecutionID:  opts.ExecutionID,
		OldValue:     variable.Value,
	})

	return true
}

// AllVariables merges the scope chain ancestor-to-descendant so that a
// descendant's value for a name overrides an ancestor's. Encrypted
// values are decrypted in the returned map.
func (m *Manager) AllVariables(scopeID string) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := make([]*models.ContextScope, 0, 4)

	current := m.scopes[scopeID]
	for current != nil {
		chain = append(chain, current)
		current = m.scopes[current.ParentID]
	}

	merged := make(map[string]any)

	// Walk root-first so children shadow parents.
	for i := len(chain) - 1; i >= 0; i-- {
		for name, variable := range chain[i].Variables {
			value := variable.Value

			if variable.Encrypted {
				decoded, err := m.cipher.Decode(value)
				if err != nil {
					continue
				}

				value = decoded
			}

			merged[name] = value
		}
	}

	return merged
}

// CreateSnapshot captures the full variable set of the named scopes.
func (m *Manager) CreateSnapshot(executionID string, scopeIDs []string) *models.ContextSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := &models.ContextSnapshot{
		ID:          "snapshot_" + uuid.New().String(),
		ExecutionID: executionID,
		Scopes:      make(map[string]map[string]*models.ContextVariable, len(scopeIDs)),
		CreatedAt:   m.now(),
	}

	for _, scopeID := range scopeIDs {
		scope, ok := m.scopes[scopeID]
		if !ok {
			continue
		}

		snapshot.Scopes[scopeID] = copyVariables(scope.Variables)
	}

	m.snapshots[snapshot.ID] = snapshot
	m.trimSnapshotsLocked()

	return snapshot
}

// RestoreSnapshot clears and rewrites each captured scope's variables
// to match the snapshot exactly. Scopes destroyed since the capture
// are skipped.
func (m *Manager) RestoreSnapshot(snapshotID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.snapshots[snapshotID]
	if !ok {
		return false
	}

	for scopeID, variables := range snapshot.Scopes {
		scope, ok := m.scopes[scopeID]
		if !ok {
			continue
		}

		scope.Variables = copyVariables(variables)
	}

	return true
}

// Cleanup destroys scopes past their expiry (cascading to children)
// and trims the access log and snapshot store to their retention
// limits. It is run on a schedule by the Sweeper and callable on
// demand.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	expired := make([]string, 0)

	for id, scope := range m.scopes {
		if scope.Expired(now) {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		scope, ok := m.scopes[id]
		if !ok {
			continue // Already destroyed as a descendant of another expired scope
		}

		if parent, ok := m.scopes[scope.ParentID]; ok {
			parent.ChildIDs = removeString(parent.ChildIDs, id)
		}

		m.destroyLocked(id)
	}

	if len(m.accessLog) > maxAccessLogEntries {
		m.accessLog = m.accessLog[len(m.accessLog)-maxAccessLogEntries:]
	}

	m.trimSnapshotsLocked()

	if len(expired) > 0 {
		m.logger.Debug("Cleaned up expired scopes", "count", len(expired))
	}
}

func (m *Manager) trimSnapshotsLocked() {
	if len(m.snapshots) <= maxSnapshots {
		return
	}

	all := make([]*models.ContextSnapshot, 0, len(m.snapshots))
	for _, snapshot := range m.snapshots {
		all = append(all, snapshot)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	for _, stale := range all[maxSnapshots:] {
		delete(m.snapshots, stale.ID)
	}
}

// AccessLogs returns the audit entries matching the filter, oldest first.
func (m *Manager) AccessLogs(filter LogFilter) []models.AccessLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]models.AccessLogEntry, 0)

	for _, entry := range m.accessLog {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}

		if filter.VariableName != "" && entry.VariableName != filter.VariableName {
			continue
		}

		if filter.ScopeID != "" && entry.ScopeID != filter.ScopeID {
			continue
		}

		if filter.NodeID != "" && entry.NodeID != filter.NodeID {
			continue
		}

		if filter.ExecutionID != "" && entry.ExecutionID != filter.ExecutionID {
			continue
		}

		if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
			continue
		}

		if !filter.Until.IsZero() && entry.Timestamp.After(filter.Until) {
			continue
		}

		matched = append(matched, entry)
	}

	return matched
}

func (m *Manager) appendLogLocked(entry models.AccessLogEntry) {
	m.accessLog = append(m.accessLog, entry)
}

func copyVariables(variables map[string]*models.ContextVariable) map[string]*models.ContextVariable {
	copied := make(map[string]*models.ContextVariable, len(variables))

	for name, variable := range variables {
		v := *variable
		copied[name] = &v
	}

	return copied
}

func removeString(items []string, target string) []string {
	for i, item := range items {
		if item == target {
			return append(items[:i], items[i+1:]...)
		}
	}

	return items
}
