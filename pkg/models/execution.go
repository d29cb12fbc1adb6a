package models

import "time"

// ExecutionStatus is the lifecycle state of a workflow execution.
// Transitions are monotonic: pending -> running -> one terminal state.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusTimeout   ExecutionStatus = "timeout"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether the status is final.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusTimeout, ExecutionStatusCancelled:
		return true
	case ExecutionStatusPending, ExecutionStatusRunning:
		return false
	}

	return false
}

// StepStatus is the lifecycle state of a single execution step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// LogLevel classifies execution log entries.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// ExecutionLogEntry is one line of the per-run audit log.
type ExecutionLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	NodeID    string    `json:"node_id,omitempty"`
}

// ExecutionStep records one node's execution within a run.
type ExecutionStep struct {
	NodeID    string              `json:"node_id"`
	NodeName  string              `json:"node_name"`
	NodeType  NodeType            `json:"node_type"`
	Status    StepStatus          `json:"status"`
	StartedAt time.Time           `json:"started_at"`
	EndedAt   *time.Time          `json:"ended_at,omitempty"`
	Duration  time.Duration       `json:"duration"`
	Input     map[string]any      `json:"input,omitempty"`
	Output    map[string]any      `json:"output,omitempty"`
	Error     string              `json:"error,omitempty"`
	Logs      []ExecutionLogEntry `json:"logs,omitempty"`
}

// Finish stamps the step terminal with the given status.
func (s *ExecutionStep) Finish(status StepStatus) {
	now := time.Now().UTC()
	s.EndedAt = &now
	s.Duration = now.Sub(s.StartedAt)
	s.Status = status
}

// WorkflowExecution is the auditable record of one run. It is mutated
// in place by the step runner and becomes immutable once terminal.
type WorkflowExecution struct {
	ID         string              `json:"id"`
	WorkflowID string              `json:"workflow_id"`
	Status     ExecutionStatus     `json:"status"`
	StartedAt  time.Time           `json:"started_at"`
	EndedAt    *time.Time          `json:"ended_at,omitempty"`
	Duration   time.Duration       `json:"duration"`
	Steps      []*ExecutionStep    `json:"steps"`
	Variables  map[string]any      `json:"variables,omitempty"` // Snapshot of the run scope at finish
	Result     map[string]any      `json:"result,omitempty"`    // Last node's output on completion
	Error      string              `json:"error,omitempty"`
	Logs       []ExecutionLogEntry `json:"logs,omitempty"`

	// Caller-supplied context.
	DeploymentID   string `json:"deployment_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Channel        string `json:"channel,omitempty"`
}

// Transition moves the execution to the given status. It returns false
// without side effects when the current status is already terminal or
// the move would not be monotonic.
func (e *WorkflowExecution) Transition(to ExecutionStatus) bool {
	if e.Status.IsTerminal() {
		return false
	}

	switch to {
	case ExecutionStatusRunning:
		if e.Status != ExecutionStatusPending {
			return false
		}
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusTimeout, ExecutionStatusCancelled:
		if e.Status != ExecutionStatusRunning && e.Status != ExecutionStatusPending {
			return false
		}
	case ExecutionStatusPending:
		return false
	}

	e.Status = to

	if to.IsTerminal() {
		now := time.Now().UTC()
		e.EndedAt = &now
		e.Duration = now.Sub(e.StartedAt)
	}

	return true
}

// AppendLog adds an entry to the execution-level log.
func (e *WorkflowExecution) AppendLog(level LogLevel, nodeID, message string) {
	e.Logs = append(e.Logs, ExecutionLogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		NodeID:    nodeID,
	})
}
