// Package events defines event types and structures for execution lifecycle notifications.
package events

import (
	"time"

	"github.com/flowgent/flowgent/pkg/models"
)

type EventType string

// Topic carries all execution lifecycle events.
const Topic = "flowgent.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionCancelledEvent EventType = "execution.cancelled"
	ExecutionTimeoutEvent   EventType = "execution.timeout"
	StepFailedEvent         EventType = "execution.step.failed"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	WorkflowID  string         `json:"workflow_id"`
	ExecutionID string         `json:"execution_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (e BaseEvent) GetType() EventType {
	return e.Type
}

// NewBaseEvent creates the shared envelope for an execution event.
func NewBaseEvent(eventType EventType, workflowID, executionID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  workflowID,
		ExecutionID: executionID,
	}
}

type ExecutionStarted struct {
	BaseEvent

	TriggerNodeID string         `json:"trigger_node_id"`
	InputData     map[string]any `json:"input_data,omitempty"`
}

type ExecutionFinished struct {
	BaseEvent

	Status   models.ExecutionStatus `json:"status"`
	Duration time.Duration          `json:"duration"`
	Error    string                 `json:"error,omitempty"`
}

type StepFailed struct {
	BaseEvent

	NodeID          string `json:"node_id"`
	NodeType        string `json:"node_type"`
	Error           string `json:"error"`
	ContinueOnError bool   `json:"continue_on_error"`
}

// FinishedEventType maps a terminal execution status to its event type.
func FinishedEventType(status models.ExecutionStatus) EventType {
	switch status {
	case models.ExecutionStatusCompleted:
		return ExecutionCompletedEvent
	case models.ExecutionStatusFailed:
		return ExecutionFailedEvent
	case models.ExecutionStatusCancelled:
		return ExecutionCancelledEvent
	case models.ExecutionStatusTimeout:
		return ExecutionTimeoutEvent
	case models.ExecutionStatusPending, models.ExecutionStatusRunning:
		return ""
	}

	return ""
}
