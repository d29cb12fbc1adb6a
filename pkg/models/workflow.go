// Package models defines the core domain models for node-based agent workflows.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow definition.
type WorkflowStatus string

const (
	WorkflowStatusDraft       WorkflowStatus = "draft"       // Editable, not executable
	WorkflowStatusPublished   WorkflowStatus = "published"   // Current active, executable
	WorkflowStatusUnpublished WorkflowStatus = "unpublished" // Historical, not executable
)

// Workflow is a graph of typed nodes connected by port-level edges.
// The engine treats it as read-only input; it is authored and mutated
// only by the external editor between runs.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Status      WorkflowStatus  `json:"status"      validate:"required"`
	Nodes       []*WorkflowNode `json:"nodes"`
	Connections []*Connection   `json:"connections"`
	Variables   map[string]any  `json:"variables"` // Declared defaults, seeded into the run scope
	Metadata    map[string]any  `json:"metadata,omitempty"`
	Owner       string          `json:"owner"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// FirstTriggerNode returns the first enabled trigger-category node in
// definition order, or nil when the workflow has none.
func (w *Workflow) FirstTriggerNode() *WorkflowNode {
	for _, node := range w.Nodes {
		if node.IsTriggerNode() && node.Enabled {
			return node
		}
	}

	return nil
}
