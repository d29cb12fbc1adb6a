// Package web provides the HTTP handlers and REST API types for
// workflow management and execution.
package web

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string         `json:"name"               validate:"required,min=3"`
	Description string         `json:"description"`
	Variables   map[string]any `json:"variables"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Owner       string         `json:"owner"              validate:"required"`
	Tags        []string       `json:"tags,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing workflow.
// All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string        `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string        `json:"description,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// ExecuteWorkflowRequest represents the request body for triggering a
// workflow run.
type ExecuteWorkflowRequest struct {
	InputData      map[string]any `json:"input_data"`
	Variables      map[string]any `json:"variables"`
	TimeoutSeconds int            `json:"timeout_seconds" validate:"omitempty,min=1,max=3600"`
	DeploymentID   string         `json:"deployment_id"`
	ConversationID string         `json:"conversation_id"`
	Channel        string         `json:"channel"`
}
