package models

// CategoryType represents the category of node.
type CategoryType string

const (
	CategoryTypeTriggers CategoryType = "triggers" // Entry points (chat message, webhook, schedule)
	CategoryTypeActions  CategoryType = "actions"  // Regular work nodes (ai_response, integration, etc.)
	CategoryTypeFlow     CategoryType = "flow"     // Control flow nodes (condition, wait, loop)
)

// NodeType identifies the handler dispatched for a node.
type NodeType string

const (
	NodeTypeTrigger      NodeType = "trigger"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeAction       NodeType = "action"
	NodeTypeAIResponse   NodeType = "ai_response"
	NodeTypeHumanHandoff NodeType = "human_handoff"
	NodeTypeIntegration  NodeType = "integration"
	NodeTypeWait         NodeType = "wait"
	NodeTypeWebhook      NodeType = "webhook"
	NodeTypeVariable     NodeType = "variable"
	NodeTypeLoop         NodeType = "loop"
)

// WorkflowNode represents one node instance in a workflow graph.
type WorkflowNode struct {
	ID              string         `json:"id"       validate:"required"`
	Type            NodeType       `json:"type"     validate:"required"`
	Category        CategoryType   `json:"category" validate:"required"`
	Name            string         `json:"name"     validate:"required,min=1"`
	Config          map[string]any `json:"config"`
	Priority        int            `json:"priority"`          // Planner tie-break, ascending; default 0
	ContinueOnError bool           `json:"continue_on_error"` // Failed step logs a warning instead of failing the run
	Enabled         bool           `json:"enabled"`
	PositionX       int            `json:"position_x"`
	PositionY       int            `json:"position_y"`
}

func (n *WorkflowNode) IsTriggerNode() bool {
	return n.Category == CategoryTypeTriggers
}
