// Package workflow implements the execution engine: graph validation,
// execution planning, and the step runner that drives node handlers
// against the scope manager.
package workflow

import (
	"fmt"
	"strings"

	"github.com/flowgent/flowgent/pkg/models"
)

// Validation issue codes.
const (
	CodeMissingTrigger     = "missing_trigger"
	CodeOrphanedNode       = "orphaned_node"
	CodeCircularDependency = "circular_dependency"
)

// ValidationIssue is one finding from graph validation.
type ValidationIssue struct {
	Code    string `json:"code"`
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}

// ValidationResult reports structural soundness of a workflow graph.
// Valid is true iff Errors is empty; warnings never block execution.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// ErrorSummary joins all error messages into one human-readable string.
func (r ValidationResult) ErrorSummary() string {
	if len(r.Errors) == 0 {
		return ""
	}

	messages := make([]string, 0, len(r.Errors))
	for _, issue := range r.Errors {
		messages = append(messages, issue.Message)
	}

	return strings.Join(messages, "; ")
}

type dfsColor int

const (
	colorUnvisited dfsColor = iota
	colorInProgress
	colorDone
)

// Validate inspects a workflow graph for structural soundness: trigger
// presence, node reachability, and cycles. O(nodes+edges).
func Validate(wf *models.Workflow) ValidationResult {
	result := ValidationResult{
		Errors:   make([]ValidationIssue, 0),
		Warnings: make([]ValidationIssue, 0),
	}

	hasTrigger := false

	for _, node := range wf.Nodes {
		if node.IsTriggerNode() {
			hasTrigger = true

			break
		}
	}

	if !hasTrigger {
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    CodeMissingTrigger,
			Message: "workflow has no trigger node",
		})
	}

	adjacency, connected := edgeIndex(wf)

	for _, node := range wf.Nodes {
		if node.IsTriggerNode() {
			continue
		}

		if !connected[node.ID] {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Code:    CodeOrphanedNode,
				NodeID:  node.ID,
				Message: fmt.Sprintf("node %s is not connected to any other node", node.ID),
			})
		}
	}

	colors := make(map[string]dfsColor, len(wf.Nodes))

	for _, node := range wf.Nodes {
		if colors[node.ID] != colorUnvisited {
			continue
		}

		if cycleNode, found := findBackEdge(node.ID, adjacency, colors); found {
			result.Errors = append(result.Errors, ValidationIssue{
				Code:    CodeCircularDependency,
				NodeID:  cycleNode,
				Message: fmt.Sprintf("cycle detected through node %s", cycleNode),
			})

			break
		}
	}

	result.Valid = len(result.Errors) == 0

	return result
}

// edgeIndex builds the outgoing adjacency list and the set of nodes
// touched by at least one connection.
func edgeIndex(wf *models.Workflow) (map[string][]string, map[string]bool) {
	adjacency := make(map[string][]string, len(wf.Nodes))
	connected := make(map[string]bool, len(wf.Nodes))

	for _, conn := range wf.Connections {
		source := conn.SourceNodeID()
		target := conn.TargetNodeID()

		if source == "" || target == "" {
			continue
		}

		adjacency[source] = append(adjacency[source], target)
		connected[source] = true
		connected[target] = true
	}

	return adjacency, connected
}

// findBackEdge runs a three-color depth-first traversal and returns
// the first node found to be reached again while still in progress.
func findBackEdge(start string, adjacency map[string][]string, colors map[string]dfsColor) (string, bool) {
	colors[start] = colorInProgress

	for _, next := range adjacency[start] {
		switch colors[next] {
		case colorInProgress:
			return next, true
		case colorUnvisited:
			if cycleNode, found := findBackEdge(next, adjacency, colors); found {
				return cycleNode, true
			}
		case colorDone:
		}
	}

	colors[start] = colorDone

	return "", false
}
