package workflow

import (
	"fmt"
	"sort"

	"github.com/flowgent/flowgent/pkg/models"
)

// Plan derives the ordered node-id sequence for one run, starting from
// startNodeID. The order is a genuine topological sort of the subgraph
// reachable from the start node (in-degree based joins), so a node
// with several incoming edges is scheduled only after every reachable
// predecessor. Ties break deterministically by ascending node priority,
// then node id.
func Plan(wf *models.Workflow, startNodeID string) ([]string, error) {
	start := wf.NodeByID(startNodeID)
	if start == nil {
		return nil, fmt.Errorf("start node %s not found in workflow %s", startNodeID, wf.ID)
	}

	adjacency, _ := edgeIndex(wf)

	// Restrict to nodes reachable from the start.
	reachable := map[string]bool{startNodeID: true}
	stack := []string{startNodeID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range adjacency[current] {
			if wf.NodeByID(next) == nil {
				return nil, fmt.Errorf("connection references unknown node %s", next)
			}

			if !reachable[next] {
				reachable[next] = true
				stack = append(stack, next)
			}
		}
	}

	inDegree := make(map[string]int, len(reachable))
	for id := range reachable {
		inDegree[id] = 0
	}

	for source, targets := range adjacency {
		if !reachable[source] {
			continue
		}

		for _, target := range targets {
			if reachable[target] {
				inDegree[target]++
			}
		}
	}

	// The start node begins the plan even when edges point back at it.
	ready := []string{startNodeID}
	scheduled := map[string]bool{startNodeID: true}
	plan := make([]string, 0, len(reachable))

	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			a, b := wf.NodeByID(ready[i]), wf.NodeByID(ready[j])
			if a.Priority != b.Priority {
				return a.Priority < b.Priority
			}

			return a.ID < b.ID
		})

		current := ready[0]
		ready = ready[1:]
		plan = append(plan, current)

		for _, next := range adjacency[current] {
			if !reachable[next] || scheduled[next] {
				continue
			}

			inDegree[next]--
			if inDegree[next] <= 0 {
				scheduled[next] = true
				ready = append(ready, next)
			}
		}
	}

	if len(plan) != len(reachable) {
		return nil, fmt.Errorf("workflow %s has a cycle reachable from node %s", wf.ID, startNodeID)
	}

	return plan, nil
}
