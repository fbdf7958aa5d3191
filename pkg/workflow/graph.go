package workflow

import (
	"fmt"

	"github.com/vandyand/agentic-workflow-engine/pkg/models"
)

// graph is the dependency structure induced by Reference bindings: an edge
// upstream -> dependent for every reference.
type graph struct {
	steps      map[string]*models.StepDefinition
	order      []string            // definition order
	deps       map[string][]string // step -> upstream steps
	dependents map[string][]string // step -> downstream steps
}

func buildGraph(def *models.WorkflowDefinition) (*graph, error) {
	g := &graph{
		steps:      make(map[string]*models.StepDefinition, len(def.Steps)),
		deps:       make(map[string][]string, len(def.Steps)),
		dependents: make(map[string][]string, len(def.Steps)),
	}

	for _, step := range def.Steps {
		if _, exists := g.steps[step.ID]; exists {
			return nil, fmt.Errorf("duplicate step id %q", step.ID)
		}

		g.steps[step.ID] = step
		g.order = append(g.order, step.ID)
	}

	for _, step := range def.Steps {
		for _, upstream := range step.Dependencies() {
			if _, ok := g.steps[upstream]; !ok {
				return nil, fmt.Errorf("%w: step %q references %q", ErrUnknownStep, step.ID, upstream)
			}

			g.deps[step.ID] = append(g.deps[step.ID], upstream)
			g.dependents[upstream] = append(g.dependents[upstream], step.ID)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CyclicWorkflowError{Cycle: cycle}
	}

	return g, nil
}

// findCycle runs a depth-first traversal with visiting/visited marks and
// returns the first cycle found, or nil for an acyclic graph.
func (g *graph) findCycle() []string {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[string]int, len(g.order))

	var (
		stack []string
		cycle []string
	)

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = visiting
		stack = append(stack, id)

		for _, dep := range g.deps[id] {
			switch state[dep] {
			case visiting:
				start := 0
				for i, onStack := range stack {
					if onStack == dep {
						start = i

						break
					}
				}

				cycle = append(append([]string{}, stack[start:]...), dep)

				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = visited

		return false
	}

	for _, id := range g.order {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}

	return nil
}
