package taskmanager

import (
	"fmt"
	"sort"
)

// DAG represents a directed acyclic graph of task names.
type DAG struct {
	nodes    map[string]bool
	edges    map[string][]string // node -> list of nodes it depends on
	inDegree map[string]int      // node -> number of incoming edges
}

// NewDAG creates a new empty DAG.
func NewDAG() *DAG {
	return &DAG{
		nodes:    make(map[string]bool),
		edges:    make(map[string][]string),
		inDegree: make(map[string]int),
	}
}

// AddNode adds a node to the DAG.
func (d *DAG) AddNode(id string) {
	if !d.nodes[id] {
		d.nodes[id] = true
		d.inDegree[id] = 0
	}
}

// AddEdge adds a dependency edge from 'from' to 'to' (from depends on to).
func (d *DAG) AddEdge(from, to string) {
	d.AddNode(from)
	d.AddNode(to)

	for _, existing := range d.edges[from] {
		if existing == to {
			return
		}
	}
	d.edges[from] = append(d.edges[from], to)
	d.inDegree[from]++
}

// TopologicalSort returns the nodes with every dependency ahead of its
// dependents. Ties are broken by name so the order is stable.
// Returns an error if a cycle is detected.
func (d *DAG) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(d.inDegree))
	for node, degree := range d.inDegree {
		inDegree[node] = degree
	}

	// dependents is the reverse of edges
	dependents := make(map[string][]string)
	for node, deps := range d.edges {
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], node)
		}
	}

	var queue []string
	for node, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, node)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		next := dependents[current]
		sort.Strings(next)
		for _, node := range next {
			inDegree[node]--
			if inDegree[node] == 0 {
				queue = append(queue, node)
			}
		}
	}

	if len(result) != len(d.nodes) {
		var stuck []string
		for node, degree := range inDegree {
			if degree > 0 {
				stuck = append(stuck, node)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("circular dependency detected in DAG among %v", stuck)
	}

	return result, nil
}

// Size returns the number of nodes.
func (d *DAG) Size() int {
	return len(d.nodes)
}

// buildDAG collects every task reachable from target. Unknown task names
// fail with the registry's UnknownTaskError.
func buildDAG(r *Registry, target string) (*DAG, error) {
	dag := NewDAG()
	visited := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		visited[name] = true

		task, err := r.Resolve(name)
		if err != nil {
			return err
		}
		dag.AddNode(name)
		for _, dep := range task.DependsOn.TaskNames() {
			dag.AddEdge(name, dep)
			if err := visit(dep); err != nil {
				return fmt.Errorf("dependency of %s: %w", name, err)
			}
		}
		return nil
	}

	if err := visit(target); err != nil {
		return nil, err
	}
	return dag, nil
}
