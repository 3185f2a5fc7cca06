package taskmanager

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// PlanVisualization renders the dependency plan of a target
type PlanVisualization struct {
	registry *Registry
}

// NewPlanVisualization creates a new visualization helper
func NewPlanVisualization(registry *Registry) *PlanVisualization {
	return &PlanVisualization{registry: registry}
}

// NodeInfo contains information about a task for visualization
type NodeInfo struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Aggregate   bool   `json:"aggregate"`
}

// EdgeInfo contains information about a dependency edge
type EdgeInfo struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Parallel bool   `json:"parallel"`
}

// PlanInfo contains the reachable plan structure for a target
type PlanInfo struct {
	Target string     `json:"target"`
	Order  []string   `json:"order"`
	Nodes  []NodeInfo `json:"nodes"`
	Edges  []EdgeInfo `json:"edges"`
}

// GeneratePlanInfo collects the tasks and edges reachable from target
func (v *PlanVisualization) GeneratePlanInfo(target string) (*PlanInfo, error) {
	order, err := NewSequencer(v.registry).Validate(target)
	if err != nil {
		return nil, err
	}

	info := &PlanInfo{Target: target, Order: order}
	for _, name := range order {
		task, err := v.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:          name,
			Description: task.Description,
			Aggregate:   task.Action == nil,
		})
		for _, step := range task.DependsOn {
			parallel := step.Kind == StepParallel
			for _, dep := range step.TaskNames() {
				info.Edges = append(info.Edges, EdgeInfo{From: name, To: dep, Parallel: parallel})
			}
		}
	}
	return info, nil
}

// ExportJSON returns the plan as indented JSON
func (v *PlanVisualization) ExportJSON(target string) ([]byte, error) {
	info, err := v.GeneratePlanInfo(target)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(info, "", "  ")
}

// ExportDOT returns the plan in Graphviz DOT format
func (v *PlanVisualization) ExportDOT(target string) (string, error) {
	info, err := v.GeneratePlanInfo(target)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("digraph sitebuild {\n")
	sb.WriteString("  rankdir=LR;\n")
	for _, n := range info.Nodes {
		shape := "box"
		if n.Aggregate {
			shape = "ellipse"
		}
		sb.WriteString(fmt.Sprintf("  %q [shape=%s];\n", n.ID, shape))
	}
	for _, e := range info.Edges {
		style := "solid"
		if e.Parallel {
			style = "dashed"
		}
		sb.WriteString(fmt.Sprintf("  %q -> %q [style=%s];\n", e.From, e.To, style))
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

// ExportText renders the expanded plan as an indented tree
func (v *PlanVisualization) ExportText(target string) (string, error) {
	if _, err := NewSequencer(v.registry).Validate(target); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(target + "\n")
	task, _ := v.registry.Resolve(target)
	v.writeSequence(&sb, task.DependsOn, "")
	return sb.String(), nil
}

func (v *PlanVisualization) writeSequence(sb *strings.Builder, steps []Step, prefix string) {
	for i, step := range steps {
		last := i == len(steps)-1
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}

		if step.Kind == StepParallel {
			sb.WriteString(prefix + branch + "(parallel)\n")
			v.writeSequence(sb, step.Steps, prefix+next)
			continue
		}

		sb.WriteString(prefix + branch + step.Task + "\n")
		if task, err := v.registry.Resolve(step.Task); err == nil {
			v.writeSequence(sb, task.DependsOn, prefix+next)
		}
	}
}

// DescribeSequence renders a sequence on one line, e.g. "[clean lint:js] -> copy"
func DescribeSequence(seq Sequence) string {
	parts := make([]string, 0, len(seq))
	for _, step := range seq {
		parts = append(parts, describeStep(step))
	}
	return strings.Join(parts, " -> ")
}

func describeStep(step Step) string {
	if step.Kind == StepSingle {
		return step.Task
	}
	members := make([]string, 0, len(step.Steps))
	for _, sub := range step.Steps {
		members = append(members, describeStep(sub))
	}
	sort.Strings(members)
	return "[" + strings.Join(members, " ") + "]"
}
