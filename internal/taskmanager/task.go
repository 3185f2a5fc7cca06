package taskmanager

import "context"

// Action is the uniform completion contract for a task. Returning nil signals
// success; any error fails the run. Asynchronous work must be awaited inside
// the action before it returns.
type Action func(ctx context.Context) error

// StepKind tags the variant held by a Step.
type StepKind int

const (
	// StepSingle runs one named task.
	StepSingle StepKind = iota
	// StepParallel runs every member concurrently and waits for all of them.
	StepParallel
)

// Step is one entry of a dependency Sequence: either a single task reference
// or a group of steps that may run concurrently.
type Step struct {
	Kind  StepKind
	Task  string
	Steps []Step
}

// Single returns a step referencing the named task.
func Single(name string) Step {
	return Step{Kind: StepSingle, Task: name}
}

// Parallel returns a step whose members run concurrently.
func Parallel(steps ...Step) Step {
	return Step{Kind: StepParallel, Steps: steps}
}

// ParallelTasks is shorthand for a Parallel group of single tasks.
func ParallelTasks(names ...string) Step {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		steps = append(steps, Single(name))
	}
	return Parallel(steps...)
}

// Sequence is an ordered list of steps. Each entry completes before the next
// one starts.
type Sequence []Step

// Series builds a Sequence of single task references.
func Series(names ...string) Sequence {
	seq := make(Sequence, 0, len(names))
	for _, name := range names {
		seq = append(seq, Single(name))
	}
	return seq
}

// TaskNames returns every task name referenced by the step, depth first.
func (s Step) TaskNames() []string {
	if s.Kind == StepSingle {
		return []string{s.Task}
	}
	var names []string
	for _, sub := range s.Steps {
		names = append(names, sub.TaskNames()...)
	}
	return names
}

// TaskNames returns every task name referenced by the sequence, in order.
func (seq Sequence) TaskNames() []string {
	var names []string
	for _, s := range seq {
		names = append(names, s.TaskNames()...)
	}
	return names
}

// Task represents a single named unit of the build.
type Task struct {
	Name        string
	Description string
	DependsOn   Sequence // Runs before Action
	Action      Action   // Nil for aggregate tasks
}
