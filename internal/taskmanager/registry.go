package taskmanager

import (
	"fmt"
	"sort"
	"sync"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
)

// Registry holds named tasks and their dependency sequences.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Register adds a task, replacing any prior definition with the same name.
func (r *Registry) Register(name string, deps Sequence, action Action) error {
	return r.RegisterTask(&Task{Name: name, DependsOn: deps, Action: action})
}

// RegisterTask adds a fully described task, replacing any prior definition.
func (r *Registry) RegisterTask(task *Task) error {
	if task == nil || task.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.Name] = task
	return nil
}

// RegisterStrict adds a task and fails with a DuplicateTaskError if the
// name is already taken.
func (r *Registry) RegisterStrict(task *Task) error {
	if task == nil || task.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[task.Name]; exists {
		return builderrors.NewDuplicateTaskError(task.Name)
	}
	r.tasks[task.Name] = task
	return nil
}

// Resolve returns the named task or an UnknownTaskError.
func (r *Registry) Resolve(name string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[name]
	if !ok {
		return nil, builderrors.NewUnknownTaskError(name)
	}
	return task, nil
}

// Names returns all registered task names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
