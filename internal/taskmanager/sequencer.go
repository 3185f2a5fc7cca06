package taskmanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

// Sequencer resolves a target's dependency sequence and runs it.
type Sequencer struct {
	registry *Registry
}

// NewSequencer creates a sequencer over the given registry.
func NewSequencer(registry *Registry) *Sequencer {
	return &Sequencer{registry: registry}
}

// Validate checks that every task reachable from target is registered and
// that the dependency graph is acyclic. It returns the tasks in dependency order.
func (s *Sequencer) Validate(target string) ([]string, error) {
	dag, err := buildDAG(s.registry, target)
	if err != nil {
		return nil, err
	}
	order, err := dag.TopologicalSort()
	if err != nil {
		return nil, builderrors.NewGraphCycleError(target, err)
	}
	return order, nil
}

// Run executes target after its dependencies. Entries of a dependency
// Sequence run one after another. Members of a Parallel step run concurrently
// and all finish before the next entry starts. Each task runs at most once per
// call. The first failure stops new tasks from launching and is returned.
func (s *Sequencer) Run(ctx context.Context, target string) (*RunResult, error) {
	start := time.Now()

	r := &run{
		ctx:      ctx,
		registry: s.registry,
		futures:  make(map[string]*Future),
		results:  make(map[string]*TaskResult),
	}

	if _, err := s.Validate(target); err != nil {
		return r.buildResult(target, start, err), err
	}

	logger.Op.WithFields(map[string]interface{}{
		"target": target,
	}).Debug("Starting sequencer run")

	if err := ctx.Err(); err != nil {
		return r.buildResult(target, start, err), err
	}
	err := r.runTask(target)
	return r.buildResult(target, start, err), err
}

type run struct {
	ctx      context.Context
	registry *Registry

	mu        sync.Mutex
	futures   map[string]*Future
	results   map[string]*TaskResult
	completed []string
	failure   error
}

// claim returns the future for name and whether the caller owns execution.
func (r *run) claim(name string) (*Future, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.futures[name]; ok {
		return f, false
	}
	f := newFuture()
	r.futures[name] = f
	r.results[name] = &TaskResult{Name: name, Status: StatusPending}
	return f, true
}

// aborted returns the error that stops new launches, if any.
func (r *run) aborted() error {
	r.mu.Lock()
	failure := r.failure
	r.mu.Unlock()

	if failure != nil {
		return failure
	}
	return r.ctx.Err()
}

func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure == nil {
		r.failure = err
	}
}

func (r *run) runTask(name string) error {
	f, owner := r.claim(name)
	if !owner {
		return f.Wait()
	}
	err := r.execTask(name)
	f.resolve(err)
	return err
}

func (r *run) execTask(name string) error {
	task, err := r.registry.Resolve(name)
	if err != nil {
		r.fail(err)
		r.setCancelled(name, err)
		return err
	}

	if len(task.DependsOn) > 0 {
		if err := r.runSequence(task.DependsOn); err != nil {
			r.setCancelled(name, err)
			return err
		}
		// A failure elsewhere while the dependencies ran stops this launch.
		if err := r.aborted(); err != nil {
			r.setCancelled(name, err)
			return err
		}
	}

	r.setStarted(name)
	if task.Action != nil {
		logger.Op.WithFields(map[string]interface{}{"task": name}).Debug("Task started")
		err = Go(r.ctx, task.Action).Wait()
	}
	r.setFinished(name, err)

	if err != nil {
		err = fmt.Errorf("task %s failed: %w", name, err)
		r.fail(err)
		logger.User.Errorf("Task failed: %s", name)
		return err
	}

	if task.Action != nil {
		logger.Op.WithFields(map[string]interface{}{
			"task":     name,
			"duration": r.duration(name).Round(time.Millisecond),
		}).Info("Task completed")
	}
	return nil
}

func (r *run) runSequence(seq Sequence) error {
	for _, step := range seq {
		if err := r.aborted(); err != nil {
			return err
		}
		if err := r.runStep(step); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) runStep(step Step) error {
	switch step.Kind {
	case StepSingle:
		return r.runTask(step.Task)
	case StepParallel:
		// Every member of an entered group is launched and runs to the end,
		// even after a sibling fails.
		if err := r.aborted(); err != nil {
			return err
		}
		var g errgroup.Group
		for _, sub := range step.Steps {
			sub := sub
			g.Go(func() error {
				return r.runStep(sub)
			})
		}
		return g.Wait()
	default:
		return fmt.Errorf("unknown step kind %d", step.Kind)
	}
}

func (r *run) setStarted(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	res := r.results[name]
	res.Status = StatusRunning
	res.StartTime = &now
}

func (r *run) setFinished(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	res := r.results[name]
	res.EndTime = &now
	if res.StartTime != nil {
		res.Duration = now.Sub(*res.StartTime)
	}
	if err != nil {
		res.Status = StatusFailed
		res.Error = err
		return
	}
	res.Status = StatusCompleted
	r.completed = append(r.completed, name)
}

func (r *run) setCancelled(name string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.results[name]; ok && res.Status == StatusPending {
		res.Status = StatusCancelled
		res.Error = cause
	}
}

func (r *run) duration(name string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[name].Duration
}

func (r *run) buildResult(target string, start time.Time, err error) *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &RunResult{
		Target:        target,
		Success:       err == nil,
		Tasks:         make(map[string]*TaskResult, len(r.results)),
		Completed:     append([]string(nil), r.completed...),
		ExecutionTime: time.Since(start),
		Error:         err,
	}
	for name, res := range r.results {
		resCopy := *res
		result.Tasks[name] = &resCopy
	}
	return result
}
