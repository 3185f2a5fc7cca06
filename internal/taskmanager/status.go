package taskmanager

import "time"

// TaskStatus represents the execution status of a task within a run
type TaskStatus int

const (
	// StatusPending indicates the task is waiting to be executed
	StatusPending TaskStatus = iota
	// StatusRunning indicates the task action is executing
	StatusRunning
	// StatusCompleted indicates the task has completed successfully
	StatusCompleted
	// StatusFailed indicates the task action returned an error
	StatusFailed
	// StatusCancelled indicates the task never started because the run failed
	StatusCancelled
)

// String returns a string representation of the TaskStatus
func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TaskResult contains the result of a single task within a run
type TaskResult struct {
	Name      string
	Status    TaskStatus
	Error     error
	StartTime *time.Time
	EndTime   *time.Time
	Duration  time.Duration
}

// RunResult contains the results of a sequencer run
type RunResult struct {
	// Target is the task the run was started for
	Target string

	// Success indicates if every task touched by the run completed
	Success bool

	// Tasks maps task names to their results
	Tasks map[string]*TaskResult

	// Completed lists tasks in the order they finished successfully
	Completed []string

	ExecutionTime time.Duration

	// Error is the first error encountered during the run
	Error error
}

// Counts returns the number of completed, failed and cancelled tasks.
func (r *RunResult) Counts() (completed, failed, cancelled int) {
	for _, t := range r.Tasks {
		switch t.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		case StatusCancelled:
			cancelled++
		}
	}
	return completed, failed, cancelled
}
