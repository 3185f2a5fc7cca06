package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
	tm "github.com/maxkimambo/sitebuild/internal/taskmanager"
	"github.com/maxkimambo/sitebuild/internal/utils"
)

// ExecuteTarget runs target and its dependencies. This is the entry point
// for CLI commands. The run result is returned even when the run fails.
func (o *Orchestrator) ExecuteTarget(ctx context.Context, target string) (*tm.RunResult, error) {
	logger.User.Startingf("Running %s for %s", target, o.config.Name)

	result, err := o.sequencer.Run(ctx, target)
	if err != nil {
		if result != nil && len(result.Tasks) > 0 {
			o.logFailures(result)
		}
		return result, err
	}

	completed, _, _ := result.Counts()
	logger.User.Successf("%s finished: %d task(s) in %v", target, completed, result.ExecutionTime.Round(time.Millisecond))
	return result, nil
}

func (o *Orchestrator) logFailures(result *tm.RunResult) {
	completed, failed, cancelled := result.Counts()
	logger.User.Errorf("%s failed: %d succeeded, %d failed, %d not started", result.Target, completed, failed, cancelled)
	for _, name := range sortedTasks(result) {
		tr := result.Tasks[name]
		if tr.Status == tm.StatusFailed && tr.Error != nil {
			logger.Op.WithFields(map[string]interface{}{
				"task":  name,
				"error": builderrors.DisplayErrorSummary(tr.Error),
			}).Error("Task failed")
		}
	}
}

// Summary renders a boxed report of a run for the terminal.
func Summary(result *tm.RunResult) string {
	if result == nil {
		return ""
	}
	completed, failed, cancelled := result.Counts()

	kind := utils.SuccessMessage
	title := fmt.Sprintf("%s completed in %v", result.Target, result.ExecutionTime.Round(time.Millisecond))
	if !result.Success {
		kind = utils.ErrorMessage
		title = fmt.Sprintf("%s failed after %v", result.Target, result.ExecutionTime.Round(time.Millisecond))
	}

	box := utils.NewBox(kind, title).
		AddKeyValue("Completed", fmt.Sprint(completed))
	if failed > 0 {
		box.AddKeyValue("Failed", fmt.Sprint(failed))
	}
	if cancelled > 0 {
		box.AddKeyValue("Not started", fmt.Sprint(cancelled))
	}
	for _, name := range sortedTasks(result) {
		tr := result.Tasks[name]
		if tr.Status == tm.StatusFailed && tr.Error != nil {
			box.AddBullet(fmt.Sprintf("%s: %s", name, builderrors.DisplayErrorSummary(tr.Error)))
		}
	}
	return box.Render()
}

// TaskTable lists every registered task with its dependencies.
func (o *Orchestrator) TaskTable() string {
	table := utils.NewTableFormatter([]string{"Task", "Depends on", "Description"})
	for _, name := range o.registry.Names() {
		task, err := o.registry.Resolve(name)
		if err != nil {
			continue
		}
		deps := "-"
		if len(task.DependsOn) > 0 {
			deps = tm.DescribeSequence(task.DependsOn)
		}
		table.AddRow([]string{name, deps, task.Description})
	}
	return table.String()
}

func sortedTasks(result *tm.RunResult) []string {
	names := make([]string, 0, len(result.Tasks))
	for name := range result.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
