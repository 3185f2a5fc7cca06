package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/sitebuild/internal/config"
	"github.com/maxkimambo/sitebuild/internal/orchestrator"
)

func newOrchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, error) {
	cfg, err := config.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(cfg, orchestrator.Options{
		Out:         cmd.OutOrStdout(),
		Concurrency: concurrency,
	})
}

// targetArg returns the first argument or the default task.
func targetArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return orchestrator.TaskDefault
}
