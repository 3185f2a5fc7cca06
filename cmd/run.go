package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/sitebuild/internal/orchestrator"
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a build task and its dependencies",
	Long: `Run a build task and its dependencies.

Main tasks:
  clean     Remove the archive and destination directories
  build     Clean and lint in parallel, then run every copy step
  default   Alias of build
  archive   Build, then pack the destination tree into the archive

Any registered task may be run on its own, e.g. "lint:js" or "copy:misc".
Use "sitebuild tasks" to list them.`,
	Example: `  sitebuild run
  sitebuild run archive --manifest sitebuild.hcl
  sitebuild run copy:images --concurrency 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTarget,
}

func runTarget(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator(cmd)
	if err != nil {
		return err
	}

	result, err := o.ExecuteTarget(cmd.Context(), targetArg(args))
	if !quiet && result != nil && len(result.Tasks) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), orchestrator.Summary(result))
	}
	return err
}
