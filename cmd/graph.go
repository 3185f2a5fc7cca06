package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph [task]",
	Short: "Show the expanded execution plan of a task",
	Long: `Show the expanded execution plan of a task.

The text format prints the dependency tree with parallel groups marked.
The json and dot formats are meant for tooling; pipe dot output into
Graphviz to render it.`,
	Example: `  sitebuild graph archive
  sitebuild graph build --format dot | dot -Tsvg > build.svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator(cmd)
		if err != nil {
			return err
		}
		out, err := o.Visualize(targetArg(args), graphFormat)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "text", "Output format: text, json or dot")
}
