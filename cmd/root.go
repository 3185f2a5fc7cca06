package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

var (
	manifestPath string
	debug        bool
	verbose      bool
	jsonLogs     bool
	quiet        bool
	concurrency  int
	version      = "v0.1.0"

	rootCmd = &cobra.Command{
		Use:   "sitebuild",
		Short: "Build and package a static site",
		Long: `Build and package a static site.

sitebuild lints the page scripts, copies and transforms the source tree into
the destination tree and packs the result into a single archive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(verbose || debug, jsonLogs, quiet)
			if concurrency < 0 || concurrency > 64 {
				return builderrors.NewConfigurationError("concurrency",
					fmt.Sprintf("--concurrency must be between 0 and 64, got %d", concurrency), nil)
			}
			return nil
		},
	}
)

// Execute runs the root command and renders any failure for the terminal.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a caller supplied context.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), builderrors.FormatForCLI(err))
	}
	return err
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "package.json", "Project manifest (package.json, .jsonx or .hcl)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "Files processed at once per step (0 uses the manifest value)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(graphCmd)
}
