// Package cli implements the codelet command: the daemon plus one-shot
// context, prompt, complete and config commands for testing completions
// from a terminal.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paranoid-AF/codelet/generate"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// newEngine builds the engine used by the one-shot commands.
var newEngine = generate.NewEngine

// NewRootCommand returns the codelet command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "codelet",
		Short:         "Context-aware inline code completion",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log every request and response to stderr")

	root.AddCommand(
		newServeCommand(),
		newContextCommand(),
		newPromptCommand(),
		newCompleteCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		slog.Error(err.Error())
		return 1
	}
	return 0
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "codelet", Version)
		},
	}
}
