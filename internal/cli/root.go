// Package cli implements the statechart command line: validating chart
// documents and running them against a sequence of events.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Settings is loaded before any subcommand runs.
	Settings Settings
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the statechart CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "statechart",
		Short: "Validate and run statechart documents",
		Long: `Validate and run hierarchical statecharts described in YAML or CUE.

Settings are read from the environment, after loading a .env file if present:
  STATECHART_LOG_LEVEL       debug|info|warn|error (default info)
  STATECHART_LOG_FORMAT      text|json (default text)
  STATECHART_MAX_MICROSTEPS  microsteps allowed per event (default 10000)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			settings, err := LoadSettings()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid settings", err)
			}
			opts.Settings = settings
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output, debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}
