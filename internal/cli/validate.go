package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/chartfile"
)

// ValidationResult is the JSON payload of a successful validate.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Chart   string   `json:"chart"`
	States  int      `json:"states"`
	Exports []string `json:"exports,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <chart>",
		Short: "Check a chart document without running it",
		Long: `Load a YAML (.yaml, .yml) or CUE (.cue) chart document and check its
structure: known attributes, unique ids, resolvable targets, history and
sub-chart rules. Only built-in actions and conditions can be resolved.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	spec, err := chartfile.LoadFile(path, nil)
	if err != nil {
		return report(f, err)
	}
	tree, err := statechart.Compile(spec)
	if err != nil {
		return report(f, err)
	}

	result := ValidationResult{
		Valid:   true,
		Chart:   tree.RootID(),
		States:  len(tree.IDs()),
		Exports: tree.Exports(),
	}
	return f.Success(result, fmt.Sprintf("✓ chart %s is valid (%d states)", result.Chart, result.States))
}
