package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ocm"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Name string
}

// checkRunner resolves executables; tests substitute it.
var checkRunner = ocm.DefaultRunner

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <definition>",
		Short: "Check whether a definition's executable is available",
		Long: `Check whether the executable named by a definition resolves on the
current search path. Exits non-zero when it does not.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkDefinition(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "command name inside the definition file")

	return cmd
}

func checkDefinition(opts *CheckOptions, path string, cmd *cobra.Command) error {
	schema, err := loadSchema(path, opts.Name)
	if err != nil {
		return err
	}

	available := checkRunner.LookPath(schema.Exe()) == nil

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if out.IsJSON() {
		if err := out.JSON(map[string]any{"exe": schema.Exe(), "available": available}); err != nil {
			return err
		}
	} else if available {
		out.Textf("%s: available", schema.Exe())
	} else {
		out.Textf("%s: not found", schema.Exe())
	}

	if !available {
		return NewExitError(ExitFailure, schema.Exe()+" not found on search path")
	}
	return nil
}
