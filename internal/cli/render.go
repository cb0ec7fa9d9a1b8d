package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Args string
	Name string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <definition>",
		Short: "Render a command definition into its argv",
		Long: `Render a command definition into its argv without executing it.

Keyword values are supplied as a JSON object and validated against the
schema exactly as an invocation would.

Example:
  ocm render ls.yaml --args '{"long":true,"path":"/tmp"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderDefinition(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "keyword values as JSON")
	cmd.Flags().StringVar(&opts.Name, "name", "", "command name inside the definition file")

	return cmd
}

func renderDefinition(opts *RenderOptions, path string, cmd *cobra.Command) error {
	schema, err := loadSchema(path, opts.Name)
	if err != nil {
		return err
	}

	vals, err := parseArgs(opts.Args)
	if err != nil {
		return err
	}

	command, err := schema.New(vals)
	if err != nil {
		return WrapExitError(ExitCommandError, "binding values", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if out.IsJSON() {
		return out.JSON(map[string]any{
			"schema":   schema.Name(),
			"argv":     command.Render(),
			"rendered": command.String(),
			"hash":     command.Hash(),
		})
	}
	out.Textf("%s", strings.Join(command.Render(), " "))
	return nil
}
