package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/ocm"
	"github.com/roach88/ocm/history"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Args     string
	Name     string
	Dir      string
	Database string
}

// runRunner creates the child process; tests substitute it.
var runRunner = ocm.DefaultRunner

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <definition>",
		Short: "Run a command definition",
		Long: `Run a command definition: bind keyword values, render the argv and
execute it as a child process. Captured stdout lines are logged as they
arrive; intermediate results (OCMIR lines) are extracted afterwards.

With --db, the invocation is appended to a SQLite history log.

Example:
  ocm run ls.yaml --args '{"long":true,"path":"/tmp"}'
  ocm run deploy.cue --name rollout --db ./ocm.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefinition(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "keyword values as JSON")
	cmd.Flags().StringVar(&opts.Name, "name", "", "command name inside the definition file")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "child process working directory")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history log")

	return cmd
}

func runDefinition(opts *RunOptions, path string, cmd *cobra.Command) error {
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

	invokeOpts := []ocm.InvokeOpt{ocm.WithDir(opts.Dir), ocm.WithRunner(runRunner)}
	if opts.Database != "" {
		slog.Info("opening history log", "path", opts.Database)
		st, err := history.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening history log", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing history log", "error", closeErr)
			}
		}()
		invokeOpts = append(invokeOpts, ocm.WithRecorder(st))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := command.Invoke(ctx, invokeOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "invocation failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if out.IsJSON() {
		irs := map[string]any{}
		for _, name := range result.Names() {
			v, err := result.Get(name)
			if err != nil {
				return WrapExitError(ExitFailure, "reading intermediate result", err)
			}
			irs[name] = v
		}
		return out.JSON(map[string]any{
			"rendered":             command.String(),
			"stdout":               result.Stdout,
			"stderr":               result.Stderr,
			"intermediate_results": irs,
		})
	}

	out.Textf("ok: %s", command.String())
	for _, name := range result.Names() {
		v, err := result.Get(name)
		if err != nil {
			return WrapExitError(ExitFailure, "reading intermediate result", err)
		}
		out.Textf("%s = %v", name, v)
	}
	return nil
}
