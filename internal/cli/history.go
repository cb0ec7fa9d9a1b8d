package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ocm/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	ID       string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the invocation log",
		Long: `List recorded invocations, newest first, or show one record in full
with --id.

Example:
  ocm history --db ./ocm.db --limit 20
  ocm history --db ./ocm.db --id 0190c2f4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history log (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum records to list (0 means all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single record by id")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := history.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history log", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if opts.ID != "" {
		rec, err := st.Get(ctx, opts.ID)
		if errors.Is(err, history.ErrNotFound) {
			return NewExitError(ExitFailure, "record "+opts.ID+" not found")
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "reading history log", err)
		}
		if out.IsJSON() {
			return out.JSON(rec)
		}
		out.Textf("id:       %s", rec.ID)
		out.Textf("schema:   %s", rec.Schema)
		out.Textf("rendered: %s", rec.Rendered)
		out.Textf("exit:     %d", rec.ExitCode)
		out.Textf("at:       %s", rec.CreatedAt.Format(time.RFC3339))
		if rec.Stdout != "" {
			out.Textf("stdout:\n%s", rec.Stdout)
		}
		if rec.Stderr != "" {
			out.Textf("stderr:\n%s", rec.Stderr)
		}
		return nil
	}

	records, err := st.List(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading history log", err)
	}

	if out.IsJSON() {
		return out.JSON(map[string]any{"records": records})
	}
	for _, rec := range records {
		out.Textf("%s  %s  exit=%d  %s",
			rec.CreatedAt.Format(time.RFC3339), rec.ID, rec.ExitCode, rec.Rendered)
	}
	return nil
}
