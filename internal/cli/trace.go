package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/verba/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// TraceListResult holds the run listing payload.
type TraceListResult struct {
	Runs []trace.Run `json:"runs"`
}

// TraceRunResult holds one run with its invocations.
type TraceRunResult struct {
	Run         trace.Run                `json:"run"`
	Invocations []trace.InvocationRecord `json:"invocations"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-token]",
		Short: "Inspect recorded runs",
		Long: `List recorded runs, or show one run's invocations in sequence order.

Examples:
  verba trace --db ./verba.db
  verba trace --db ./verba.db --limit 10
  verba trace --db ./verba.db 01891c2e-91a3-7def-8001-73d1c40a52f8`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := trace.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open trace database", err)
	}
	defer st.Close()

	if len(args) == 1 {
		return showRun(opts, formatter, st, args[0], cmd)
	}
	return listRuns(opts, formatter, st, cmd)
}

func listRuns(opts *TraceOptions, formatter *OutputFormatter, st *trace.Store, cmd *cobra.Command) error {
	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot list runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(TraceListResult{Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no recorded runs")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "%s  %s  %-7s  %s\n", run.Token, run.CreatedAt, run.Mode, firstLine(run.Source))
	}
	return nil
}

func showRun(opts *TraceOptions, formatter *OutputFormatter, st *trace.Store, token string, cmd *cobra.Command) error {
	run, invs, err := st.ReadRun(cmd.Context(), token)
	if errors.Is(err, trace.ErrRunNotFound) {
		_ = formatter.Error("TRACE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot read run", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(TraceRunResult{Run: run, Invocations: invs})
	}

	fmt.Fprintf(formatter.Writer, "run %s (%s, %s)\n", run.Token, run.Mode, run.CreatedAt)
	fmt.Fprintf(formatter.Writer, "source:\n%s\n", indent(run.Source))
	fmt.Fprintln(formatter.Writer, "invocations:")
	for _, inv := range invs {
		fmt.Fprintf(formatter.Writer, "  %3d  %s %s", inv.Seq, inv.Verb, inv.Args)
		if inv.ActionKind != "" {
			fmt.Fprintf(formatter.Writer, " -> %s %s", inv.ActionKind, inv.ActionPayload)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}
