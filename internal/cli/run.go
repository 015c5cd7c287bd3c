package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/verba"
	"github.com/roach88/verba/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Grammar  string
	Database string
	DryRun   bool
}

// RunResult holds the run command's JSON payload.
type RunResult struct {
	Mode        string             `json:"mode"`
	Invocations []verba.Invocation `json:"invocations"`
	Tasks       []verba.Task       `json:"tasks"`
	RunToken    string             `json:"run_token,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program-file>",
		Short: "Run a program against the task vocabulary",
		Long: `Parse and execute a DSL program against the built-in task board
vocabulary (create_task, complete_task, list_tasks). Use "-" to read
the program from stdin.

With --db the run is recorded to a SQLite trace database; inspect it
later with 'verba trace'. With --dry-run, handlers run but no action is
applied, so the board stays empty.

Examples:
  verba run program.vb
  verba run program.vb --db ./verba.db
  echo 'create_task("demo")' | verba run - --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grammar, "grammar", "", "grammar document (.yaml, .toml, or .cue); default grammar if omitted")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to this SQLite trace database")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "collect actions without applying them")

	return cmd
}

func runRun(opts *RunOptions, programPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := loadSpec(opts.Grammar)
	if err != nil {
		return err
	}
	source, err := loadSource(programPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	board := verba.NewTaskBoard()
	grammarOpts := []verba.Option{
		verba.WithSpec(spec),
		verba.WithVerbs(board.Verbs()...),
		verba.WithApplier(board.Apply),
	}

	var capture *tokenCapturingRecorder
	if opts.Database != "" {
		st, err := trace.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot open trace database", err)
		}
		defer st.Close()
		capture = &tokenCapturingRecorder{rec: trace.NewRecorder(st)}
		grammarOpts = append(grammarOpts, verba.WithRecorder(capture))
	}

	g, err := verba.New(grammarOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "grammar does not compile", err)
	}

	mode := "execute"
	runFn := g.Execute
	if opts.DryRun {
		mode = "collect"
		runFn = g.Collect
	}
	formatter.VerboseLog("Running %q in %s mode", programPath, mode)

	invs, err := runFn(cmd.Context(), source)
	if err != nil {
		_ = formatter.Error("RUN", err.Error(), nil)
		return WrapExitError(ExitFailure, "run failed", err)
	}

	result := RunResult{Mode: mode, Invocations: invs, Tasks: board.Tasks()}
	if capture != nil {
		result.RunToken = capture.token
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%d invocation(s) in %s mode\n", len(invs), mode)
	for _, inv := range invs {
		kind := "direct"
		if inv.Action != nil {
			kind = inv.Action.Kind
		}
		fmt.Fprintf(formatter.Writer, "  %s -> %s\n", inv.Verb, kind)
	}
	if len(result.Tasks) > 0 {
		fmt.Fprintln(formatter.Writer, "tasks:")
		for _, task := range result.Tasks {
			mark := " "
			if task.Done {
				mark = "x"
			}
			fmt.Fprintf(formatter.Writer, "  [%s] %s (%s)\n", mark, task.Name, task.Priority)
		}
	}
	if result.RunToken != "" {
		fmt.Fprintf(formatter.Writer, "recorded as %s\n", result.RunToken)
	}
	return nil
}

// tokenCapturingRecorder forwards to a trace.Recorder and keeps the
// generated token readable afterwards, so the CLI can report it.
type tokenCapturingRecorder struct {
	rec   *trace.Recorder
	token string
}

func (c *tokenCapturingRecorder) RecordRun(ctx context.Context, mode, source string, invs []verba.Invocation) (string, error) {
	token, err := c.rec.RecordRun(ctx, mode, source, invs)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}
