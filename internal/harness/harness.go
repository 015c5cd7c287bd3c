package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/verba"
	"github.com/roach88/verba/internal/trace"
)

// Harness runs scenarios against a fresh engine per scenario: a new
// task board, a new in-memory trace store, and a fixed run token
// derived from the scenario name.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the structured logger passed into the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Result is the outcome of one scenario run.
type Result struct {
	Scenario string
	Mode     string

	// Pass is true when every expectation held. Errors lists each
	// expectation that failed.
	Pass   bool
	Errors []string

	// RunErr is the run error as text, empty on success.
	RunErr string

	Invocations []verba.Invocation
	Tasks       []verba.Task

	// RunToken and Trace are populated when the run succeeded and was
	// recorded.
	RunToken string
	Trace    []trace.InvocationRecord
}

func (r *Result) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Run executes one scenario. A returned error means the harness itself
// could not run the scenario (bad grammar, store failure); expectation
// failures land in Result.Errors instead.
func (h *Harness) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	res := &Result{Scenario: sc.Name, Mode: sc.mode()}

	store, err := trace.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: open trace store: %w", sc.Name, err)
	}
	defer store.Close()

	token := "run-" + sc.Name
	recorder := trace.NewRecorder(store,
		trace.WithTokenGenerator(trace.NewFixedGenerator(token)))

	board := verba.NewTaskBoard()
	opts := []verba.Option{
		verba.WithVerbs(board.Verbs()...),
		verba.WithApplier(board.Apply),
		verba.WithRecorder(recorder),
		verba.WithLogger(h.logger),
	}
	if sc.Grammar != "" {
		opts = append(opts, verba.WithGrammarText(sc.Grammar))
	}

	g, err := verba.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: build grammar: %w", sc.Name, err)
	}

	run := g.Execute
	if res.Mode == "collect" {
		run = g.Collect
	}

	invs, runErr := run(ctx, sc.Program)
	res.Invocations = invs
	res.Tasks = board.Tasks()
	if runErr != nil {
		res.RunErr = runErr.Error()
	} else {
		res.RunToken = token
		_, recorded, err := store.ReadRun(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: read trace: %w", sc.Name, err)
		}
		res.Trace = recorded
	}

	h.assess(sc, res)
	res.Pass = len(res.Errors) == 0
	return res, nil
}

// assess checks every expectation and records failures on the result.
func (h *Harness) assess(sc *Scenario, res *Result) {
	if sc.Expect.Error != "" {
		if res.RunErr == "" {
			res.fail("expected error containing %q, run succeeded", sc.Expect.Error)
		} else if !strings.Contains(res.RunErr, sc.Expect.Error) {
			res.fail("expected error containing %q, got %q", sc.Expect.Error, res.RunErr)
		}
	} else if res.RunErr != "" {
		res.fail("unexpected run error: %s", res.RunErr)
	}

	if len(sc.Expect.Invocations) > 0 {
		if len(res.Invocations) != len(sc.Expect.Invocations) {
			res.fail("expected %d invocations, got %d",
				len(sc.Expect.Invocations), len(res.Invocations))
		} else {
			for i, want := range sc.Expect.Invocations {
				got := res.Invocations[i]
				if got.Verb != want.Verb {
					res.fail("invocation %d: expected verb %s, got %s", i, want.Verb, got.Verb)
				}
				kind := ""
				if got.Action != nil {
					kind = got.Action.Kind
				}
				if kind != want.Action {
					res.fail("invocation %d: expected action %q, got %q", i, want.Action, kind)
				}
			}
		}
	}

	if sc.Expect.Tasks != nil {
		if len(res.Tasks) != len(sc.Expect.Tasks) {
			res.fail("expected %d tasks, got %d", len(sc.Expect.Tasks), len(res.Tasks))
			return
		}
		for i, want := range sc.Expect.Tasks {
			got := res.Tasks[i]
			if got.Name != want.Name || got.Priority != want.Priority || got.Done != want.Done {
				res.fail("task %d: expected %s/%s done=%t, got %s/%s done=%t",
					i, want.Name, want.Priority, want.Done,
					got.Name, got.Priority, got.Done)
			}
		}
	}
}
