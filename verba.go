package verba

import (
	"context"
	"log/slog"

	"github.com/roach88/verba/ast"
	"github.com/roach88/verba/backend"
	"github.com/roach88/verba/grammar"
	"github.com/roach88/verba/interp"
)

// Re-exported interpreter types, so most callers only import this
// package.
type (
	Verb        = interp.Verb
	Param       = interp.Param
	Args        = interp.Args
	Action      = interp.Action
	HandlerFunc = interp.HandlerFunc
	Invocation  = interp.Invocation
	Applier     = interp.Applier
)

// Recorder persists completed runs. Implementations receive the source
// text and the invocations it produced, and return an opaque run token.
type Recorder interface {
	RecordRun(ctx context.Context, mode, source string, invs []interp.Invocation) (string, error)
}

// Grammar is the assembled engine: a compiled grammar, a verb registry,
// and an executor. Construct with New; a Grammar is immutable and safe
// for concurrent use afterwards.
type Grammar struct {
	spec     *grammar.Spec
	text     string // raw grammar text, when constructed from text
	backend  backend.Backend
	parser   *backend.Parser
	registry *Registry
	executor *interp.Executor
	recorder Recorder
	applier  interp.Applier
	logger   *slog.Logger
}

// Option configures a Grammar under construction.
type Option func(*Grammar) error

// WithSpec sets the grammar definition. Without WithSpec or
// WithGrammarText the default call-chain grammar is used.
func WithSpec(spec *grammar.Spec) Option {
	return func(g *Grammar) error {
		g.spec = spec
		return nil
	}
}

// WithGrammarText sets the grammar from raw grammar notation instead of
// a structured spec.
func WithGrammarText(text string) Option {
	return func(g *Grammar) error {
		g.text = text
		return nil
	}
}

// WithBackend overrides the grammar backend.
func WithBackend(b backend.Backend) Option {
	return func(g *Grammar) error {
		g.backend = b
		return nil
	}
}

// WithVerbs registers verbs. May be given multiple times; registration
// order is preserved.
func WithVerbs(verbs ...*Verb) Option {
	return func(g *Grammar) error {
		for _, v := range verbs {
			if err := g.registry.register(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithApplier sets the function that applies actions during Execute.
func WithApplier(fn Applier) Option {
	return func(g *Grammar) error {
		g.applier = fn
		return nil
	}
}

// WithRecorder sets the run recorder. Without one, runs are not
// persisted.
func WithRecorder(r Recorder) Option {
	return func(g *Grammar) error {
		g.recorder = r
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Grammar) error {
		g.logger = logger
		return nil
	}
}

// New assembles a Grammar. The grammar definition compiles immediately,
// so an invalid grammar or verb set fails here rather than at first
// use.
func New(opts ...Option) (*Grammar, error) {
	g := &Grammar{
		backend:  backend.NewLarkBackend(),
		registry: newRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	var err error
	switch {
	case g.text != "":
		g.parser, err = g.backend.CompileText(g.text)
	default:
		if g.spec == nil {
			g.spec = grammar.Default()
		}
		g.parser, err = g.backend.Compile(g.spec)
	}
	if err != nil {
		return nil, err
	}

	g.executor = interp.NewExecutor(g.registry,
		interp.WithApplier(g.applier),
		interp.WithLogger(g.logger))
	return g, nil
}

// Spec returns the structured grammar definition, or nil when the
// Grammar was built from raw text.
func (g *Grammar) Spec() *grammar.Spec {
	return g.spec
}

// Registry returns the verb registry.
func (g *Grammar) Registry() *Registry {
	return g.registry
}

// Parse parses source into call chains without executing anything.
func (g *Grammar) Parse(source string) ([]ast.CallChain, error) {
	chains, err := g.parser.Parse(source)
	if err != nil {
		return nil, &ExecutionError{Stage: StageParse, Err: err}
	}
	return chains, nil
}

// ParseTrees parses source and returns the raw parse trees.
func (g *Grammar) ParseTrees(source string) ([]*backend.Tree, error) {
	trees, err := g.parser.ParseTrees(source)
	if err != nil {
		return nil, &ExecutionError{Stage: StageParse, Err: err}
	}
	return trees, nil
}

// Execute parses source and runs it: handlers execute in program order
// and every produced action is applied immediately. The completed run is
// recorded when a recorder is configured.
func (g *Grammar) Execute(ctx context.Context, source string) ([]Invocation, error) {
	return g.run(ctx, source, true)
}

// Collect parses source and runs it without applying actions: a dry run
// that returns what Execute would have applied.
func (g *Grammar) Collect(ctx context.Context, source string) ([]Invocation, error) {
	return g.run(ctx, source, false)
}

func (g *Grammar) run(ctx context.Context, source string, apply bool) ([]Invocation, error) {
	chains, err := g.Parse(source)
	if err != nil {
		return nil, err
	}

	mode := "collect"
	runFn := g.executor.Collect
	if apply {
		mode = "execute"
		runFn = g.executor.Execute
	}

	invs, err := runFn(ctx, chains)
	if err != nil {
		return invs, &ExecutionError{Stage: StageExecute, Err: err}
	}

	if g.recorder != nil {
		token, err := g.recorder.RecordRun(ctx, mode, source, invs)
		if err != nil {
			return invs, &ExecutionError{Stage: StageRecord, Err: err}
		}
		g.logger.Debug("run recorded",
			slog.String("run", token),
			slog.String("mode", mode),
			slog.Int("invocations", len(invs)))
	}

	return invs, nil
}

// ExportGrammar returns the grammar in force as directive-free grammar
// text, suitable for constrained decoding.
func (g *Grammar) ExportGrammar() string {
	if g.text != "" {
		return g.backend.CleanForExternal(g.text)
	}
	return g.backend.CleanForExternal(g.backend.Render(g.spec))
}
