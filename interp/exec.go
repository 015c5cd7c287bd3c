package interp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/verba/ast"
)

// Applier receives each non-nil action produced during Execute and
// applies its effect.
type Applier func(ctx context.Context, inv Invocation) error

// Executor runs bound verb calls in program order: chains in statement
// order, calls left to right within each chain. Each chain is resolved
// in full before any of its handlers run. The first error stops the
// run.
type Executor struct {
	registry Registry
	applier  Applier
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithApplier sets the function that applies actions during Execute.
// Without an applier, actions are returned but not applied.
func WithApplier(fn Applier) ExecutorOption {
	return func(e *Executor) { e.applier = fn }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an Executor over the given registry.
func NewExecutor(reg Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every call in the chains. Handlers run immediately and
// each non-nil action is passed to the applier as soon as the handler
// returns, so later calls observe the effects of earlier ones.
func (e *Executor) Execute(ctx context.Context, chains []ast.CallChain) ([]Invocation, error) {
	return e.run(ctx, chains, true)
}

// Collect runs every call in the chains but never applies actions: the
// produced invocations are returned for inspection. Handlers that
// perform effects directly still perform them.
func (e *Executor) Collect(ctx context.Context, chains []ast.CallChain) ([]Invocation, error) {
	return e.run(ctx, chains, false)
}

func (e *Executor) run(ctx context.Context, chains []ast.CallChain, apply bool) ([]Invocation, error) {
	var invocations []Invocation

	for _, chain := range chains {
		// Resolve the whole chain before any of its handlers run, so an
		// unknown verb or binding error partway through a chain surfaces
		// with no handler side effects.
		bounds := make([]*BoundCall, 0, len(chain.Calls))
		for _, call := range chain.Calls {
			bound, err := Bind(e.registry, call)
			if err != nil {
				return invocations, err
			}
			bounds = append(bounds, bound)
		}

		for _, bound := range bounds {
			if err := ctx.Err(); err != nil {
				return invocations, err
			}

			e.logger.Debug("invoking verb",
				slog.String("verb", bound.Verb.Name),
				slog.Int("args", len(bound.Args)),
				slog.Bool("apply", apply))

			action, err := bound.Verb.Handler(ctx, bound.Args)
			if err != nil {
				return invocations, fmt.Errorf("verb %s: %w", bound.Verb.Name, err)
			}

			inv := Invocation{Verb: bound.Verb.Name, Args: bound.Args, Action: action}
			invocations = append(invocations, inv)

			if apply && action != nil && e.applier != nil {
				if err := e.applier(ctx, inv); err != nil {
					return invocations, fmt.Errorf("applying %s action from verb %s: %w", action.Kind, bound.Verb.Name, err)
				}
			}
		}
	}

	return invocations, nil
}
