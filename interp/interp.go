// Package interp resolves parsed call chains against a verb registry and
// runs the bound handlers. It knows nothing about grammar notation or
// parsing; it consumes the ast types a backend produces.
package interp

import (
	"context"

	"github.com/roach88/verba/ast"
)

// Args holds a verb invocation's fully bound arguments, keyed by
// parameter name. Every declared parameter is present after binding,
// defaults included.
type Args map[string]ast.Value

// Param declares one verb parameter. Parameters without defaults are
// required; parameters with defaults must follow all required ones.
type Param struct {
	Name       string
	Default    ast.Value
	HasDefault bool
}

// Required reports whether the parameter must be bound by the caller.
func (p Param) Required() bool {
	return !p.HasDefault
}

// Action is a deferred effect described by a handler. Handlers that
// perform their effect directly return a nil Action instead.
type Action struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

// HandlerFunc executes one verb invocation. A non-nil Action describes
// the effect for the executor to apply or collect; returning (nil, nil)
// means the handler already performed its effect.
type HandlerFunc func(ctx context.Context, args Args) (*Action, error)

// Verb couples a name and parameter list with the handler that runs it.
type Verb struct {
	Name        string
	Description string
	Params      []Param
	Handler     HandlerFunc
}

// Registry resolves verb names. Implementations must be safe for
// concurrent lookups.
type Registry interface {
	Lookup(name string) (*Verb, bool)
	// Verbs returns all registered verbs in registration order.
	Verbs() []*Verb
}

// Invocation is one executed (or collected) verb call: the verb name,
// its fully bound arguments, and the action the handler produced, if
// any.
type Invocation struct {
	Verb   string  `json:"verb"`
	Args   Args    `json:"args"`
	Action *Action `json:"action,omitempty"`
}
