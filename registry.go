package verba

import (
	"fmt"

	"github.com/roach88/verba/grammar"
	"github.com/roach88/verba/interp"
)

// Registry is the concrete verb registry used by Grammar. Verbs are
// validated as they register; the registry is immutable once the
// Grammar is constructed.
type Registry struct {
	verbs map[string]*interp.Verb
	order []string
}

func newRegistry() *Registry {
	return &Registry{verbs: map[string]*interp.Verb{}}
}

// register validates and adds one verb.
func (r *Registry) register(v *interp.Verb) error {
	if v == nil || v.Name == "" {
		return &grammar.DefinitionError{
			Field:   "verbs",
			Message: "verb name is required",
			Code:    grammar.ErrEmptyVerbName,
		}
	}
	if v.Handler == nil {
		return &grammar.DefinitionError{
			Field:   "verbs." + v.Name,
			Message: "verb handler is required",
			Code:    grammar.ErrNilHandler,
		}
	}
	if _, dup := r.verbs[v.Name]; dup {
		return &grammar.DefinitionError{
			Field:   "verbs." + v.Name,
			Message: fmt.Sprintf("verb %q is already registered", v.Name),
			Code:    grammar.ErrDuplicateVerb,
		}
	}

	seen := map[string]bool{}
	sawDefault := false
	for _, p := range v.Params {
		if seen[p.Name] {
			return &grammar.DefinitionError{
				Field:   fmt.Sprintf("verbs.%s.%s", v.Name, p.Name),
				Message: "parameter declared twice",
				Code:    grammar.ErrDuplicateParam,
			}
		}
		seen[p.Name] = true

		if p.HasDefault {
			sawDefault = true
		} else if sawDefault {
			return &grammar.DefinitionError{
				Field:   fmt.Sprintf("verbs.%s.%s", v.Name, p.Name),
				Message: "required parameter follows a defaulted one",
				Code:    grammar.ErrBadParamOrder,
			}
		}
	}

	r.verbs[v.Name] = v
	r.order = append(r.order, v.Name)
	return nil
}

// Lookup implements interp.Registry.
func (r *Registry) Lookup(name string) (*interp.Verb, bool) {
	v, ok := r.verbs[name]
	return v, ok
}

// Verbs implements interp.Registry, returning verbs in registration
// order.
func (r *Registry) Verbs() []*interp.Verb {
	out := make([]*interp.Verb, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.verbs[name])
	}
	return out
}
