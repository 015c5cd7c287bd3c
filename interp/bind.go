package interp

import (
	"fmt"

	"github.com/roach88/verba/ast"
)

// BoundCall is a call resolved against the registry: the verb it names
// and its complete argument set.
type BoundCall struct {
	Verb *Verb
	Args Args
}

// Bind resolves one parsed call against the registry and binds its
// arguments to the verb's parameters.
//
// Keyword arguments bind by name. Positional arguments bind left to
// right, each taking the first parameter not yet bound. After all
// arguments are placed, unbound parameters take their defaults; a
// required parameter left unbound is an error, as is binding the same
// parameter twice or passing a keyword the verb does not declare.
func Bind(reg Registry, call ast.Call) (*BoundCall, error) {
	verb, ok := reg.Lookup(call.Name)
	if !ok {
		return nil, &UnknownVerbError{Verb: call.Name}
	}

	bound := make(Args, len(verb.Params))
	paramIndex := make(map[string]int, len(verb.Params))
	for i, p := range verb.Params {
		paramIndex[p.Name] = i
	}

	cursor := 0
	for _, arg := range call.Args {
		if arg.Keyword != "" {
			if _, ok := paramIndex[arg.Keyword]; !ok {
				return nil, &ArgumentError{
					Verb:    verb.Name,
					Param:   arg.Keyword,
					Message: "no such parameter",
					Code:    ErrUnknownKeyword,
				}
			}
			if _, dup := bound[arg.Keyword]; dup {
				return nil, &ArgumentError{
					Verb:    verb.Name,
					Param:   arg.Keyword,
					Message: "bound more than once",
					Code:    ErrDuplicateBind,
				}
			}
			bound[arg.Keyword] = arg.Value
			continue
		}

		// Positional: advance to the first unbound parameter.
		for cursor < len(verb.Params) {
			if _, taken := bound[verb.Params[cursor].Name]; !taken {
				break
			}
			cursor++
		}
		if cursor == len(verb.Params) {
			return nil, &ArgumentError{
				Verb:    verb.Name,
				Message: fmt.Sprintf("takes at most %d arguments", len(verb.Params)),
				Code:    ErrTooManyArgs,
			}
		}
		bound[verb.Params[cursor].Name] = arg.Value
		cursor++
	}

	for _, p := range verb.Params {
		if _, ok := bound[p.Name]; ok {
			continue
		}
		if p.Required() {
			return nil, &ArgumentError{
				Verb:    verb.Name,
				Param:   p.Name,
				Message: "required argument missing",
				Code:    ErrMissingRequired,
			}
		}
		bound[p.Name] = p.Default
	}

	return &BoundCall{Verb: verb, Args: bound}, nil
}
