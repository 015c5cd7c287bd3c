package interp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verba/ast"
)

// mapRegistry is a minimal registry for tests.
type mapRegistry map[string]*Verb

func (r mapRegistry) Lookup(name string) (*Verb, bool) {
	v, ok := r[name]
	return v, ok
}

func (r mapRegistry) Verbs() []*Verb {
	verbs := make([]*Verb, 0, len(r))
	for _, v := range r {
		verbs = append(verbs, v)
	}
	return verbs
}

func noop(context.Context, Args) (*Action, error) { return nil, nil }

// twoParamVerb declares f(x, y="fallback").
func twoParamVerb() *Verb {
	return &Verb{
		Name: "f",
		Params: []Param{
			{Name: "x"},
			{Name: "y", Default: ast.String("fallback"), HasDefault: true},
		},
		Handler: noop,
	}
}

func call(name string, args ...ast.Arg) ast.Call {
	return ast.Call{Name: name, Args: args}
}

func pos(v ast.Value) ast.Arg { return ast.Arg{Value: v} }

func kw(name string, v ast.Value) ast.Arg { return ast.Arg{Keyword: name, Value: v} }

func TestBindPositionalAndDefaults(t *testing.T) {
	reg := mapRegistry{"f": twoParamVerb()}

	tests := []struct {
		name string
		call ast.Call
		want Args
	}{
		{
			name: "positional fills first, default fills rest",
			call: call("f", pos(ast.Number(1))),
			want: Args{"x": ast.Number(1), "y": ast.String("fallback")},
		},
		{
			name: "two positionals",
			call: call("f", pos(ast.Number(1)), pos(ast.Number(2))),
			want: Args{"x": ast.Number(1), "y": ast.Number(2)},
		},
		{
			name: "positional then keyword",
			call: call("f", pos(ast.Number(1)), kw("y", ast.Number(2))),
			want: Args{"x": ast.Number(1), "y": ast.Number(2)},
		},
		{
			name: "all keywords in any order",
			call: call("f", kw("y", ast.Number(2)), kw("x", ast.Number(1))),
			want: Args{"x": ast.Number(1), "y": ast.Number(2)},
		},
		{
			name: "positional skips keyword-bound parameter",
			call: call("f", kw("x", ast.Number(1)), pos(ast.Number(2))),
			want: Args{"x": ast.Number(1), "y": ast.Number(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bound, err := Bind(reg, tt.call)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bound.Args)
		})
	}
}

func TestBindErrors(t *testing.T) {
	reg := mapRegistry{"f": twoParamVerb()}

	tests := []struct {
		name  string
		call  ast.Call
		code  string
		param string
	}{
		{
			name:  "unknown keyword",
			call:  call("f", kw("z", ast.Number(1))),
			code:  ErrUnknownKeyword,
			param: "z",
		},
		{
			name:  "duplicate keyword",
			call:  call("f", kw("x", ast.Number(1)), kw("x", ast.Number(2))),
			code:  ErrDuplicateBind,
			param: "x",
		},
		{
			name:  "positional then same keyword",
			call:  call("f", pos(ast.Number(1)), kw("x", ast.Number(2))),
			code:  ErrDuplicateBind,
			param: "x",
		},
		{
			name: "too many positionals",
			call: call("f", pos(ast.Number(1)), pos(ast.Number(2)), pos(ast.Number(3))),
			code: ErrTooManyArgs,
		},
		{
			name:  "missing required",
			call:  call("f"),
			code:  ErrMissingRequired,
			param: "x",
		},
		{
			name:  "keyword for default only leaves required unbound",
			call:  call("f", kw("y", ast.Number(2))),
			code:  ErrMissingRequired,
			param: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(reg, tt.call)
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.code, argErr.Code)
			assert.Equal(t, tt.param, argErr.Param)
			assert.Equal(t, "f", argErr.Verb)
		})
	}
}

func TestBindUnknownVerb(t *testing.T) {
	reg := mapRegistry{}

	_, err := Bind(reg, call("vanish"))
	var unknown *UnknownVerbError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "vanish", unknown.Verb)
}

func TestBindNoParams(t *testing.T) {
	reg := mapRegistry{"ping": {Name: "ping", Handler: noop}}

	bound, err := Bind(reg, call("ping"))
	require.NoError(t, err)
	assert.Empty(t, bound.Args)

	_, err = Bind(reg, call("ping", pos(ast.Number(1))))
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, ErrTooManyArgs, argErr.Code)
}
