package verba

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verba/ast"
	"github.com/roach88/verba/backend"
	"github.com/roach88/verba/grammar"
	"github.com/roach88/verba/interp"
)

func taskGrammar(t *testing.T, board *TaskBoard, extra ...Option) *Grammar {
	t.Helper()
	opts := append([]Option{
		WithVerbs(board.Verbs()...),
		WithApplier(board.Apply),
	}, extra...)
	g, err := New(opts...)
	require.NoError(t, err)
	return g
}

func TestNewDefaultGrammar(t *testing.T) {
	g, err := New()
	require.NoError(t, err)
	assert.Equal(t, "start", g.Spec().Start)

	chains, err := g.Parse(`do_something("now")`)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "do_something", chains[0].Calls[0].Name)
}

func TestNewRejectsBadVerbs(t *testing.T) {
	tests := []struct {
		name string
		verb *Verb
		code string
	}{
		{
			name: "empty name",
			verb: &Verb{Handler: func(context.Context, Args) (*Action, error) { return nil, nil }},
			code: grammar.ErrEmptyVerbName,
		},
		{
			name: "nil handler",
			verb: &Verb{Name: "broken"},
			code: grammar.ErrNilHandler,
		},
		{
			name: "required after defaulted",
			verb: &Verb{
				Name: "f",
				Params: []Param{
					{Name: "a", Default: ast.Number(1), HasDefault: true},
					{Name: "b"},
				},
				Handler: func(context.Context, Args) (*Action, error) { return nil, nil },
			},
			code: grammar.ErrBadParamOrder,
		},
		{
			name: "duplicate parameter",
			verb: &Verb{
				Name:    "f",
				Params:  []Param{{Name: "a"}, {Name: "a"}},
				Handler: func(context.Context, Args) (*Action, error) { return nil, nil },
			},
			code: grammar.ErrDuplicateParam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithVerbs(tt.verb))
			var defErr *grammar.DefinitionError
			require.ErrorAs(t, err, &defErr)
			assert.Equal(t, tt.code, defErr.Code)
		})
	}
}

func TestNewRejectsDuplicateVerb(t *testing.T) {
	handler := func(context.Context, Args) (*Action, error) { return nil, nil }

	_, err := New(WithVerbs(
		&Verb{Name: "ping", Handler: handler},
		&Verb{Name: "ping", Handler: handler},
	))
	var defErr *grammar.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, grammar.ErrDuplicateVerb, defErr.Code)
}

func TestNewRejectsInvalidGrammarText(t *testing.T) {
	_, err := New(WithGrammarText("start: nowhere"))
	var gErr *backend.GrammarError
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, backend.ErrUnresolvedRef, gErr.Code)
}

func TestParseErrorCarriesSyntaxError(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	_, err = g.Execute(context.Background(), "not a ( statement")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageParse, execErr.Stage)

	var synErr *backend.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 1, synErr.Line)
}

func TestExecuteUnknownVerb(t *testing.T) {
	g := taskGrammar(t, NewTaskBoard())

	_, err := g.Execute(context.Background(), "frobnicate()")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageExecute, execErr.Stage)

	var unknown *interp.UnknownVerbError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "frobnicate", unknown.Verb)
}

func TestExportGrammarIsDirectiveFree(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	exported := g.ExportGrammar()
	assert.NotContains(t, exported, "%import")
	assert.NotContains(t, exported, "%ignore")
	assert.Contains(t, exported, "start: call_chain")
	assert.Contains(t, exported, "IDENTIFIER:")
}

func TestExportGrammarFromText(t *testing.T) {
	text := `start: NAME
NAME: /[a-z]+/
%import common.WS
%ignore WS
`
	g, err := New(WithGrammarText(text))
	require.NoError(t, err)

	exported := g.ExportGrammar()
	assert.NotContains(t, exported, "%")
	assert.Contains(t, exported, "NAME: /[a-z]+/")
}

func TestCustomGrammarText(t *testing.T) {
	// Semicolon-separated arguments instead of commas.
	text := `start: call
call: IDENTIFIER "(" args? ")"
args: arg (";" arg)*
arg: IDENTIFIER "=" value | value
value: NUMBER | STRING | IDENTIFIER
NUMBER: /-?\d+(\.\d+)?/
STRING: /"([^"\\]|\\.)*"/
IDENTIFIER: /[a-zA-Z_][a-zA-Z0-9_]*/
%import common.WS
%ignore WS
`
	board := NewTaskBoard()
	g := taskGrammar(t, board, WithGrammarText(text))

	_, err := g.Execute(context.Background(), `create_task("a"; priority="high")`)
	require.NoError(t, err)

	tasks := board.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "high", tasks[0].Priority)
}

// memoryRecorder captures RecordRun calls for assertions.
type memoryRecorder struct {
	mode   string
	source string
	invs   []Invocation
	calls  int
	err    error
}

func (r *memoryRecorder) RecordRun(_ context.Context, mode, source string, invs []Invocation) (string, error) {
	r.mode, r.source, r.invs = mode, source, invs
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return "run-0001", nil
}

func TestExecuteRecordsRun(t *testing.T) {
	rec := &memoryRecorder{}
	board := NewTaskBoard()
	g := taskGrammar(t, board, WithRecorder(rec))

	source := `create_task("write docs")`
	_, err := g.Execute(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "execute", rec.mode)
	assert.Equal(t, source, rec.source)
	require.Len(t, rec.invs, 1)
	assert.Equal(t, "create_task", rec.invs[0].Verb)
}

func TestCollectRecordsMode(t *testing.T) {
	rec := &memoryRecorder{}
	g := taskGrammar(t, NewTaskBoard(), WithRecorder(rec))

	_, err := g.Collect(context.Background(), `list_tasks()`)
	require.NoError(t, err)
	assert.Equal(t, "collect", rec.mode)
}

func TestRecorderFailureSurfaces(t *testing.T) {
	rec := &memoryRecorder{err: assert.AnError}
	g := taskGrammar(t, NewTaskBoard(), WithRecorder(rec))

	invs, err := g.Execute(context.Background(), `list_tasks()`)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageRecord, execErr.Stage)
	assert.Len(t, invs, 1, "invocations survive a recording failure")
}

func TestStringValueAcceptsIdent(t *testing.T) {
	s, ok := StringValue(ast.Ident("fast"))
	require.True(t, ok)
	assert.Equal(t, "fast", s)

	s, ok = StringValue(ast.String("hello"))
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = StringValue(ast.Number(3))
	assert.False(t, ok)

	n, ok := NumberValue(ast.Number(3.5))
	require.True(t, ok)
	assert.InDelta(t, 3.5, n, 1e-9)

	_, ok = NumberValue(ast.String("3.5"))
	assert.False(t, ok)
}

func TestExportThenCompileRoundTrip(t *testing.T) {
	// The exported text, plus the directives the export strips, must
	// compile back to a working parser.
	g, err := New()
	require.NoError(t, err)

	text := g.ExportGrammar() + "\n%import common.WS\n%ignore WS\n"
	regrown, err := New(WithGrammarText(text), WithVerbs(NewTaskBoard().Verbs()...))
	require.NoError(t, err)

	_, err = regrown.Parse(strings.TrimSpace(`list_tasks()`))
	assert.NoError(t, err)
}
