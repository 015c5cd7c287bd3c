package backend

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verba/grammar"
)

func TestRenderDefaultGrammar(t *testing.T) {
	b := NewLarkBackend()
	text := b.Render(grammar.Default())

	g := goldie.New(t)
	g.Assert(t, "default_grammar", []byte(text))
}

func TestCleanForExternalGolden(t *testing.T) {
	b := NewLarkBackend()
	cleaned := b.CleanForExternal(b.Render(grammar.Default()))

	g := goldie.New(t)
	g.Assert(t, "default_grammar_clean", []byte(cleaned))
}

func TestCleanForExternalKeepsNonDirectiveLines(t *testing.T) {
	b := NewLarkBackend()
	text := b.Render(grammar.Default())
	cleaned := b.CleanForExternal(text)

	assert.NotContains(t, cleaned, "%import")
	assert.NotContains(t, cleaned, "%ignore")

	// Every non-directive line survives byte-identically, in order.
	var want []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "%") {
			continue
		}
		want = append(want, line)
	}
	assert.Equal(t, strings.Join(want, "\n"), cleaned)
}

func TestCompileDefaultRoundTrip(t *testing.T) {
	b := NewLarkBackend()
	p, err := b.Compile(grammar.Default())
	require.NoError(t, err)

	chains, err := p.Parse(`create_task("write", priority="high").list_tasks()`)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	require.Len(t, chains[0].Calls, 2)
	assert.Equal(t, "create_task", chains[0].Calls[0].Name)
	assert.Equal(t, "list_tasks", chains[0].Calls[1].Name)
}

func TestCompileRejectsInvalidSpec(t *testing.T) {
	b := NewLarkBackend()
	_, err := b.Compile(&grammar.Spec{Start: "start"})

	var defErr *grammar.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, grammar.ErrStartUndefined, defErr.Code)
}

func TestCompileTextErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code string
	}{
		{
			name: "duplicate definition",
			text: "start: A\nstart: A\nA: \"a\"",
			code: ErrDuplicateDef,
		},
		{
			name: "unknown builtin import",
			text: "start: WS\n%import common.NOPE",
			code: ErrUnknownImport,
		},
		{
			name: "unknown import library",
			text: "start: X\n%import weird.X",
			code: ErrUnknownImport,
		},
		{
			name: "malformed directive",
			text: "start: A\nA: \"a\"\n%frobnicate A",
			code: ErrBadDirective,
		},
		{
			name: "import missing argument",
			text: "start: A\nA: \"a\"\n%import",
			code: ErrBadDirective,
		},
		{
			name: "unresolved reference",
			text: "start: nothing_here",
			code: ErrUnresolvedRef,
		},
		{
			name: "ignore of undefined terminal",
			text: "start: A\nA: \"a\"\n%ignore WS",
			code: ErrUnresolvedRef,
		},
		{
			name: "invalid terminal pattern",
			text: "start: X\nX: /[/",
			code: ErrInvalidPattern,
		},
		{
			name: "no rules at all",
			text: "X: \"x\"",
			code: ErrMissingStart,
		},
		{
			name: "cyclic terminals",
			text: "start: A\nA: B\nB: A",
			code: ErrRefCycle,
		},
		{
			name: "unparseable line",
			text: "start: A\nA: \"a\"\nthis is not a definition",
			code: ErrBadDefinition,
		},
		{
			name: "dangling continuation",
			text: "| value",
			code: ErrBadDefinition,
		},
	}

	b := NewLarkBackend()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.CompileText(tt.text)
			var gErr *GrammarError
			require.ErrorAs(t, err, &gErr)
			assert.Equal(t, tt.code, gErr.Code)
		})
	}
}

func TestCompileTextContinuationLines(t *testing.T) {
	text := `start: value
value: NUMBER
  | STRING
NUMBER: /\d+/
STRING: /"[^"]*"/
`
	b := NewLarkBackend()
	p, err := b.CompileText(text)
	require.NoError(t, err)

	_, err = p.ParseStatement("42")
	assert.NoError(t, err)
	_, err = p.ParseStatement(`"hi"`)
	assert.NoError(t, err)
}

func TestCompileTextTerminalComposition(t *testing.T) {
	// Terminals may reference other terminals; the composite reduces to
	// one pattern.
	text := `start: PAIR
DIGIT: /\d/
PAIR: DIGIT DIGIT
`
	b := NewLarkBackend()
	p, err := b.CompileText(text)
	require.NoError(t, err)

	_, err = p.ParseStatement("42")
	assert.NoError(t, err)
	_, err = p.ParseStatement("4")
	assert.Error(t, err)
}
