package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verba/ast"
	"github.com/roach88/verba/interp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleInvocations() []interp.Invocation {
	return []interp.Invocation{
		{
			Verb: "create_task",
			Args: interp.Args{"name": ast.String("a"), "priority": ast.String("high")},
			Action: &interp.Action{
				Kind:    "create_task",
				Payload: map[string]any{"name": "a", "priority": "high"},
			},
		},
		{
			Verb: "list_tasks",
			Args: interp.Args{},
		},
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestRecordAndReadRun(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, WithTokenGenerator(NewFixedGenerator("run-0001")))

	source := "create_task(\"a\", priority=\"high\")\nlist_tasks()"
	token, err := rec.RecordRun(context.Background(), "execute", source, sampleInvocations())
	require.NoError(t, err)
	assert.Equal(t, "run-0001", token)

	run, invs, err := s.ReadRun(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "execute", run.Mode)
	assert.Equal(t, source, run.Source)
	assert.NotEmpty(t, run.CreatedAt)

	require.Len(t, invs, 2)
	assert.Equal(t, 0, invs[0].Seq)
	assert.Equal(t, "create_task", invs[0].Verb)
	assert.Equal(t, `{"name":"a","priority":"high"}`, invs[0].Args)
	assert.Equal(t, "create_task", invs[0].ActionKind)
	assert.Equal(t, `{"name":"a","priority":"high"}`, invs[0].ActionPayload)

	assert.Equal(t, "list_tasks", invs[1].Verb)
	assert.Equal(t, "{}", invs[1].Args)
	assert.Empty(t, invs[1].ActionKind, "direct-effect invocations store no action")
	assert.Empty(t, invs[1].ActionPayload)
}

func TestArgsAreCanonical(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, WithTokenGenerator(NewFixedGenerator("run-a", "run-b")))

	// The same logical args in different construction order must store
	// identical JSON.
	first := []interp.Invocation{{
		Verb: "f",
		Args: interp.Args{"b": ast.Number(2), "a": ast.Number(1)},
	}}
	second := []interp.Invocation{{
		Verb: "f",
		Args: interp.Args{"a": ast.Number(1), "b": ast.Number(2)},
	}}

	ctx := context.Background()
	tokenA, err := rec.RecordRun(ctx, "execute", "f(1, 2)", first)
	require.NoError(t, err)
	tokenB, err := rec.RecordRun(ctx, "execute", "f(1, 2)", second)
	require.NoError(t, err)

	_, invsA, err := s.ReadRun(ctx, tokenA)
	require.NoError(t, err)
	_, invsB, err := s.ReadRun(ctx, tokenB)
	require.NoError(t, err)
	assert.Equal(t, invsA[0].Args, invsB[0].Args)
	assert.Equal(t, `{"a":1,"b":2}`, invsA[0].Args)
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, WithTokenGenerator(NewFixedGenerator("run-1", "run-2", "run-3")))

	ctx := context.Background()
	for range 3 {
		_, err := rec.RecordRun(ctx, "collect", "list_tasks()", nil)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestReadRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.ReadRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestUUIDv7TokensAreSortable(t *testing.T) {
	g := UUIDv7Generator{}
	a := g.Generate()
	b := g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, a, b, "v7 tokens sort by creation time")
}

func TestFixedGeneratorExhaustion(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
