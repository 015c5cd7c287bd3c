package verba

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskBoardProgram(t *testing.T) {
	board := NewTaskBoard()
	g := taskGrammar(t, board)

	source := `
create_task("write spec", priority="high")
create_task("review spec")
complete_task("write spec")
list_tasks()
`
	invs, err := g.Execute(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, invs, 4)

	tasks := board.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, Task{Name: "write spec", Priority: "high", Done: true}, tasks[0])
	assert.Equal(t, Task{Name: "review spec", Priority: "medium", Done: false}, tasks[1])

	// list_tasks ran last and saw both tasks.
	listing := invs[3].Action.Payload["tasks"].([]any)
	assert.Len(t, listing, 2)
	first := listing[0].(map[string]any)
	assert.Equal(t, "write spec", first["name"])
	assert.Equal(t, true, first["done"])
}

func TestTaskBoardChainedStatement(t *testing.T) {
	board := NewTaskBoard()
	g := taskGrammar(t, board)

	// Later calls in a chain observe earlier effects.
	_, err := g.Execute(context.Background(), `create_task("a").complete_task("a")`)
	require.NoError(t, err)

	tasks := board.Tasks()
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Done)
}

func TestTaskBoardUnknownVerbMidChainHasNoEffect(t *testing.T) {
	board := NewTaskBoard()
	g := taskGrammar(t, board)

	// The chain fails to resolve, so not even the leading call runs.
	_, err := g.Execute(context.Background(), `create_task("a").frobnicate()`)
	require.Error(t, err)
	assert.Empty(t, board.Tasks())
}

func TestTaskBoardCollectIsDryRun(t *testing.T) {
	board := NewTaskBoard()
	g := taskGrammar(t, board)

	invs, err := g.Collect(context.Background(), `create_task("phantom")`)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, "create_task", invs[0].Action.Kind)
	assert.Empty(t, board.Tasks(), "dry run must not touch the board")
}

func TestTaskBoardRejectsBadPriority(t *testing.T) {
	g := taskGrammar(t, NewTaskBoard())

	_, err := g.Execute(context.Background(), `create_task("x", priority="urgent")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority")
}

func TestTaskBoardRejectsDuplicateCreate(t *testing.T) {
	board := NewTaskBoard()
	g := taskGrammar(t, board)

	_, err := g.Execute(context.Background(), "create_task(\"x\")\ncreate_task(\"x\")")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Len(t, board.Tasks(), 1)
}

func TestTaskBoardCompleteUnknownTask(t *testing.T) {
	g := taskGrammar(t, NewTaskBoard())

	_, err := g.Execute(context.Background(), `complete_task("ghost")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task named")
}

func TestTaskBoardNumericNameRejected(t *testing.T) {
	g := taskGrammar(t, NewTaskBoard())

	_, err := g.Execute(context.Background(), "create_task(42)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string")
}
