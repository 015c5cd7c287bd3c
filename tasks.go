package verba

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/verba/ast"
	"github.com/roach88/verba/interp"
)

// Task priorities accepted by create_task.
var taskPriorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// Task is one entry on a TaskBoard.
type Task struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Done     bool   `json:"done"`
}

// TaskBoard is the stock task-management vocabulary: three verbs over an
// in-memory task list. It doubles as a worked example of the
// action/applier split: create_task and complete_task describe their
// effect as actions, so a dry run leaves the board untouched, while
// list_tasks reads the board directly.
type TaskBoard struct {
	mu    sync.Mutex
	tasks []Task
}

// NewTaskBoard returns an empty board.
func NewTaskBoard() *TaskBoard {
	return &TaskBoard{}
}

// Tasks returns a snapshot of the board.
func (b *TaskBoard) Tasks() []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Task(nil), b.tasks...)
}

// Verbs returns the board's vocabulary:
//
//	create_task(name, priority="medium")
//	complete_task(name)
//	list_tasks()
func (b *TaskBoard) Verbs() []*Verb {
	return []*Verb{
		{
			Name:        "create_task",
			Description: "Add a task to the board",
			Params: []Param{
				{Name: "name"},
				{Name: "priority", Default: ast.String("medium"), HasDefault: true},
			},
			Handler: b.createTask,
		},
		{
			Name:        "complete_task",
			Description: "Mark a task as done",
			Params:      []Param{{Name: "name"}},
			Handler:     b.completeTask,
		},
		{
			Name:        "list_tasks",
			Description: "List all tasks on the board",
			Handler:     b.listTasks,
		},
	}
}

// Apply is the board's interp.Applier: it performs the effects that
// createTask and completeTask described.
func (b *TaskBoard) Apply(_ context.Context, inv Invocation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch inv.Action.Kind {
	case "create_task":
		name := inv.Action.Payload["name"].(string)
		if b.find(name) >= 0 {
			return fmt.Errorf("task %q already exists", name)
		}
		b.tasks = append(b.tasks, Task{
			Name:     name,
			Priority: inv.Action.Payload["priority"].(string),
		})
		return nil

	case "complete_task":
		name := inv.Action.Payload["name"].(string)
		i := b.find(name)
		if i < 0 {
			return fmt.Errorf("no task named %q", name)
		}
		b.tasks[i].Done = true
		return nil

	case "task_list":
		// Read-only; nothing to apply.
		return nil

	default:
		return fmt.Errorf("unknown action kind %q", inv.Action.Kind)
	}
}

func (b *TaskBoard) find(name string) int {
	for i := range b.tasks {
		if b.tasks[i].Name == name {
			return i
		}
	}
	return -1
}

func (b *TaskBoard) createTask(_ context.Context, args interp.Args) (*Action, error) {
	name, ok := StringValue(args["name"])
	if !ok {
		return nil, fmt.Errorf("create_task: name must be a string, got %s", args["name"].Literal())
	}
	priority, ok := StringValue(args["priority"])
	if !ok {
		return nil, fmt.Errorf("create_task: priority must be a string, got %s", args["priority"].Literal())
	}
	if !taskPriorities[priority] {
		return nil, fmt.Errorf("create_task: priority must be low, medium, or high, got %q", priority)
	}
	return &Action{
		Kind:    "create_task",
		Payload: map[string]any{"name": name, "priority": priority},
	}, nil
}

func (b *TaskBoard) completeTask(_ context.Context, args interp.Args) (*Action, error) {
	name, ok := StringValue(args["name"])
	if !ok {
		return nil, fmt.Errorf("complete_task: name must be a string, got %s", args["name"].Literal())
	}
	return &Action{
		Kind:    "complete_task",
		Payload: map[string]any{"name": name},
	}, nil
}

func (b *TaskBoard) listTasks(context.Context, interp.Args) (*Action, error) {
	tasks := b.Tasks()
	listing := make([]any, len(tasks))
	for i, t := range tasks {
		listing[i] = map[string]any{
			"name":     t.Name,
			"priority": t.Priority,
			"done":     t.Done,
		}
	}
	return &Action{
		Kind:    "task_list",
		Payload: map[string]any{"tasks": listing},
	}, nil
}
