package harness

import (
	"fmt"
	"strings"
)

// RenderResult renders a result as deterministic text for golden
// comparison: one line per recorded invocation with canonical-JSON
// arguments and action, followed by the final board state.
func RenderResult(res *Result) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario: %s\n", res.Scenario)
	fmt.Fprintf(&sb, "mode: %s\n", res.Mode)
	if res.RunErr != "" {
		fmt.Fprintf(&sb, "error: %s\n", res.RunErr)
	}

	sb.WriteString("invocations:\n")
	for _, rec := range res.Trace {
		fmt.Fprintf(&sb, "  %d %s %s", rec.Seq, rec.Verb, rec.Args)
		if rec.ActionKind != "" {
			fmt.Fprintf(&sb, " -> %s %s", rec.ActionKind, rec.ActionPayload)
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("tasks:\n")
	for _, task := range res.Tasks {
		mark := " "
		if task.Done {
			mark = "x"
		}
		fmt.Fprintf(&sb, "  [%s] %s (%s)\n", mark, task.Name, task.Priority)
	}
	return []byte(sb.String())
}
