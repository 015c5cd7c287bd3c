package verba

import "fmt"

// Pipeline stages reported by ExecutionError.
const (
	StageParse   = "parse"
	StageExecute = "execute"
	StageRecord  = "record"
)

// ExecutionError wraps a failure from one stage of the run pipeline.
// Unwrap exposes the stage error, so errors.As still reaches the typed
// parse and binding errors underneath.
type ExecutionError struct {
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the stage error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
