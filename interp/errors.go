package interp

import "fmt"

// Argument binding error codes (A100-A199)
const (
	ErrUnknownKeyword  = "A100" // keyword does not name a declared parameter
	ErrDuplicateBind   = "A101" // parameter bound more than once
	ErrTooManyArgs     = "A102" // more positional arguments than unbound parameters
	ErrMissingRequired = "A103" // required parameter left unbound
)

// UnknownVerbError reports a call to a verb absent from the registry.
type UnknownVerbError struct {
	Verb string `json:"verb"`
}

// Error implements the error interface.
func (e *UnknownVerbError) Error() string {
	return fmt.Sprintf("unknown verb %q", e.Verb)
}

// ArgumentError reports a call whose arguments cannot be bound to the
// verb's declared parameters.
type ArgumentError struct {
	Verb    string `json:"verb"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("[%s] %s(%s): %s", e.Code, e.Verb, e.Param, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Verb, e.Message)
}
