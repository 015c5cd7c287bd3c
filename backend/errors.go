package backend

import (
	"fmt"
	"strings"
)

// Grammar error codes (G100-G199)
const (
	ErrUnresolvedRef  = "G100" // definition references an undefined name
	ErrInvalidPattern = "G101" // terminal pattern does not compile
	ErrBadDefinition  = "G102" // definition expression is malformed
	ErrUnknownImport  = "G103" // %import names an unknown builtin
	ErrBadDirective   = "G104" // directive is malformed or unsupported
	ErrDuplicateDef   = "G105" // rule/terminal defined twice in grammar text
	ErrMissingStart   = "G106" // grammar has no start rule
	ErrRefCycle       = "G107" // terminal definitions reference each other cyclically
)

// GrammarError reports invalid grammar text or an invalid spec detected
// at compile time. Name identifies the offending rule or terminal when
// known.
type GrammarError struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Err     error  `json:"-"` // underlying cause (e.g. regexp compile failure)
}

// Error implements the error interface.
func (e *GrammarError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Name, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *GrammarError) Unwrap() error {
	return e.Err
}

// SyntaxError reports DSL source text that does not match the compiled
// grammar. Line and Column are 1-based positions in the original source.
type SyntaxError struct {
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"` // terminal names / literals expected at the failure point
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	if len(e.Expected) > 0 {
		msg += " (expected " + strings.Join(e.Expected, ", ") + ")"
	}
	return msg
}
