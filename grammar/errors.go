package grammar

import "fmt"

// Definition error codes (D100-D199)
const (
	// Spec shape errors (D100-D109)
	ErrMissingStart    = "D100" // start rule name is empty
	ErrStartUndefined  = "D101" // start rule not defined
	ErrDuplicateRule   = "D102" // rule name already defined
	ErrDuplicateTermin = "D103" // terminal name already defined
	ErrNameCollision   = "D104" // terminal name collides with a rule name
	ErrEmptyName       = "D105" // rule/terminal name is empty
	ErrEmptyDefinition = "D106" // rule definition / terminal pattern is empty

	// Verb registration errors (D110-D119)
	ErrDuplicateVerb  = "D110" // verb name already registered
	ErrEmptyVerbName  = "D111" // verb name is empty
	ErrNilHandler     = "D112" // verb handler is nil
	ErrBadParamOrder  = "D113" // required parameter follows a defaulted one
	ErrDuplicateParam = "D114" // parameter name repeated in a signature
)

// DefinitionError reports an invalid grammar or verb definition.
// Raised at build/registration time, before any parsing occurs.
type DefinitionError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}
