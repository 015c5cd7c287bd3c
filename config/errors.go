package config

import "fmt"

// Config error codes (C100-C199)
const (
	ErrMissingField  = "C100" // required field absent
	ErrWrongType     = "C101" // field present with the wrong type
	ErrUnknownStart  = "C102" // start references an undefined rule
	ErrUnreadable    = "C103" // document could not be decoded
	ErrUnknownFormat = "C104" // file extension not recognized
)

// ConfigError reports a malformed grammar document. Raised while loading,
// before any Spec is produced.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Err     error  `json:"-"` // decode cause, if any
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the decode cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
