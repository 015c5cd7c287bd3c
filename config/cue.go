package config

import (
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/verba/grammar"
)

// FromCUE evaluates a CUE grammar document and delegates to FromMap.
// Uses the CUE SDK's Go API directly (not a CLI subprocess). The document
// must evaluate to a concrete struct of the shared mapping shape.
func FromCUE(data []byte) (*grammar.Spec, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, &ConfigError{
			Message: "invalid CUE document",
			Code:    ErrUnreadable,
			Err:     err,
		}
	}

	var doc map[string]any
	if err := v.Decode(&doc); err != nil {
		return nil, &ConfigError{
			Message: "CUE document is not a concrete grammar mapping",
			Code:    ErrUnreadable,
			Err:     err,
		}
	}

	return FromMap(doc)
}
