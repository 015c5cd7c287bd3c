package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/roach88/verba/grammar"
)

// FromTOML decodes a TOML grammar document and delegates to FromMap.
// The TOML layer performs no grammar-specific logic.
func FromTOML(data []byte) (*grammar.Spec, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{
			Message: "invalid TOML document",
			Code:    ErrUnreadable,
			Err:     err,
		}
	}
	return FromMap(normalizeLists(doc))
}

// normalizeLists converts TOML's typed slices ([]map[string]any for
// arrays of tables) into the []any shape FromMap expects.
func normalizeLists(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case []map[string]any:
			list := make([]any, len(val))
			for i, m := range val {
				list[i] = m
			}
			out[k] = list
		case []string:
			list := make([]any, len(val))
			for i, s := range val {
				list[i] = s
			}
			out[k] = list
		default:
			out[k] = v
		}
	}
	return out
}
