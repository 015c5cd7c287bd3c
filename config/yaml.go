package config

import (
	"gopkg.in/yaml.v3"

	"github.com/roach88/verba/grammar"
)

// FromYAML decodes a YAML grammar document and delegates to FromMap.
// The YAML layer performs no grammar-specific logic.
func FromYAML(data []byte) (*grammar.Spec, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{
			Message: "invalid YAML document",
			Code:    ErrUnreadable,
			Err:     err,
		}
	}
	return FromMap(doc)
}
