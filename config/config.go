// Package config loads grammar specs from structured documents. The
// document shape is the same regardless of carrier:
//
//	start: <rule-name>
//	rules:      [ {name, definition, description?}, ... ]
//	terminals:  [ {name, pattern, description?}, ... ]
//	directives: [ <opaque-string>, ... ]
//
// FromMap is the single grammar-aware loader; the YAML, TOML, and CUE
// loaders are pure preprocessing steps that decode their carrier into the
// mapping above and delegate.
package config

import (
	"fmt"

	"github.com/roach88/verba/grammar"
)

// FromMap converts a structured grammar document into a grammar.Spec,
// preserving input order of rules, terminals, and directives.
//
// Required shape: "start" (string), each entry of "rules" a mapping with
// "name" and "definition", each entry of "terminals" a mapping with
// "name" and "pattern". "description" and "directives" are optional.
// Violations return a *ConfigError naming the offending field.
func FromMap(doc map[string]any) (*grammar.Spec, error) {
	start, err := requireString(doc, "start")
	if err != nil {
		return nil, err
	}

	b := grammar.NewBuilder().Start(start)

	rules, err := optionalList(doc, "rules")
	if err != nil {
		return nil, err
	}
	startDefined := false
	for i, entry := range rules {
		field := fmt.Sprintf("rules[%d]", i)
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, &ConfigError{
				Field:   field,
				Message: fmt.Sprintf("expected a mapping, got %T", entry),
				Code:    ErrWrongType,
			}
		}
		name, err := requireStringAt(m, "name", field)
		if err != nil {
			return nil, err
		}
		def, err := requireStringAt(m, "definition", field+"."+name)
		if err != nil {
			return nil, err
		}
		b.Rule(name, def, stringAt(m, "description"))
		if name == start {
			startDefined = true
		}
	}

	if !startDefined {
		return nil, &ConfigError{
			Field:   "start",
			Message: fmt.Sprintf("start rule %q is not present in rules", start),
			Code:    ErrUnknownStart,
		}
	}

	terminals, err := optionalList(doc, "terminals")
	if err != nil {
		return nil, err
	}
	for i, entry := range terminals {
		field := fmt.Sprintf("terminals[%d]", i)
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, &ConfigError{
				Field:   field,
				Message: fmt.Sprintf("expected a mapping, got %T", entry),
				Code:    ErrWrongType,
			}
		}
		name, err := requireStringAt(m, "name", field)
		if err != nil {
			return nil, err
		}
		pattern, err := requireStringAt(m, "pattern", field+"."+name)
		if err != nil {
			return nil, err
		}
		b.Terminal(name, pattern, stringAt(m, "description"))
	}

	directives, err := optionalList(doc, "directives")
	if err != nil {
		return nil, err
	}
	for i, entry := range directives {
		text, ok := entry.(string)
		if !ok {
			return nil, &ConfigError{
				Field:   fmt.Sprintf("directives[%d]", i),
				Message: fmt.Sprintf("expected a string, got %T", entry),
				Code:    ErrWrongType,
			}
		}
		b.Directive(text)
	}

	// Duplicate names surface here as the builder's DefinitionError.
	return b.Build()
}

func requireString(doc map[string]any, key string) (string, error) {
	return requireStringAt(doc, key, "")
}

func requireStringAt(m map[string]any, key, parent string) (string, error) {
	field := key
	if parent != "" {
		field = parent + "." + key
	}
	raw, ok := m[key]
	if !ok {
		return "", &ConfigError{
			Field:   field,
			Message: key + " is required",
			Code:    ErrMissingField,
		}
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", &ConfigError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a non-empty string", key),
			Code:    ErrWrongType,
		}
	}
	return s, nil
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func optionalList(doc map[string]any, key string) ([]any, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &ConfigError{
			Field:   key,
			Message: fmt.Sprintf("expected a sequence, got %T", raw),
			Code:    ErrWrongType,
		}
	}
	return list, nil
}
