// Package grammar defines the data representation of a verb-DSL grammar:
// rules, terminals, backend directives, and the builder that constructs
// them. A Spec carries no parsing behavior of its own — it is consumed by
// a backend, which compiles it into a working parser or renders it as
// grammar text.
package grammar

import (
	"fmt"
	"strings"
)

// Rule is a single named production in the grammar.
// Definition is a grammar expression in the backend's notation
// (e.g. `call (DOT call)*`).
type Rule struct {
	Name        string `json:"name"`
	Definition  string `json:"definition"`
	Description string `json:"description,omitempty"`
}

// Terminal is a named token definition. Pattern is either a literal
// string (matched verbatim) or a /.../-delimited regular expression.
type Terminal struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	Description string `json:"description,omitempty"`
}

// Directive is an opaque backend-specific instruction (e.g. an import or
// ignore line). The core never interprets directives; they pass through
// to the backend in declaration order and are excluded from the
// constrained-decoding export.
type Directive string

// Spec is the complete grammar definition: a start rule, ordered rules,
// ordered terminals, and ordered directives.
//
// A Spec is constructed once (by Builder or the config loaders) and is
// immutable thereafter. It is safe to share read-only across multiple
// backend compilations.
type Spec struct {
	Start      string      `json:"start"`
	Rules      []Rule      `json:"rules"`
	Terminals  []Terminal  `json:"terminals"`
	Directives []Directive `json:"directives,omitempty"`
}

// Rule returns the rule with the given name, or nil.
func (s *Spec) Rule(name string) *Rule {
	for i := range s.Rules {
		if s.Rules[i].Name == name {
			return &s.Rules[i]
		}
	}
	return nil
}

// Terminal returns the terminal with the given name, or nil.
func (s *Spec) Terminal(name string) *Terminal {
	for i := range s.Terminals {
		if s.Terminals[i].Name == name {
			return &s.Terminals[i]
		}
	}
	return nil
}

// Validate checks structural invariants of the spec.
// Returns all errors found (does not fail-fast).
//
// Checked invariants:
//   - start names a defined rule
//   - rule names are unique and non-empty
//   - terminal names are unique, non-empty, and disjoint from rule names
//   - definitions and patterns are non-empty
func (s *Spec) Validate() []*DefinitionError {
	var errs []*DefinitionError

	if strings.TrimSpace(s.Start) == "" {
		errs = append(errs, &DefinitionError{
			Field:   "start",
			Message: "start rule name is required",
			Code:    ErrMissingStart,
		})
	}

	ruleNames := make(map[string]bool, len(s.Rules))
	for i, r := range s.Rules {
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, &DefinitionError{
				Field:   fmt.Sprintf("rules[%d]", i),
				Message: "rule name is required",
				Code:    ErrEmptyName,
			})
			continue
		}
		if ruleNames[r.Name] {
			errs = append(errs, &DefinitionError{
				Field:   "rules." + r.Name,
				Message: fmt.Sprintf("rule %q is already defined", r.Name),
				Code:    ErrDuplicateRule,
			})
		}
		ruleNames[r.Name] = true

		if strings.TrimSpace(r.Definition) == "" {
			errs = append(errs, &DefinitionError{
				Field:   "rules." + r.Name,
				Message: "rule definition is required",
				Code:    ErrEmptyDefinition,
			})
		}
	}

	termNames := make(map[string]bool, len(s.Terminals))
	for i, t := range s.Terminals {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, &DefinitionError{
				Field:   fmt.Sprintf("terminals[%d]", i),
				Message: "terminal name is required",
				Code:    ErrEmptyName,
			})
			continue
		}
		if termNames[t.Name] {
			errs = append(errs, &DefinitionError{
				Field:   "terminals." + t.Name,
				Message: fmt.Sprintf("terminal %q is already defined", t.Name),
				Code:    ErrDuplicateTermin,
			})
		}
		termNames[t.Name] = true

		if ruleNames[t.Name] {
			errs = append(errs, &DefinitionError{
				Field:   "terminals." + t.Name,
				Message: fmt.Sprintf("terminal %q collides with a rule of the same name", t.Name),
				Code:    ErrNameCollision,
			})
		}
		if t.Pattern == "" {
			errs = append(errs, &DefinitionError{
				Field:   "terminals." + t.Name,
				Message: "terminal pattern is required",
				Code:    ErrEmptyDefinition,
			})
		}
	}

	if s.Start != "" && !ruleNames[s.Start] {
		errs = append(errs, &DefinitionError{
			Field:   "start",
			Message: fmt.Sprintf("start rule %q is not defined", s.Start),
			Code:    ErrStartUndefined,
		})
	}

	return errs
}
