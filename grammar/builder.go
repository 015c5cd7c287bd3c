package grammar

import "fmt"

// Builder constructs a Spec incrementally. Append order is preserved in
// the built spec. Duplicate names fail at the point of the append, so the
// offending call is easy to locate.
//
// The zero value is not usable; create builders with NewBuilder.
type Builder struct {
	start      string
	rules      []Rule
	terminals  []Terminal
	directives []Directive

	ruleNames map[string]bool
	termNames map[string]bool
	err       *DefinitionError // first append failure, reported by Build
}

// NewBuilder creates an empty Builder.
// The start rule defaults to the first rule appended.
func NewBuilder() *Builder {
	return &Builder{
		ruleNames: make(map[string]bool),
		termNames: make(map[string]bool),
	}
}

// Start overrides the start rule name.
func (b *Builder) Start(name string) *Builder {
	b.start = name
	return b
}

// Rule appends a rule. The first appended rule becomes the start rule
// unless Start was called.
func (b *Builder) Rule(name, definition, description string) *Builder {
	if b.err != nil {
		return b
	}
	if b.ruleNames[name] {
		b.err = &DefinitionError{
			Field:   "rules." + name,
			Message: fmt.Sprintf("rule %q is already defined", name),
			Code:    ErrDuplicateRule,
		}
		return b
	}
	b.ruleNames[name] = true
	b.rules = append(b.rules, Rule{Name: name, Definition: definition, Description: description})
	if b.start == "" {
		b.start = name
	}
	return b
}

// Terminal appends a terminal definition.
func (b *Builder) Terminal(name, pattern, description string) *Builder {
	if b.err != nil {
		return b
	}
	if b.termNames[name] {
		b.err = &DefinitionError{
			Field:   "terminals." + name,
			Message: fmt.Sprintf("terminal %q is already defined", name),
			Code:    ErrDuplicateTermin,
		}
		return b
	}
	b.termNames[name] = true
	b.terminals = append(b.terminals, Terminal{Name: name, Pattern: pattern, Description: description})
	return b
}

// Directive appends an opaque backend directive line.
func (b *Builder) Directive(text string) *Builder {
	if b.err != nil {
		return b
	}
	b.directives = append(b.directives, Directive(text))
	return b
}

// Build returns the immutable Spec, or the first definition error
// encountered while building. The returned spec also passes Validate.
func (b *Builder) Build() (*Spec, error) {
	if b.err != nil {
		return nil, b.err
	}
	spec := &Spec{
		Start:      b.start,
		Rules:      append([]Rule(nil), b.rules...),
		Terminals:  append([]Terminal(nil), b.terminals...),
		Directives: append([]Directive(nil), b.directives...),
	}
	if errs := spec.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	return spec, nil
}

// Default returns the canonical call-chain grammar: a program is one or
// more newline-separated statements, each a dot-chained sequence of
// identifier(...) calls with keyword or positional arguments whose values
// are numbers, double-quoted strings, or bare identifiers.
//
// Default never fails; the canonical grammar is valid by construction.
func Default() *Spec {
	spec, err := NewBuilder().
		Rule("start", "call_chain", "Entry point: a chain of calls").
		Rule("call_chain", "call (DOT call)*", "Dot-chained sequence of calls").
		Rule("call", `IDENTIFIER "(" args? ")"`, "A single verb call").
		Rule("args", "arg (COMMA arg)*", "Argument list").
		Rule("arg", `IDENTIFIER "=" value | value`, "Keyword or positional argument").
		Rule("value", "NUMBER | STRING | IDENTIFIER", "Literal value").
		Terminal("DOT", ".", "Chain separator").
		Terminal("COMMA", ",", "Argument separator").
		Terminal("NUMBER", `/-?\d+(\.\d+)?/`, "Optionally signed decimal number").
		Terminal("STRING", `/"([^"\\]|\\.)*"/`, "Double-quoted string with backslash escapes").
		Terminal("IDENTIFIER", `/[a-zA-Z_][a-zA-Z0-9_]*/`, "Bare identifier").
		Directive("%import common.WS").
		Directive("%ignore WS").
		Build()
	if err != nil {
		panic("grammar: default spec invalid: " + err.Error())
	}
	return spec
}
