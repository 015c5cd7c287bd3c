package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/verba/grammar"
)

// Backend compiles grammar definitions into executable parsers and
// renders specs as grammar text suitable for external consumers.
type Backend interface {
	// Compile builds a parser from a structured spec.
	Compile(spec *grammar.Spec) (*Parser, error)
	// CompileText builds a parser from grammar notation text.
	CompileText(text string) (*Parser, error)
	// Render serializes a spec to grammar notation text.
	Render(spec *grammar.Spec) string
	// CleanForExternal strips processing directives from grammar text,
	// leaving everything else byte-identical. The result is suitable for
	// constrained-decoding systems that reject directive lines.
	CleanForExternal(text string) string
}

// LarkBackend implements Backend using Lark-style grammar notation:
// lowercase rule names, UPPERCASE terminal names, `name: definition`
// lines, `|` continuations, and `%import` / `%ignore` directives.
type LarkBackend struct{}

// NewLarkBackend returns the default grammar backend.
func NewLarkBackend() *LarkBackend {
	return &LarkBackend{}
}

var _ Backend = (*LarkBackend)(nil)

// builtinTerminals is the library available through `%import common.X`.
var builtinTerminals = map[string]string{
	"WS":             `\s+`,
	"WS_INLINE":      `[ \t]+`,
	"NEWLINE":        `(\r?\n)+`,
	"INT":            `\d+`,
	"SIGNED_INT":     `[+-]?\d+`,
	"NUMBER":         `-?\d+(\.\d+)?`,
	"ESCAPED_STRING": `"([^"\\]|\\.)*"`,
	"CNAME":          `[a-zA-Z_][a-zA-Z0-9_]*`,
}

// Compile renders the spec to grammar text and compiles that text. Going
// through the textual form guarantees the parser in use and the grammar
// exported to external systems are the same grammar.
func (b *LarkBackend) Compile(spec *grammar.Spec) (*Parser, error) {
	if errs := spec.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	return b.CompileText(b.Render(spec))
}

// Render serializes a spec to grammar notation. The start rule is
// emitted first; descriptions become comment lines above each entry.
func (b *LarkBackend) Render(spec *grammar.Spec) string {
	var sb strings.Builder

	writeEntry := func(name, definition, description string) {
		if description != "" {
			sb.WriteString("// ")
			sb.WriteString(description)
			sb.WriteByte('\n')
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(definition)
		sb.WriteString("\n\n")
	}

	if start := spec.Rule(spec.Start); start != nil {
		writeEntry(start.Name, start.Definition, start.Description)
	}
	for _, r := range spec.Rules {
		if r.Name == spec.Start {
			continue
		}
		writeEntry(r.Name, r.Definition, r.Description)
	}
	for _, t := range spec.Terminals {
		writeEntry(t.Name, renderPattern(t.Pattern), t.Description)
	}
	for _, d := range spec.Directives {
		sb.WriteString(string(d))
		sb.WriteByte('\n')
	}

	return sb.String()
}

// renderPattern emits a terminal pattern in grammar notation. Patterns
// already in /regex/ form pass through; anything else is a literal and
// gets quoted.
func renderPattern(pattern string) string {
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		return pattern
	}
	return strconv.Quote(pattern)
}

// CleanForExternal removes `%`-directive lines from grammar text. All
// other lines pass through unchanged.
func (b *LarkBackend) CleanForExternal(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "%") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// definition is one named entry collected from grammar text.
type definition struct {
	name string
	text string
}

// CompileText parses grammar notation and builds a parser. The first
// rule defined becomes the start rule.
func (b *LarkBackend) CompileText(text string) (*Parser, error) {
	var (
		rules     []definition
		terminals []definition
		ignored   []string
		seen      = map[string]bool{}
		lastRule  = false // whether the most recent definition was a rule
		haveLast  = false
	)

	lines := strings.Split(text, "\n")
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#"):
			continue

		case strings.HasPrefix(line, "%"):
			name, pattern, ign, err := b.directive(line)
			if err != nil {
				return nil, err
			}
			if ign != "" {
				ignored = append(ignored, ign)
				continue
			}
			if seen[name] {
				return nil, &GrammarError{
					Name:    name,
					Message: "defined more than once",
					Code:    ErrDuplicateDef,
				}
			}
			seen[name] = true
			terminals = append(terminals, definition{name: name, text: pattern})
			lastRule, haveLast = false, true

		case strings.HasPrefix(line, "|"):
			cont := strings.TrimSpace(strings.TrimPrefix(line, "|"))
			if !haveLast {
				return nil, &GrammarError{
					Message: "continuation line with no preceding definition",
					Code:    ErrBadDefinition,
				}
			}
			if lastRule {
				rules[len(rules)-1].text += " | " + cont
			} else {
				terminals[len(terminals)-1].text += " | " + cont
			}

		default:
			name, def, ok := strings.Cut(line, ":")
			if !ok {
				return nil, &GrammarError{
					Message: fmt.Sprintf("cannot parse line %q", line),
					Code:    ErrBadDefinition,
				}
			}
			name = strings.TrimSpace(name)
			def = strings.TrimSpace(def)
			if !isIdent(name) {
				return nil, &GrammarError{
					Name:    name,
					Message: "invalid rule or terminal name",
					Code:    ErrBadDefinition,
				}
			}
			if seen[name] {
				return nil, &GrammarError{
					Name:    name,
					Message: "defined more than once",
					Code:    ErrDuplicateDef,
				}
			}
			seen[name] = true
			if isTerminalName(name) {
				terminals = append(terminals, definition{name: name, text: def})
				lastRule = false
			} else {
				rules = append(rules, definition{name: name, text: def})
				lastRule = true
			}
			haveLast = true
		}
	}

	if len(rules) == 0 {
		return nil, &GrammarError{
			Message: "grammar defines no rules",
			Code:    ErrMissingStart,
		}
	}

	return newParser(rules, terminals, ignored)
}

// directive handles one `%` line. It returns either a terminal
// (name, pattern) introduced by %import, or the name marked by %ignore.
func (b *LarkBackend) directive(line string) (name, pattern, ignore string, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "%import":
		if len(fields) != 2 {
			return "", "", "", &GrammarError{
				Message: fmt.Sprintf("malformed directive %q", line),
				Code:    ErrBadDirective,
			}
		}
		lib, term, ok := strings.Cut(fields[1], ".")
		if !ok || lib != "common" {
			return "", "", "", &GrammarError{
				Name:    fields[1],
				Message: "only common.* imports are supported",
				Code:    ErrUnknownImport,
			}
		}
		re, ok := builtinTerminals[term]
		if !ok {
			return "", "", "", &GrammarError{
				Name:    fields[1],
				Message: "unknown builtin terminal",
				Code:    ErrUnknownImport,
			}
		}
		return term, "/" + re + "/", "", nil

	case "%ignore":
		if len(fields) != 2 {
			return "", "", "", &GrammarError{
				Message: fmt.Sprintf("malformed directive %q", line),
				Code:    ErrBadDirective,
			}
		}
		return "", "", fields[1], nil

	default:
		return "", "", "", &GrammarError{
			Message: fmt.Sprintf("unsupported directive %q", fields[0]),
			Code:    ErrBadDirective,
		}
	}
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// isTerminalName reports whether a name follows the terminal convention
// (entirely uppercase, digits and underscores allowed).
func isTerminalName(name string) bool {
	hasUpper := false
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasUpper = true
		}
	}
	return hasUpper
}
